package services

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	err := Wrap(ErrValidation, "validate", "check source", "missing file", nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "validate: check source: missing file") {
		t.Fatalf("unexpected detail: %v", err)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ErrExternalTool, "publish", "convert", "", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %v", err)
	}
}

func TestIsFatal(t *testing.T) {
	if IsFatal(Wrap(ErrValidation, "validate", "", "bad item", nil)) {
		t.Fatal("validation errors must not abort the run")
	}
	if !IsFatal(Wrap(ErrConfiguration, "publish", "resolve dependency", "no such plugin", nil)) {
		t.Fatal("configuration errors must abort the run")
	}
}
