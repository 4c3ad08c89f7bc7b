package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"kiln/internal/services"
)

func newBufferLogger(level string) (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(level))
	return slog.New(newConsoleHandler(buf, levelVar)), buf
}

func TestConsoleHandlerFormatsLine(t *testing.T) {
	logger, buf := newBufferLogger("info")
	logger = NewComponentLogger(logger, "runner")

	logger.Info("task published", String(FieldPlugin, "Publish Textures"), Int("frames", 2))

	line := buf.String()
	if !strings.Contains(line, " INFO runner: task published") {
		t.Fatalf("line missing level/component/message: %q", line)
	}
	if !strings.Contains(line, `plugin="Publish Textures"`) {
		t.Fatalf("quoted value missing: %q", line)
	}
	if !strings.Contains(line, "frames=2") {
		t.Fatalf("int attr missing: %q", line)
	}
}

func TestConsoleHandlerHonorsLevel(t *testing.T) {
	logger, buf := newBufferLogger("warn")
	logger.Info("ignored")
	logger.Warn("kept")
	if strings.Contains(buf.String(), "ignored") || !strings.Contains(buf.String(), "kept") {
		t.Fatalf("level filtering broken: %q", buf.String())
	}
}

func TestWithContextAttachesFields(t *testing.T) {
	logger, buf := newBufferLogger("info")

	ctx := services.WithItem(context.Background(), "diffuse")
	ctx = services.WithPhase(ctx, "publish")
	ctx = services.WithRunID(ctx, "run-123")

	WithContext(ctx, logger).Info("hello")

	line := buf.String()
	for _, want := range []string{"item=diffuse", "phase=publish", "run_id=run-123"} {
		if !strings.Contains(line, want) {
			t.Fatalf("missing %q in %q", want, line)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger must disable all levels")
	}
}
