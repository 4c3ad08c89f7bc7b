package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"kiln/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("Staging directory", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir: %+v", result)
	}

	missing := CheckDirectoryAccess("Staging directory", filepath.Join(dir, "nope"))
	if missing.Passed {
		t.Fatalf("expected failure for missing dir: %+v", missing)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	notDir := CheckDirectoryAccess("Staging directory", file)
	if notDir.Passed {
		t.Fatalf("expected failure for non-directory: %+v", notDir)
	}
}

func TestCheckRegistry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	result := CheckRegistry(context.Background(), server.URL)
	if !result.Passed {
		t.Fatalf("expected pass for live server: %+v", result)
	}

	down := CheckRegistry(context.Background(), "http://127.0.0.1:1")
	if down.Passed {
		t.Fatalf("expected failure for closed port: %+v", down)
	}
}

func TestRunAllSkipsRegistryWhenUnconfigured(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	results := RunAll(context.Background(), cfg)
	for _, result := range results {
		if result.Name == "Asset registry" {
			t.Fatal("registry check must be skipped without an endpoint")
		}
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 checks (3 dirs + converter), got %d: %+v", len(results), results)
	}
}

func TestRunAllIncludesRegistryWhenConfigured(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t,
		testsupport.WithStubbedBinaries(),
		testsupport.WithRegistryEndpoint(server.URL),
	)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	found := false
	for _, result := range RunAll(context.Background(), cfg) {
		if result.Name == "Asset registry" {
			found = true
			if !result.Passed {
				t.Fatalf("registry check failed against live server: %+v", result)
			}
		}
	}
	if !found {
		t.Fatal("expected registry check when an endpoint is configured")
	}
}
