package records

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"kiln/internal/config"
)

func TestNewServiceNoopWithoutEndpoint(t *testing.T) {
	cfg := config.Default()
	service := NewService(&cfg)
	if _, ok := service.(noopService); !ok {
		t.Fatalf("expected noop service, got %T", service)
	}
	if err := service.RegisterPublish(context.Background(), Record{Name: "diffuse"}); err != nil {
		t.Fatalf("noop RegisterPublish: %v", err)
	}
}

func TestRegisterPublishPostsJSON(t *testing.T) {
	var got Record
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		if ua := r.Header.Get("User-Agent"); ua != userAgent {
			t.Errorf("user agent = %s", ua)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Registry.Endpoint = server.URL
	service := NewService(&cfg)

	record := Record{
		Name:         "diffuse",
		Type:         "mari.texture",
		Paths:        []string{"/pub/diffuse.1001.tif"},
		Plugin:       "Publish Mipmaps",
		Dependencies: []string{"Publish Textures"},
	}
	if err := service.RegisterPublish(context.Background(), record); err != nil {
		t.Fatalf("RegisterPublish: %v", err)
	}
	if got.Name != "diffuse" || len(got.Paths) != 1 || got.Dependencies[0] != "Publish Textures" {
		t.Fatalf("payload = %+v", got)
	}
}

func TestRegisterPublishErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "schema mismatch", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Registry.Endpoint = server.URL
	service := NewService(&cfg)

	if err := service.RegisterPublish(context.Background(), Record{Name: "diffuse"}); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestRegisterPublishRejectsEmptyName(t *testing.T) {
	cfg := config.Default()
	cfg.Registry.Endpoint = "http://localhost:1"
	service := NewService(&cfg)
	if err := service.RegisterPublish(context.Background(), Record{}); err == nil {
		t.Fatal("expected error for empty record name")
	}
}
