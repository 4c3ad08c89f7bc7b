package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kiln/internal/config"
)

const userAgent = "Kiln-Go/0.1.0"

// Record describes one published asset reported to the registry.
type Record struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Paths        []string `json:"paths"`
	RunID        string   `json:"run_id,omitempty"`
	Plugin       string   `json:"plugin,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// Service is the registry surface exposed to finalize hooks.
type Service interface {
	RegisterPublish(ctx context.Context, record Record) error
}

// NewService builds a registry client when an endpoint is configured. With no
// endpoint, a noop implementation is returned and publishes go unregistered.
func NewService(cfg *config.Config) Service {
	endpoint := ""
	timeout := 10 * time.Second
	if cfg != nil {
		endpoint = strings.TrimSpace(cfg.Registry.Endpoint)
		if cfg.Registry.RequestTimeout > 0 {
			timeout = time.Duration(cfg.Registry.RequestTimeout) * time.Second
		}
	}
	if endpoint == "" {
		return noopService{}
	}
	return &httpService{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type httpService struct {
	endpoint string
	client   *http.Client
}

func (s *httpService) RegisterPublish(ctx context.Context, record Record) error {
	if s == nil || s.client == nil {
		return nil
	}
	record.Name = strings.TrimSpace(record.Name)
	if record.Name == "" {
		return fmt.Errorf("register publish: record name is empty")
	}

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode publish record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build registry request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send publish record: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("registry returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) RegisterPublish(context.Context, Record) error { return nil }
