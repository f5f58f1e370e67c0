package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/krishimitra/marketplace-backend/pkg/config"
)

type stubHealthPinger struct {
	err error
}

func (s stubHealthPinger) Ping(context.Context) error {
	return s.err
}

func TestHealthReadyReportsAllDependencies(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	handler := HealthReady(cfg, nil, stubHealthPinger{}, stubHealthPinger{}, stubHealthPinger{})

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	for _, dep := range []string{"database", "redis", "pubsub"} {
		if envelope.Data[dep] != "ok" {
			t.Fatalf("expected %s check ok, got %q", dep, envelope.Data[dep])
		}
	}
	if envelope.Data["status"] != "ready" {
		t.Fatalf("expected ready status, got %q", envelope.Data["status"])
	}
}

func TestHealthReadyFailsWhenPubSubDown(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	handler := HealthReady(cfg, nil, stubHealthPinger{}, stubHealthPinger{}, stubHealthPinger{err: fmt.Errorf("subscription missing")})

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestHealthReadyFailsWhenRedisDown(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	handler := HealthReady(cfg, nil, stubHealthPinger{}, stubHealthPinger{err: fmt.Errorf("connection refused")}, stubHealthPinger{})

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d: %s", resp.Code, resp.Body.String())
	}
}
