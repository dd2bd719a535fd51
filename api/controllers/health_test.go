package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/khatmdev/quadramall-sub001/pkg/config"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

func TestHealthLive(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	resp := httptest.NewRecorder()
	HealthLive(cfg).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get(envHeader) != "dev" {
		t.Fatalf("expected env header, got %q", resp.Header().Get(envHeader))
	}
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	tests := []struct {
		name string
		deps []Dependency
		want int
	}{
		{"all up", []Dependency{{Name: "db", Pinger: stubPinger{}}, {Name: "redis", Pinger: stubPinger{}}}, http.StatusOK},
		{"redis down", []Dependency{{Name: "db", Pinger: stubPinger{}}, {Name: "redis", Pinger: stubPinger{err: errors.New("refused")}}}, http.StatusServiceUnavailable},
		{"nil pinger skipped", []Dependency{{Name: "pubsub"}}, http.StatusOK},
	}

	for _, tt := range tests {
		resp := httptest.NewRecorder()
		HealthReady(cfg, nil, tt.deps...).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		if resp.Code != tt.want {
			t.Fatalf("%s: expected %d got %d", tt.name, tt.want, resp.Code)
		}
	}
}
