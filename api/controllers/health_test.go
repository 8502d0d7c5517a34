package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/detailshop-backend/pkg/config"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func TestHealthReady(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	cases := []struct {
		name   string
		db     pinger
		redis  pinger
		status int
	}{
		{"all up", stubPinger{}, stubPinger{}, http.StatusOK},
		{"db down", stubPinger{err: errors.New("dial")}, stubPinger{}, http.StatusServiceUnavailable},
		{"redis down", stubPinger{}, stubPinger{err: errors.New("dial")}, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HealthReady(cfg, nil, tc.db, tc.redis).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestHealthLive(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	HealthLive(&config.Config{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
