package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type failingPingStore struct {
	stubStore
	pingErr error
}

func (s *failingPingStore) Ping(_ context.Context) error { return s.pingErr }

type failingPingCache struct {
	stubCache
	pingErr error
}

func (c *failingPingCache) Ping(_ context.Context) error { return c.pingErr }

func serveHealth(h http.HandlerFunc) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	h(rec, r)
	return rec
}

func TestHealthHandler_AllOK(t *testing.T) {
	h := NewHealthHandler(&stubStore{}, &stubCache{})
	rec := serveHealth(h)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	if data["status"] != "ok" {
		t.Errorf("expected status ok, got %v", data["status"])
	}
	components := data["components"].(map[string]any)
	if components["database"] != "ok" || components["cache"] != "ok" {
		t.Errorf("unexpected components: %v", components)
	}
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	h := NewHealthHandler(&failingPingStore{pingErr: errors.New("connection refused")}, &stubCache{})
	rec := serveHealth(h)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	errObj := body["error"].(map[string]any)
	if errObj["code"] != "SERVICE_UNAVAILABLE" {
		t.Errorf("expected SERVICE_UNAVAILABLE, got %v", errObj["code"])
	}
	details := errObj["details"].(map[string]any)
	if details["database"] != "unavailable" {
		t.Errorf("expected database unavailable, got %v", details["database"])
	}
	if details["cache"] != "ok" {
		t.Errorf("expected cache ok, got %v", details["cache"])
	}
}

func TestHealthHandler_CacheDown(t *testing.T) {
	h := NewHealthHandler(&stubStore{}, &failingPingCache{pingErr: errors.New("redis down")})
	rec := serveHealth(h)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestHealthHandler_BothDown(t *testing.T) {
	h := NewHealthHandler(
		&failingPingStore{pingErr: errors.New("db down")},
		&failingPingCache{pingErr: errors.New("redis down")},
	)
	rec := serveHealth(h)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
