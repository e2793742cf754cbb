package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestHandleMeDevAthlete verifies /api/v1/me returns the local dev athlete
// identity when no Tailscale middleware is active.
func TestHandleMeDevAthlete(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{Login: "local", DisplayName: "Local Dev User"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "local" {
		t.Errorf("login = %q, want %q", info.Login, "local")
	}
	if info.DisplayName != "Local Dev User" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Local Dev User")
	}
}

// TestHandleMeTailscaleAthlete verifies /api/v1/me reflects the tailnet
// identity the whois middleware placed in context.
func TestHandleMeTailscaleAthlete(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{Login: "runner@tailnet.ts.net", DisplayName: "Marathon Mel"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "runner@tailnet.ts.net" {
		t.Errorf("login = %q, want %q", info.Login, "runner@tailnet.ts.net")
	}
	if info.DisplayName != "Marathon Mel" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Marathon Mel")
	}
}

// TestHandleMetricsRangeValidation verifies the range endpoint rejects bad
// inputs before touching storage.
func TestHandleMetricsRangeValidation(t *testing.T) {
	s := &Server{}

	tests := []struct {
		name  string
		query string
	}{
		{"end before start", "?start=2026-05-01&end=2026-04-01"},
		{"malformed start", "?start=last-tuesday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics/range"+tt.query, nil)
			rec := httptest.NewRecorder()

			s.handleMetricsRange(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}
