package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ayusman/pinchpoint/internal/gesture"
)

// fakeController records SetEnabled calls and reports a fixed status.
type fakeController struct {
	mu     sync.Mutex
	status Status
	sets   []bool
}

func (f *fakeController) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeController) SetEnabled(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status.Enabled = enabled
	f.sets = append(f.sets, enabled)
}

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	t.Run("returns 200 with JSON response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		contentType := rec.Header().Get("Content-Type")
		if contentType != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", contentType)
		}

		var response map[string]interface{}
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response["status"] != "ok" {
			t.Errorf("expected status 'ok', got %v", response["status"])
		}

		if _, exists := response["uptime"]; !exists {
			t.Error("expected 'uptime' field in response")
		}
	})

	t.Run("only allows GET method", func(t *testing.T) {
		methods := []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch}

		for _, method := range methods {
			req := httptest.NewRequest(method, "/api/health", nil)
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})
}

func TestServer_NotFound(t *testing.T) {
	s := New(Config{})

	paths := []string{"/api/nonexistent", "/", "/api/status", "/api/sessions"}
	for _, p := range paths {
		req := httptest.NewRequest(http.MethodGet, p, nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected status %d, got %d", p, http.StatusNotFound, rec.Code)
		}
	}
}

func TestServer_Status(t *testing.T) {
	last := gesture.Intent{Kind: gesture.Click, X: 10, Y: 20}
	ctrl := &fakeController{status: Status{
		Enabled:    true,
		Phase:      gesture.Pinching,
		X:          10,
		Y:          20,
		Hold:       0.5,
		LastIntent: &last,
	}}
	s := New(Config{Controller: ctrl})

	t.Run("GET returns status", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var got struct {
			Enabled    bool    `json:"enabled"`
			Phase      string  `json:"phase"`
			Hold       float64 `json:"hold"`
			LastIntent struct {
				Kind string `json:"kind"`
			} `json:"last_intent"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !got.Enabled || got.Phase != "pinching" || got.Hold != 0.5 || got.LastIntent.Kind != "click" {
			t.Errorf("unexpected status: %+v", got)
		}
	})

	t.Run("POST toggles enabled", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/status", bytes.NewBufferString(`{"enabled": false}`))
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		if len(ctrl.sets) != 1 || ctrl.sets[0] {
			t.Errorf("SetEnabled calls = %v, want [false]", ctrl.sets)
		}
	})

	t.Run("POST rejects bad body", func(t *testing.T) {
		for _, body := range []string{`not json`, `{}`} {
			req := httptest.NewRequest(http.MethodPost, "/api/status", bytes.NewBufferString(body))
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("body %q: expected status %d, got %d", body, http.StatusBadRequest, rec.Code)
			}
		}
	})

	t.Run("other methods rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/status", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})
}

func TestNew(t *testing.T) {
	t.Run("creates server with config", func(t *testing.T) {
		hub := NewHub()
		s := New(Config{Hub: hub})

		if s == nil {
			t.Fatal("expected non-nil server")
		}

		if s.config.Hub != hub {
			t.Error("expected hub to be kept in config")
		}
	})

	t.Run("server implements http.Handler", func(t *testing.T) {
		s := New(Config{})
		var _ http.Handler = s
	})
}
