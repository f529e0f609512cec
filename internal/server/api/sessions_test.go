package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/pinchpoint/internal/gesture"
	"github.com/ayusman/pinchpoint/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

var t0 = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func seedSession(t *testing.T, s *store.Store, at time.Time, intents ...gesture.Intent) *store.Session {
	t.Helper()

	sess, err := s.Sessions().Start(gesture.DefaultPolicy(), at)
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	if err := s.Events().Record(sess.ID, intents...); err != nil {
		t.Fatalf("failed to record events: %v", err)
	}
	return sess
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSessionHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)

	first := seedSession(t, s, t0)
	second := seedSession(t, s, t0.Add(time.Hour), gesture.Intent{Kind: gesture.Click, X: 1, Y: 2, At: t0})
	if err := s.Sessions().Finish(first.ID, store.EndStopped, t0.Add(time.Minute)); err != nil {
		t.Fatalf("failed to finish session: %v", err)
	}

	rec := serve(handler, http.MethodGet, "/api/sessions")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response listSessionsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(response.Sessions))
	}
	if response.Sessions[0].ID != second.ID {
		t.Errorf("expected newest session first, got %s", response.Sessions[0].ID)
	}
	if !response.Sessions[0].Active || response.Sessions[0].Events != 1 {
		t.Errorf("unexpected newest session: %+v", response.Sessions[0])
	}
	if response.Sessions[1].Active || response.Sessions[1].EndReason != store.EndStopped {
		t.Errorf("unexpected finished session: %+v", response.Sessions[1])
	}
}

func TestSessionHandler_ListLimit(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)

	for i := 0; i < 3; i++ {
		seedSession(t, s, t0.Add(time.Duration(i)*time.Minute))
	}

	rec := serve(handler, http.MethodGet, "/api/sessions?limit=2")
	var response listSessionsResponse
	json.NewDecoder(rec.Body).Decode(&response)
	if len(response.Sessions) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(response.Sessions))
	}

	rec = serve(handler, http.MethodGet, "/api/sessions?limit=abc")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestSessionHandler_ListEmpty(t *testing.T) {
	handler := NewSessionHandler(newTestStore(t))

	rec := serve(handler, http.MethodGet, "/api/sessions")

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if string(raw["sessions"]) != "[]" {
		t.Errorf("expected empty array, got %s", raw["sessions"])
	}
}

func TestSessionHandler_Get(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)
	sess := seedSession(t, s, t0)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"existing", "/api/sessions/" + sess.ID, http.StatusOK},
		{"missing", "/api/sessions/nope", http.StatusNotFound},
		{"unknown subresource", "/api/sessions/" + sess.ID + "/frames", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(handler, http.MethodGet, tt.path)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestSessionHandler_Events(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)
	sess := seedSession(t, s, t0,
		gesture.Intent{Kind: gesture.DragStart, X: 100, Y: 200, At: t0.Add(3 * time.Second)},
		gesture.Intent{Kind: gesture.DragEnd, X: 400, Y: 300, At: t0.Add(5 * time.Second)},
	)

	rec := serve(handler, http.MethodGet, "/api/sessions/"+sess.ID+"/events")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response listEventsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.SessionID != sess.ID {
		t.Errorf("session_id = %s, want %s", response.SessionID, sess.ID)
	}
	if len(response.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(response.Events))
	}
	if response.Events[0].Kind != "drag_start" || response.Events[1].Kind != "drag_end" {
		t.Errorf("unexpected kinds: %s, %s", response.Events[0].Kind, response.Events[1].Kind)
	}
	if response.Events[1].X != 400 || response.Events[1].Y != 300 {
		t.Errorf("unexpected drag end position: %+v", response.Events[1])
	}

	rec = serve(handler, http.MethodGet, "/api/sessions/nope/events")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestSessionHandler_Delete(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)
	sess := seedSession(t, s, t0)

	rec := serve(handler, http.MethodDelete, "/api/sessions/"+sess.ID)
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	rec = serve(handler, http.MethodDelete, "/api/sessions/"+sess.ID)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestSessionHandler_MethodNotAllowed(t *testing.T) {
	handler := NewSessionHandler(newTestStore(t))

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/sessions"},
		{http.MethodPut, "/api/sessions/abc"},
		{http.MethodPost, "/api/sessions/abc/events"},
	}

	for _, tt := range tests {
		rec := serve(handler, tt.method, tt.path)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, http.StatusMethodNotAllowed, rec.Code)
		}
	}
}
