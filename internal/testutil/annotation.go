package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// AnnotationServer is a fake variant annotation service. It answers
// POST {"ids": [...]} with the configured record of every known id, in
// request order, and records each request's ids. Its methods may be
// called while requests are in flight.
type AnnotationServer struct {
	*httptest.Server

	mu       sync.Mutex
	records  map[string]map[string]any
	requests [][]string
	status   int
}

// NewAnnotationServer starts a server for records keyed by id. The
// server is closed when the test ends.
func NewAnnotationServer(t testing.TB, records map[string]map[string]any) *AnnotationServer {
	t.Helper()
	s := &AnnotationServer{records: records}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// FailWith makes every later request fail with status.
func (s *AnnotationServer) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Requests returns the ids of every request received so far.
func (s *AnnotationServer) Requests() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.requests...)
}

func (s *AnnotationServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, req.IDs)
	status := s.status
	s.mu.Unlock()
	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	out := []map[string]any{}
	for _, id := range req.IDs {
		rec, ok := s.records[id]
		if !ok {
			continue
		}
		row := map[string]any{"id": id}
		for k, v := range rec {
			row[k] = v
		}
		out = append(out, row)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
