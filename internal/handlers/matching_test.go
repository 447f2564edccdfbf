package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/md-rashed-zaman/shiftmatch/internal/matching"
	"github.com/md-rashed-zaman/shiftmatch/internal/model"
)

type stubStore struct {
	avails []model.Availability
	shifts map[string][]model.Shift
}

func (s *stubStore) ListAvailabilities(_ context.Context, from, to time.Time) ([]model.Availability, error) {
	var out []model.Availability
	for _, a := range s.avails {
		if a.StartTime.Before(to) && a.EndTime.After(from) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubStore) ListShifts(_ context.Context, candidateID string, from, to time.Time) ([]model.Shift, error) {
	var out []model.Shift
	for _, sh := range s.shifts[candidateID] {
		if sh.StartTime.Before(to) && sh.EndTime.After(from) {
			out = append(out, sh)
		}
	}
	return out, nil
}

func newTestHandler(store *stubStore) *MatchingHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewMatchingHandler(matching.NewMatcher(store, logger), nil, logger)
}

func TestCandidates(t *testing.T) {
	day := time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC)
	const candidate = "4f2a4b1e-2f60-47cd-a2f3-61f0ab97e001"
	store := &stubStore{
		avails: []model.Availability{
			{ID: "a1", CandidateID: candidate, StartTime: day.Add(8 * time.Hour), EndTime: day.Add(18 * time.Hour)},
		},
		shifts: map[string][]model.Shift{
			candidate: {
				{ID: "s1", StartTime: day.Add(8 * time.Hour), EndTime: day.Add(15*time.Hour + 15*time.Minute)},
				{ID: "s2", StartTime: day.Add(15*time.Hour + 30*time.Minute), EndTime: day.Add(16 * time.Hour)},
				{ID: "s3", StartTime: day.Add(16 * time.Hour), EndTime: day.Add(17*time.Hour + 30*time.Minute)},
			},
		},
	}
	h := newTestHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matching/candidates?date=2026-01-28&min_minutes=30", nil)
	rw := httptest.NewRecorder()
	h.Candidates(rw, req)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rw.Code, rw.Body.String())
	}
	var resp candidatesResponse
	if err := json.NewDecoder(rw.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.CandidateIDs) != 1 || resp.CandidateIDs[0] != candidate {
		t.Fatalf("candidate_ids = %v, want [%s]", resp.CandidateIDs, candidate)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/matching/candidates?date=2026-01-28&min_minutes=40", nil)
	rw = httptest.NewRecorder()
	h.Candidates(rw, req)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	resp = candidatesResponse{}
	if err := json.NewDecoder(rw.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.CandidateIDs) != 0 {
		t.Fatalf("candidate_ids = %v, want empty for 40 minutes", resp.CandidateIDs)
	}

	// Restricting the population to someone else excludes our candidate.
	req = httptest.NewRequest(http.MethodGet,
		"/api/v1/matching/candidates?date=2026-01-28&min_minutes=30&candidate_ids=9b16ae52-0bd0-4f0e-9276-10958b24fc5b", nil)
	rw = httptest.NewRecorder()
	h.Candidates(rw, req)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	resp = candidatesResponse{}
	if err := json.NewDecoder(rw.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.CandidateIDs) != 0 {
		t.Fatalf("candidate_ids = %v, want empty for a foreign population", resp.CandidateIDs)
	}
}

func TestCandidates_BadRequests(t *testing.T) {
	h := newTestHandler(&stubStore{})

	cases := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{"wrong method", http.MethodPost, "/api/v1/matching/candidates?date=2026-01-28&min_minutes=30", http.StatusMethodNotAllowed},
		{"missing date", http.MethodGet, "/api/v1/matching/candidates?min_minutes=30", http.StatusBadRequest},
		{"bad date", http.MethodGet, "/api/v1/matching/candidates?date=28-01-2026&min_minutes=30", http.StatusBadRequest},
		{"missing minutes", http.MethodGet, "/api/v1/matching/candidates?date=2026-01-28", http.StatusBadRequest},
		{"zero minutes", http.MethodGet, "/api/v1/matching/candidates?date=2026-01-28&min_minutes=0", http.StatusBadRequest},
		{"negative minutes", http.MethodGet, "/api/v1/matching/candidates?date=2026-01-28&min_minutes=-5", http.StatusBadRequest},
		{"bad candidate_ids", http.MethodGet, "/api/v1/matching/candidates?date=2026-01-28&min_minutes=30&candidate_ids=not-a-uuid", http.StatusBadRequest},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.target, nil)
		rw := httptest.NewRecorder()
		h.Candidates(rw, req)
		if rw.Code != tc.want {
			t.Errorf("%s: got %d, want %d", tc.name, rw.Code, tc.want)
		}
	}
}
