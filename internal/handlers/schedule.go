package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/shiftmatch/internal/cache"
	"github.com/md-rashed-zaman/shiftmatch/internal/interval"
	"github.com/md-rashed-zaman/shiftmatch/internal/storage"
)

// ScheduleHandler owns the write side: recording availabilities and
// shifts, and cancelling shifts. Writes invalidate cached match
// results for the days they touch.
type ScheduleHandler struct {
	repo   *storage.ScheduleRepository
	cache  *cache.MatchCache
	logger *slog.Logger
}

func NewScheduleHandler(repo *storage.ScheduleRepository, matchCache *cache.MatchCache, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{repo: repo, cache: matchCache, logger: logger}
}

type spanRequest struct {
	CandidateID string `json:"candidate_id"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

// decodeSpan validates the shared request shape for both write
// endpoints: a well-formed candidate uuid and a valid half-open span.
func decodeSpan(w http.ResponseWriter, r *http.Request) (string, interval.Interval, bool) {
	var req spanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return "", interval.Interval{}, false
	}

	req.CandidateID = strings.TrimSpace(req.CandidateID)
	if _, err := uuid.Parse(req.CandidateID); err != nil {
		http.Error(w, "candidate_id must be a valid uuid", http.StatusBadRequest)
		return "", interval.Interval{}, false
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		http.Error(w, "invalid start_time", http.StatusBadRequest)
		return "", interval.Interval{}, false
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		http.Error(w, "invalid end_time", http.StatusBadRequest)
		return "", interval.Interval{}, false
	}

	iv, err := interval.New(start, end)
	if err != nil {
		http.Error(w, "end_time must be after start_time", http.StatusBadRequest)
		return "", interval.Interval{}, false
	}
	return req.CandidateID, iv, true
}

func (h *ScheduleHandler) CreateAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	candidateID, iv, ok := decodeSpan(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	id, err := h.repo.CreateAvailability(ctx, candidateID, iv.Start(), iv.End())
	if err != nil {
		h.logger.Error("create availability failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	if h.cache != nil {
		h.cache.InvalidateRange(ctx, iv.Start(), iv.End())
	}
	writeJSON(w, http.StatusCreated, map[string]string{"availability_id": id})
}

func (h *ScheduleHandler) CreateShift(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	candidateID, iv, ok := decodeSpan(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	id, err := h.repo.CreateShift(ctx, candidateID, iv.Start(), iv.End())
	if err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "shift overlaps an existing scheduled shift", http.StatusConflict)
			return
		}
		h.logger.Error("create shift failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	if h.cache != nil {
		h.cache.InvalidateRange(ctx, iv.Start(), iv.End())
	}
	writeJSON(w, http.StatusCreated, map[string]string{"shift_id": id})
}

type cancelShiftRequest struct {
	ShiftID string `json:"shift_id"`
}

func (h *ScheduleHandler) CancelShift(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req cancelShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if _, err := uuid.Parse(strings.TrimSpace(req.ShiftID)); err != nil {
		http.Error(w, "shift_id must be a valid uuid", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	shift, err := h.repo.CancelShift(ctx, req.ShiftID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "shift not found or already cancelled", http.StatusNotFound)
			return
		}
		h.logger.Error("cancel shift failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	if h.cache != nil {
		h.cache.InvalidateRange(ctx, shift.StartTime, shift.EndTime)
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"shift_id": shift.ID,
		"status":   shift.Status,
	})
}
