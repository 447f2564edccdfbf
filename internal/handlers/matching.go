package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/shiftmatch/internal/cache"
	"github.com/md-rashed-zaman/shiftmatch/internal/matching"
)

const dateFormat = "2006-01-02"

// MatchingHandler serves the candidate matching query. The cache is
// optional; when nil every request hits the matcher directly.
type MatchingHandler struct {
	matcher *matching.Matcher
	cache   *cache.MatchCache
	logger  *slog.Logger
}

func NewMatchingHandler(matcher *matching.Matcher, matchCache *cache.MatchCache, logger *slog.Logger) *MatchingHandler {
	return &MatchingHandler{matcher: matcher, cache: matchCache, logger: logger}
}

type candidatesResponse struct {
	Date         string   `json:"date"`
	MinMinutes   int      `json:"min_minutes"`
	CandidateIDs []string `json:"candidate_ids"`
}

func (h *MatchingHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	day, err := time.ParseInLocation(dateFormat, q.Get("date"), time.UTC)
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	minMinutes, err := strconv.Atoi(q.Get("min_minutes"))
	if err != nil || minMinutes <= 0 {
		http.Error(w, "min_minutes must be a positive integer", http.StatusBadRequest)
		return
	}

	// Optional restriction of the scanned population. Cached results
	// cover the whole population, so filtered queries bypass the cache.
	var population []string
	if raw := strings.TrimSpace(q.Get("candidate_ids")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, err := uuid.Parse(part); err != nil {
				http.Error(w, "candidate_ids must be a comma-separated list of uuids", http.StatusBadRequest)
				return
			}
			population = append(population, part)
		}
	}

	ctx := r.Context()
	if h.cache != nil && population == nil {
		if ids, ok := h.cache.Get(ctx, day, minMinutes); ok {
			writeJSON(w, http.StatusOK, candidatesResponse{
				Date:         day.Format(dateFormat),
				MinMinutes:   minMinutes,
				CandidateIDs: ids,
			})
			return
		}
	}

	ids, err := h.matcher.QualifyingCandidates(ctx, time.Duration(minMinutes)*time.Minute, day, population)
	if err != nil {
		h.logger.Error("matching query failed", "err", err)
		http.Error(w, "matching query failed", http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	if h.cache != nil && population == nil {
		h.cache.Put(ctx, day, minMinutes, ids)
	}

	writeJSON(w, http.StatusOK, candidatesResponse{
		Date:         day.Format(dateFormat),
		MinMinutes:   minMinutes,
		CandidateIDs: ids,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
