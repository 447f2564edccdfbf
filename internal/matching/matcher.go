// Package matching answers the staffing question behind the service:
// which candidates still have a long enough uninterrupted gap on a
// given day once their scheduled shifts are carved out of their
// availability windows.
package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/md-rashed-zaman/shiftmatch/internal/interval"
	"github.com/md-rashed-zaman/shiftmatch/internal/model"
)

// Store is the read side the matcher needs. Both methods fetch rows
// whose [start, end) span overlaps the given window.
type Store interface {
	ListAvailabilities(ctx context.Context, from, to time.Time) ([]model.Availability, error)
	ListShifts(ctx context.Context, candidateID string, from, to time.Time) ([]model.Shift, error)
}

// ErrInvalidDuration is returned for non-positive minimum durations.
var ErrInvalidDuration = errors.New("matching: minimum duration must be positive")

// shiftFetchPadding widens the shift query window around the day so a
// shift that starts the previous evening and runs into the day still
// loads, while shifts on unrelated days never do.
const shiftFetchPadding = 24 * time.Hour

// LongestFreeSpan returns the length of the largest uninterrupted gap
// left in avail once the shifts are subtracted from it, or zero when
// the shifts cover it completely.
func LongestFreeSpan(avail interval.Interval, shifts []interval.Interval) time.Duration {
	var longest time.Duration
	for _, free := range interval.Subtract(avail, shifts) {
		if d := free.Duration(); d > longest {
			longest = d
		}
	}
	return longest
}

type Matcher struct {
	store  Store
	logger *slog.Logger
}

func NewMatcher(store Store, logger *slog.Logger) *Matcher {
	return &Matcher{store: store, logger: logger}
}

// QualifyingCandidates returns the candidates who, on the UTC day
// containing day, have at least one availability window whose longest
// free gap is minDuration or more. A non-nil population restricts the
// scan to those candidate ids; nil means every candidate with an
// availability that day. Candidates with no availability touching the
// day are absent from the result. The returned slice is de-duplicated;
// order is not significant.
func (m *Matcher) QualifyingCandidates(ctx context.Context, minDuration time.Duration, day time.Time, population []string) ([]string, error) {
	if minDuration <= 0 {
		return nil, ErrInvalidDuration
	}

	var wanted map[string]struct{}
	if population != nil {
		wanted = make(map[string]struct{}, len(population))
		for _, id := range population {
			wanted[id] = struct{}{}
		}
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	rows, err := m.store.ListAvailabilities(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("list availabilities: %w", err)
	}

	windows := make(map[string][]interval.Interval)
	var candidates []string
	for _, a := range rows {
		if wanted != nil {
			if _, ok := wanted[a.CandidateID]; !ok {
				continue
			}
		}
		iv, err := interval.New(a.StartTime, a.EndTime)
		if err != nil {
			m.logger.Warn("skipping malformed availability", "availability_id", a.ID, "err", err)
			continue
		}
		if _, seen := windows[a.CandidateID]; !seen {
			candidates = append(candidates, a.CandidateID)
		}
		windows[a.CandidateID] = append(windows[a.CandidateID], iv)
	}

	var qualified []string
	for _, candidateID := range candidates {
		ok, err := m.qualifies(ctx, candidateID, windows[candidateID], minDuration, dayStart, dayEnd)
		if err != nil {
			return nil, err
		}
		if ok {
			qualified = append(qualified, candidateID)
		}
	}
	return qualified, nil
}

func (m *Matcher) qualifies(ctx context.Context, candidateID string, windows []interval.Interval, minDuration time.Duration, dayStart, dayEnd time.Time) (bool, error) {
	rows, err := m.store.ListShifts(ctx, candidateID, dayStart.Add(-shiftFetchPadding), dayEnd.Add(shiftFetchPadding))
	if err != nil {
		return false, fmt.Errorf("list shifts for candidate %s: %w", candidateID, err)
	}

	shifts := make([]interval.Interval, 0, len(rows))
	for _, sh := range rows {
		iv, err := interval.New(sh.StartTime, sh.EndTime)
		if err != nil {
			m.logger.Warn("skipping malformed shift", "shift_id", sh.ID, "err", err)
			continue
		}
		shifts = append(shifts, iv)
	}

	for _, w := range windows {
		if LongestFreeSpan(w, shifts) >= minDuration {
			return true, nil
		}
	}
	return false, nil
}
