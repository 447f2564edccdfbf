package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/md-rashed-zaman/shiftmatch/internal/db"
	"github.com/md-rashed-zaman/shiftmatch/internal/model"
)

// ScheduleRepository reads and writes candidate availabilities and
// shifts. List queries use the half-open overlap predicate
// (start_time < to AND end_time > from) so rows merely touching the
// window boundary are not returned.
type ScheduleRepository struct {
	pool   *db.Pool
	logger *slog.Logger
}

func NewScheduleRepository(pool *db.Pool, logger *slog.Logger) *ScheduleRepository {
	return &ScheduleRepository{pool: pool, logger: logger}
}

func (r *ScheduleRepository) ListAvailabilities(ctx context.Context, from, to time.Time) ([]model.Availability, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, candidate_id::text, start_time, end_time, created_at
		FROM availabilities
		WHERE start_time < $2 AND end_time > $1
		ORDER BY candidate_id, start_time ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Availability
	for rows.Next() {
		var a model.Availability
		if err := rows.Scan(&a.ID, &a.CandidateID, &a.StartTime, &a.EndTime, &a.CreatedAt); err != nil {
			return nil, err
		}
		if !a.StartTime.Before(a.EndTime) {
			r.logger.Warn("dropping malformed availability row", "id", a.ID)
			continue
		}
		out = append(out, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *ScheduleRepository) ListShifts(ctx context.Context, candidateID string, from, to time.Time) ([]model.Shift, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, candidate_id::text, start_time, end_time, status, created_at
		FROM shifts
		WHERE candidate_id = $1
			AND status = 'scheduled'
			AND start_time < $3
			AND end_time > $2
		ORDER BY start_time ASC
	`, candidateID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Shift
	for rows.Next() {
		var s model.Shift
		if err := rows.Scan(&s.ID, &s.CandidateID, &s.StartTime, &s.EndTime, &s.Status, &s.CreatedAt); err != nil {
			return nil, err
		}
		if !s.StartTime.Before(s.EndTime) {
			r.logger.Warn("dropping malformed shift row", "id", s.ID)
			continue
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *ScheduleRepository) CreateAvailability(ctx context.Context, candidateID string, start, end time.Time) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO availabilities (id, candidate_id, start_time, end_time)
		VALUES ($1, $2, $3, $4)
	`, id, candidateID, start, end)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *ScheduleRepository) CreateShift(ctx context.Context, candidateID string, start, end time.Time) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO shifts (id, candidate_id, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, 'scheduled')
	`, id, candidateID, start, end)
	if err != nil {
		return "", err
	}
	return id, nil
}

// CancelShift flips a scheduled shift to cancelled and returns the
// row so callers can invalidate caches for the days it covered.
func (r *ScheduleRepository) CancelShift(ctx context.Context, shiftID string) (model.Shift, error) {
	var s model.Shift
	err := r.pool.QueryRow(ctx, `
		UPDATE shifts
		SET status = 'cancelled'
		WHERE id = $1 AND status = 'scheduled'
		RETURNING id::text, candidate_id::text, start_time, end_time, status, created_at
	`, shiftID).Scan(&s.ID, &s.CandidateID, &s.StartTime, &s.EndTime, &s.Status, &s.CreatedAt)
	if err != nil {
		return model.Shift{}, err
	}
	return s, nil
}

// IsConflict reports an exclusion-constraint violation; the shifts
// table forbids overlapping scheduled shifts for one candidate.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
