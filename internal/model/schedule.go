package model

import "time"

// Availability is a window during which a candidate can be scheduled.
type Availability struct {
	ID          string
	CandidateID string
	StartTime   time.Time
	EndTime     time.Time
	CreatedAt   time.Time
}

// Shift is a committed block of work for a candidate. Only shifts with
// status "scheduled" count against availability.
type Shift struct {
	ID          string
	CandidateID string
	StartTime   time.Time
	EndTime     time.Time
	Status      string
	CreatedAt   time.Time
}

const (
	ShiftStatusScheduled = "scheduled"
	ShiftStatusCancelled = "cancelled"
)
