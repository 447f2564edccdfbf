// Package interval implements a small algebra over half-open time
// spans: classifying how two spans overlap, merging overlapping spans,
// folding spans into disjoint collections, and carving spans apart by
// subtraction or intersection. It is the pure core behind the matching
// queries; nothing here touches storage or the clock.
package interval

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidInterval is returned when an interval's start is not
	// strictly before its end.
	ErrInvalidInterval = errors.New("interval: start must be strictly before end")

	// ErrDisjointMerge is returned by Merge when the two intervals do
	// not overlap. Callers are expected to check Overlaps first.
	ErrDisjointMerge = errors.New("interval: cannot merge non-overlapping intervals")
)

// Interval is a half-open span of time [start, end). The zero value is
// not a valid interval; construct values through New, which enforces
// start < end. Values are immutable once constructed.
type Interval struct {
	start time.Time
	end   time.Time
}

// New returns the interval [start, end). Zero-length and inverted
// spans are rejected.
func New(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, fmt.Errorf("%w: got [%s, %s)", ErrInvalidInterval,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Interval{start: start, end: end}, nil
}

func (iv Interval) Start() time.Time { return iv.start }

func (iv Interval) End() time.Time { return iv.end }

func (iv Interval) Duration() time.Duration { return iv.end.Sub(iv.start) }

// Contains reports whether p falls strictly inside the interval.
// Both endpoints are excluded: an interval does not contain its own
// start or end instant.
func (iv Interval) Contains(p time.Time) bool {
	return iv.start.Before(p) && p.Before(iv.end)
}

// Equal reports whether both bounds match.
func (iv Interval) Equal(other Interval) bool {
	return iv.start.Equal(other.start) && iv.end.Equal(other.end)
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s)", iv.start.Format(time.RFC3339), iv.end.Format(time.RFC3339))
}

// Relation classifies how one interval sits relative to another.
// Exactly one relation holds for any ordered pair.
type Relation int

const (
	// RelationNone means the intervals share no instant. Two intervals
	// that merely touch at an endpoint classify as RelationNone.
	RelationNone Relation = iota
	// RelationEqual means both bounds coincide.
	RelationEqual
	// RelationContains means the other interval lies fully inside this
	// one (bounds may touch, the pair is not equal).
	RelationContains
	// RelationInside is the mirror of RelationContains.
	RelationInside
	// RelationOverlapsStart means this interval starts at or before the
	// other and ends strictly inside it.
	RelationOverlapsStart
	// RelationOverlapsEnd means this interval starts strictly inside
	// the other and ends at or after it.
	RelationOverlapsEnd
)

func (r Relation) String() string {
	switch r {
	case RelationEqual:
		return "equal"
	case RelationContains:
		return "contains"
	case RelationInside:
		return "inside"
	case RelationOverlapsStart:
		return "overlaps-start"
	case RelationOverlapsEnd:
		return "overlaps-end"
	default:
		return "none"
	}
}

// Relate classifies how iv relates to other. The cases are tested in
// order, so nesting (endpoint-inclusive) wins over partial overlap
// (which requires a strict crossing). The mixed bounds policy is
// deliberate and pinned by the touching-interval tests: do not
// normalize it without re-checking how shared endpoints classify.
func (iv Interval) Relate(other Interval) Relation {
	switch {
	case iv.start.Equal(other.start) && iv.end.Equal(other.end):
		return RelationEqual
	case !iv.start.After(other.start) && !iv.end.Before(other.end):
		return RelationContains
	case !other.start.After(iv.start) && !other.end.Before(iv.end):
		return RelationInside
	case !iv.start.After(other.start) && iv.end.After(other.start) && iv.end.Before(other.end):
		return RelationOverlapsStart
	case iv.start.After(other.start) && iv.start.Before(other.end) && !iv.end.Before(other.end):
		return RelationOverlapsEnd
	default:
		return RelationNone
	}
}

// Overlaps reports whether the two intervals share at least one
// instant. Unlike Relate it is symmetric.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Relate(other) != RelationNone
}

// Merge returns the single interval covering both iv and other. It is
// only defined for overlapping pairs; merging disjoint intervals is a
// caller bug and returns ErrDisjointMerge.
func (iv Interval) Merge(other Interval) (Interval, error) {
	switch iv.Relate(other) {
	case RelationInside:
		return other, nil
	case RelationOverlapsStart:
		return Interval{start: iv.start, end: other.end}, nil
	case RelationOverlapsEnd:
		return Interval{start: other.start, end: iv.end}, nil
	case RelationEqual, RelationContains:
		return iv, nil
	default:
		return Interval{}, ErrDisjointMerge
	}
}

// Subtract removes the portions of iv covered by others and returns
// the disjoint fragments that remain, ordered by start. others is
// consumed left to right; when an entry splits the current span in
// two, both halves only compete against the entries after it.
// Zero-length sub-spans are never materialized.
//
// The traversal uses an explicit work list so depth is bounded by the
// split count, not by the length of others.
func Subtract(iv Interval, others []Interval) []Interval {
	type pending struct {
		span Interval
		next int
	}
	stack := []pending{{span: iv}}
	var fragments []Interval

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		hit := -1
		for i := cur.next; i < len(others); i++ {
			if cur.span.Overlaps(others[i]) {
				hit = i
				break
			}
		}
		if hit < 0 {
			fragments = append(fragments, cur.span)
			continue
		}

		o := others[hit]
		rest := hit + 1
		switch cur.span.Relate(o) {
		case RelationContains:
			// Right half pushed first so fragments pop out start-ordered.
			if o.end.Before(cur.span.end) {
				stack = append(stack, pending{span: Interval{start: o.end, end: cur.span.end}, next: rest})
			}
			if cur.span.start.Before(o.start) {
				stack = append(stack, pending{span: Interval{start: cur.span.start, end: o.start}, next: rest})
			}
		case RelationOverlapsStart:
			if cur.span.start.Before(o.start) {
				stack = append(stack, pending{span: Interval{start: cur.span.start, end: o.start}, next: rest})
			}
		case RelationOverlapsEnd:
			if o.end.Before(cur.span.end) {
				stack = append(stack, pending{span: Interval{start: o.end, end: cur.span.end}, next: rest})
			}
		case RelationEqual, RelationInside:
			// Fully covered, nothing survives.
		}
	}
	return fragments
}

// Intersect narrows iv against every entry of others in order and
// returns the remaining common span. The boolean is false when some
// entry does not overlap the span narrowed so far; there is no partial
// result in that case. An empty others leaves iv untouched.
func Intersect(iv Interval, others []Interval) (Interval, bool) {
	cur := iv
	for _, o := range others {
		switch cur.Relate(o) {
		case RelationOverlapsStart:
			cur = Interval{start: o.start, end: cur.end}
		case RelationOverlapsEnd:
			cur = Interval{start: cur.start, end: o.end}
		case RelationContains:
			cur = o
		case RelationNone:
			return Interval{}, false
		}
		// RelationEqual and RelationInside leave cur unchanged.
	}
	return cur, true
}
