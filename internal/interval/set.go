package interval

import (
	"sort"
	"time"
)

// Set is a collection of pairwise non-overlapping intervals, kept
// sorted by start. The zero value is an empty set ready to use.
//
// Every mutating operation replaces the backing slice wholesale and
// Intervals hands out a copy, so a Set never shares its members with
// callers.
type Set struct {
	members []Interval
}

// NewSet builds a set from the given intervals, merging any overlaps.
func NewSet(intervals ...Interval) Set {
	var s Set
	for _, iv := range intervals {
		s.Add(iv)
	}
	return s
}

// Add folds iv into the set, absorbing every member it overlaps.
// Merging can widen the incoming interval onto members the previous
// scan skipped, so the scan repeats until a pass finds no overlap.
// A single pass is not enough: adding [1,5) to {[0,2), [4,6)} must
// collapse the whole set to [0,6).
func (s *Set) Add(iv Interval) {
	incoming := iv
	remaining := s.members
	for {
		merged := false
		keep := make([]Interval, 0, len(remaining))
		for _, m := range remaining {
			if !incoming.Overlaps(m) {
				keep = append(keep, m)
				continue
			}
			combined, err := incoming.Merge(m)
			if err != nil {
				// Unreachable: Overlaps was just checked.
				keep = append(keep, m)
				continue
			}
			incoming = combined
			merged = true
		}
		remaining = keep
		if !merged {
			break
		}
	}
	s.members = insertByStart(remaining, incoming)
}

// AddSet folds every member of other into the set.
func (s *Set) AddSet(other Set) {
	for _, iv := range other.members {
		s.Add(iv)
	}
}

// Subtract removes the portion covered by iv from every member.
func (s *Set) Subtract(iv Interval) {
	next := make([]Interval, 0, len(s.members))
	for _, m := range s.members {
		next = append(next, Subtract(m, []Interval{iv})...)
	}
	s.members = next
}

// SubtractSet subtracts every member of other, cumulatively.
func (s *Set) SubtractSet(other Set) {
	for _, iv := range other.members {
		s.Subtract(iv)
	}
}

// Intersect narrows the set against each target in turn: a member
// survives as its intersection with each target member it overlaps.
// Intersecting with targets B then C equals Intersect(B, C) in one
// call, so "free in all of N groups" composes either way.
func (s *Set) Intersect(targets ...Set) {
	cur := s.members
	for _, target := range targets {
		var next []Interval
		for _, m := range cur {
			for _, t := range target.members {
				if !m.Overlaps(t) {
					continue
				}
				if narrowed, ok := Intersect(m, []Interval{t}); ok {
					next = append(next, narrowed)
				}
			}
		}
		cur = next
	}
	sort.Slice(cur, func(i, j int) bool { return cur[i].start.Before(cur[j].start) })
	s.members = cur
}

// Intervals returns a copy of the members sorted by start.
func (s Set) Intervals() []Interval {
	out := make([]Interval, len(s.members))
	copy(out, s.members)
	return out
}

func (s Set) Len() int { return len(s.members) }

// TotalDuration sums the lengths of all members.
func (s Set) TotalDuration() time.Duration {
	var total time.Duration
	for _, m := range s.members {
		total += m.Duration()
	}
	return total
}

func insertByStart(members []Interval, iv Interval) []Interval {
	i := sort.Search(len(members), func(i int) bool {
		return members[i].start.After(iv.start)
	})
	members = append(members, Interval{})
	copy(members[i+1:], members[i:])
	members[i] = iv
	return members
}
