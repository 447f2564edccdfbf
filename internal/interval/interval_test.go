package interval

import (
	"errors"
	"testing"
	"time"
)

func at(h, m int) time.Time {
	return time.Date(2026, 1, 28, h, m, 0, 0, time.UTC)
}

func span(t *testing.T, sh, sm, eh, em int) Interval {
	t.Helper()
	iv, err := New(at(sh, sm), at(eh, em))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return iv
}

func TestNew_RejectsInvalidBounds(t *testing.T) {
	if _, err := New(at(9, 0), at(9, 0)); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval for zero-length span, got %v", err)
	}
	if _, err := New(at(10, 0), at(9, 0)); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval for inverted span, got %v", err)
	}
}

func TestContains_ExcludesEndpoints(t *testing.T) {
	iv := span(t, 9, 0, 17, 0)
	if iv.Contains(at(9, 0)) {
		t.Fatal("interval must not contain its start instant")
	}
	if iv.Contains(at(17, 0)) {
		t.Fatal("interval must not contain its end instant")
	}
	if !iv.Contains(at(12, 0)) {
		t.Fatal("interval must contain an interior instant")
	}
	if iv.Contains(at(8, 59)) || iv.Contains(at(17, 1)) {
		t.Fatal("interval must not contain instants outside its bounds")
	}
}

func relateCases(t *testing.T) []struct {
	name string
	a, b Interval
	want Relation
} {
	t.Helper()
	return []struct {
		name string
		a, b Interval
		want Relation
	}{
		{"equal", span(t, 8, 0, 12, 0), span(t, 8, 0, 12, 0), RelationEqual},
		{"contains nested", span(t, 8, 0, 12, 0), span(t, 9, 0, 10, 0), RelationContains},
		{"contains shared start", span(t, 8, 0, 12, 0), span(t, 8, 0, 10, 0), RelationContains},
		{"contains shared end", span(t, 8, 0, 12, 0), span(t, 10, 0, 12, 0), RelationContains},
		{"inside nested", span(t, 9, 0, 10, 0), span(t, 8, 0, 12, 0), RelationInside},
		{"inside shared start", span(t, 8, 0, 10, 0), span(t, 8, 0, 12, 0), RelationInside},
		{"inside shared end", span(t, 10, 0, 12, 0), span(t, 8, 0, 12, 0), RelationInside},
		{"overlaps start of other", span(t, 8, 0, 10, 0), span(t, 9, 0, 12, 0), RelationOverlapsStart},
		{"overlaps end of other", span(t, 9, 0, 12, 0), span(t, 8, 0, 10, 0), RelationOverlapsEnd},
		{"touching left", span(t, 8, 0, 9, 0), span(t, 9, 0, 10, 0), RelationNone},
		{"touching right", span(t, 9, 0, 10, 0), span(t, 8, 0, 9, 0), RelationNone},
		{"disjoint", span(t, 8, 0, 9, 0), span(t, 10, 0, 11, 0), RelationNone},
	}
}

func TestRelate(t *testing.T) {
	for _, tc := range relateCases(t) {
		if got := tc.a.Relate(tc.b); got != tc.want {
			t.Errorf("%s: Relate(%s, %s) = %s, want %s", tc.name, tc.a, tc.b, got, tc.want)
		}
	}
}

func TestOverlaps_Symmetric(t *testing.T) {
	for _, tc := range relateCases(t) {
		ab := tc.a.Overlaps(tc.b)
		ba := tc.b.Overlaps(tc.a)
		if ab != ba {
			t.Errorf("%s: Overlaps not symmetric: a/b=%v b/a=%v", tc.name, ab, ba)
		}
		if want := tc.want != RelationNone; ab != want {
			t.Errorf("%s: Overlaps = %v, want %v", tc.name, ab, want)
		}
	}
}

func TestMerge(t *testing.T) {
	cases := []struct {
		name string
		a, b Interval
		want Interval
	}{
		{"equal keeps this", span(t, 8, 0, 10, 0), span(t, 8, 0, 10, 0), span(t, 8, 0, 10, 0)},
		{"contains keeps this", span(t, 8, 0, 12, 0), span(t, 9, 0, 10, 0), span(t, 8, 0, 12, 0)},
		{"inside takes other", span(t, 9, 0, 10, 0), span(t, 8, 0, 12, 0), span(t, 8, 0, 12, 0)},
		{"overlap at start of other", span(t, 8, 0, 10, 0), span(t, 9, 0, 12, 0), span(t, 8, 0, 12, 0)},
		{"overlap at end of other", span(t, 9, 0, 12, 0), span(t, 8, 0, 10, 0), span(t, 8, 0, 12, 0)},
	}
	for _, tc := range cases {
		got, err := tc.a.Merge(tc.b)
		if err != nil {
			t.Errorf("%s: Merge failed: %v", tc.name, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("%s: Merge = %s, want %s", tc.name, got, tc.want)
		}
	}

	if _, err := span(t, 8, 0, 9, 0).Merge(span(t, 10, 0, 11, 0)); !errors.Is(err, ErrDisjointMerge) {
		t.Fatalf("expected ErrDisjointMerge for disjoint pair, got %v", err)
	}
	if _, err := span(t, 8, 0, 9, 0).Merge(span(t, 9, 0, 10, 0)); !errors.Is(err, ErrDisjointMerge) {
		t.Fatalf("expected ErrDisjointMerge for touching pair, got %v", err)
	}
}

func TestSubtract_ShiftScenario(t *testing.T) {
	avail := span(t, 8, 0, 18, 0)
	shifts := []Interval{
		span(t, 8, 0, 15, 15),
		span(t, 15, 30, 16, 0),
		span(t, 16, 0, 17, 30),
	}

	free := Subtract(avail, shifts)
	want := []Interval{span(t, 15, 15, 15, 30), span(t, 17, 30, 18, 0)}
	if len(free) != len(want) {
		t.Fatalf("expected %d fragments, got %d: %v", len(want), len(free), free)
	}
	for i := range want {
		if !free[i].Equal(want[i]) {
			t.Errorf("fragment %d = %s, want %s", i, free[i], want[i])
		}
	}
	if free[0].Duration() != 15*time.Minute {
		t.Errorf("first gap = %s, want 15m", free[0].Duration())
	}
	if free[1].Duration() != 30*time.Minute {
		t.Errorf("second gap = %s, want 30m", free[1].Duration())
	}
}

func TestSubtract_Edges(t *testing.T) {
	avail := span(t, 8, 0, 18, 0)

	if got := Subtract(avail, nil); len(got) != 1 || !got[0].Equal(avail) {
		t.Fatalf("subtracting nothing should return the original, got %v", got)
	}
	if got := Subtract(avail, []Interval{span(t, 19, 0, 20, 0)}); len(got) != 1 || !got[0].Equal(avail) {
		t.Fatalf("subtracting a disjoint interval should return the original, got %v", got)
	}
	if got := Subtract(avail, []Interval{avail}); len(got) != 0 {
		t.Fatalf("subtracting an equal interval should leave nothing, got %v", got)
	}
	if got := Subtract(avail, []Interval{span(t, 7, 0, 19, 0)}); len(got) != 0 {
		t.Fatalf("subtracting a covering interval should leave nothing, got %v", got)
	}

	// Split in the middle produces both halves.
	got := Subtract(avail, []Interval{span(t, 10, 0, 12, 0)})
	if len(got) != 2 || !got[0].Equal(span(t, 8, 0, 10, 0)) || !got[1].Equal(span(t, 12, 0, 18, 0)) {
		t.Fatalf("split = %v", got)
	}

	// Shared boundaries must never yield zero-length fragments.
	got = Subtract(avail, []Interval{span(t, 8, 0, 10, 0)})
	if len(got) != 1 || !got[0].Equal(span(t, 10, 0, 18, 0)) {
		t.Fatalf("prefix removal = %v", got)
	}
	got = Subtract(avail, []Interval{span(t, 16, 0, 18, 0)})
	if len(got) != 1 || !got[0].Equal(span(t, 8, 0, 16, 0)) {
		t.Fatalf("suffix removal = %v", got)
	}
}

func TestSubtract_Conservation(t *testing.T) {
	x := span(t, 8, 0, 18, 0)
	others := []Interval{
		span(t, 7, 0, 9, 0),
		span(t, 10, 0, 11, 0),
		span(t, 17, 0, 19, 0),
	}

	fragments := Subtract(x, others)

	var freeTotal time.Duration
	for i, f := range fragments {
		if f.Start().Before(x.Start()) || f.End().After(x.End()) {
			t.Errorf("fragment %s escapes %s", f, x)
		}
		freeTotal += f.Duration()
		for j := i + 1; j < len(fragments); j++ {
			if f.Overlaps(fragments[j]) {
				t.Errorf("fragments %s and %s overlap", f, fragments[j])
			}
		}
	}

	var coveredTotal time.Duration
	for _, o := range others {
		if covered, ok := Intersect(x, []Interval{o}); ok {
			coveredTotal += covered.Duration()
		}
	}

	if freeTotal+coveredTotal != x.Duration() {
		t.Fatalf("conservation violated: free %s + covered %s != %s", freeTotal, coveredTotal, x.Duration())
	}
}

func TestIntersect(t *testing.T) {
	a := span(t, 8, 0, 12, 0)

	if got, ok := Intersect(a, []Interval{a}); !ok || !got.Equal(a) {
		t.Fatalf("Intersect(A, [A]) = %v, %v; want A, true", got, ok)
	}
	if got, ok := Intersect(a, nil); !ok || !got.Equal(a) {
		t.Fatalf("Intersect over empty list = %v, %v; want A, true", got, ok)
	}
	if _, ok := Intersect(a, []Interval{span(t, 13, 0, 14, 0)}); ok {
		t.Fatal("Intersect with a disjoint interval must report no result")
	}
	if _, ok := Intersect(a, []Interval{span(t, 12, 0, 14, 0)}); ok {
		t.Fatal("Intersect with a touching interval must report no result")
	}

	// Narrowing against a chain trims both sides.
	got, ok := Intersect(a, []Interval{span(t, 9, 0, 14, 0), span(t, 7, 0, 10, 0)})
	if !ok || !got.Equal(span(t, 9, 0, 10, 0)) {
		t.Fatalf("chained Intersect = %v, %v; want [09:00, 10:00), true", got, ok)
	}

	// The first non-overlap short-circuits even if later entries match.
	if _, ok := Intersect(a, []Interval{span(t, 13, 0, 14, 0), a}); ok {
		t.Fatal("Intersect must short-circuit on the first non-overlap")
	}
}
