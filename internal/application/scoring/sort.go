package scoring

import (
	"cmp"
	"slices"
	"time"
)

// SortKey names a triage ordering.
type SortKey string

const (
	SortNewest       SortKey = "newest"
	SortOldest       SortKey = "oldest"
	SortHighestScore SortKey = "highest_score"
	SortLowestScore  SortKey = "lowest_score"
	SortNeedsReview  SortKey = "needs_review"
)

// Sortable is implemented by anything that can be ordered for triage.
type Sortable interface {
	SortCreatedAt() time.Time
	SortScoring() Result
}

// ParseSortKey maps the listing query's sortBy and sortOrder pair to a key.
// "createdAt" and "averageScore" flip with sortOrder ("asc"/"desc"); the
// named keys pass through; anything else falls back to newest.
func ParseSortKey(sortBy, sortOrder string) SortKey {
	asc := sortOrder == "asc"
	switch sortBy {
	case "createdAt", "newest":
		if asc {
			return SortOldest
		}
		return SortNewest
	case "averageScore", "highest_score":
		if asc {
			return SortLowestScore
		}
		return SortHighestScore
	case string(SortOldest), string(SortLowestScore), string(SortNeedsReview):
		return SortKey(sortBy)
	}
	return SortNewest
}

// Sort returns a stably sorted copy of items. The input slice is not modified.
// For the score keys, items with no average always come last.
func Sort[T Sortable](items []T, key SortKey) []T {
	out := slices.Clone(items)
	switch key {
	case SortNewest:
		slices.SortStableFunc(out, func(a, b T) int { return b.SortCreatedAt().Compare(a.SortCreatedAt()) })
	case SortOldest:
		slices.SortStableFunc(out, func(a, b T) int { return a.SortCreatedAt().Compare(b.SortCreatedAt()) })
	case SortHighestScore:
		slices.SortStableFunc(out, func(a, b T) int { return compareAverage(a, b, true) })
	case SortLowestScore:
		slices.SortStableFunc(out, func(a, b T) int { return compareAverage(a, b, false) })
	case SortNeedsReview:
		slices.SortStableFunc(out, func(a, b T) int {
			if c := cmp.Compare(a.SortScoring().Count, b.SortScoring().Count); c != 0 {
				return c
			}
			return b.SortCreatedAt().Compare(a.SortCreatedAt())
		})
	}
	return out
}

func compareAverage[T Sortable](a, b T, desc bool) int {
	x, y := a.SortScoring().Average, b.SortScoring().Average
	switch {
	case x == nil && y == nil:
		return 0
	case x == nil:
		return 1
	case y == nil:
		return -1
	}
	if desc {
		return cmp.Compare(*y, *x)
	}
	return cmp.Compare(*x, *y)
}
