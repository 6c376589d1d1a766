package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	created time.Time
	result  Result
}

func (i item) SortCreatedAt() time.Time { return i.created }
func (i item) SortScoring() Result      { return i.result }

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

func mk(d int, avg *float64, count int) item {
	return item{created: day(d), result: Result{Average: avg, Count: count, Confidence: ConfidenceFor(count)}}
}

func f(v float64) *float64 { return &v }

func fixture() []item {
	return []item{
		mk(1, f(3.5), 2),
		mk(3, f(4.5), 3),
		mk(2, nil, 0),
		mk(4, f(2.5), 1),
	}
}

func days(items []item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.created.Day()
	}
	return out
}

func TestSort_Newest(t *testing.T) {
	assert.Equal(t, []int{4, 3, 2, 1}, days(Sort(fixture(), SortNewest)))
}

func TestSort_Oldest(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 4}, days(Sort(fixture(), SortOldest)))
}

func TestSort_HighestScore_NullLast(t *testing.T) {
	sorted := Sort(fixture(), SortHighestScore)
	require.Len(t, sorted, 4)
	assert.Equal(t, 4.5, *sorted[0].result.Average)
	assert.Equal(t, 3.5, *sorted[1].result.Average)
	assert.Equal(t, 2.5, *sorted[2].result.Average)
	assert.Nil(t, sorted[3].result.Average)
}

func TestSort_LowestScore_NullLast(t *testing.T) {
	sorted := Sort(fixture(), SortLowestScore)
	require.Len(t, sorted, 4)
	assert.Equal(t, 2.5, *sorted[0].result.Average)
	assert.Equal(t, 3.5, *sorted[1].result.Average)
	assert.Equal(t, 4.5, *sorted[2].result.Average)
	assert.Nil(t, sorted[3].result.Average)
}

func TestSort_ScoreKeys_AllNullsAfterAllScored(t *testing.T) {
	items := []item{mk(1, nil, 0), mk(2, f(1), 1), mk(3, nil, 0), mk(4, f(5), 1), mk(5, nil, 0)}
	for _, key := range []SortKey{SortHighestScore, SortLowestScore} {
		sorted := Sort(items, key)
		seenNull := false
		for _, it := range sorted {
			if it.result.Average == nil {
				seenNull = true
				continue
			}
			assert.False(t, seenNull, "scored item after a null for %s", key)
		}
	}
}

func TestSort_NeedsReview_TiesBrokenByNewest(t *testing.T) {
	items := []item{mk(1, nil, 0), mk(2, f(3), 1), mk(3, nil, 0), mk(4, f(3), 1)}
	assert.Equal(t, []int{3, 1, 4, 2}, days(Sort(items, SortNeedsReview)))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	in := fixture()
	before := days(in)
	out := Sort(in, SortNewest)
	assert.Equal(t, before, days(in))
	assert.NotSame(t, &in[0], &out[0])
}

func TestSort_UnknownKeyKeepsOrder(t *testing.T) {
	assert.Equal(t, []int{1, 3, 2, 4}, days(Sort(fixture(), SortKey("bogus"))))
}

func TestParseSortKey(t *testing.T) {
	cases := []struct {
		by, order string
		want      SortKey
	}{
		{"createdAt", "desc", SortNewest},
		{"createdAt", "asc", SortOldest},
		{"newest", "", SortNewest},
		{"averageScore", "desc", SortHighestScore},
		{"averageScore", "asc", SortLowestScore},
		{"highest_score", "", SortHighestScore},
		{"lowest_score", "desc", SortLowestScore},
		{"needs_review", "", SortNeedsReview},
		{"oldest", "", SortOldest},
		{"", "", SortNewest},
		{"name", "asc", SortNewest},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseSortKey(c.by, c.order), "%s/%s", c.by, c.order)
	}
}
