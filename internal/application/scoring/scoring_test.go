package scoring

import (
	"testing"

	"github.com/applicant-intake/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rv(c, p, e int) domain.Review {
	return domain.Review{CuriosityVsEgo: c, ParticipationVsSpectatorship: p, EmotionalIntelligence: e}
}

func TestReviewAverage(t *testing.T) {
	assert.Equal(t, 4.0, ReviewAverage(rv(4, 3, 5)))
	assert.Equal(t, 3.0, ReviewAverage(rv(3, 3, 3)))
	assert.InDelta(t, 4.33, ReviewAverage(rv(5, 4, 4)), 0.01)
}

func TestDimensionAverage_Empty(t *testing.T) {
	for _, d := range Dimensions {
		assert.Nil(t, DimensionAverage(nil, d))
	}
}

func TestDimensionAverage_MultipleReviews(t *testing.T) {
	reviews := []domain.Review{rv(4, 3, 5), rv(2, 4, 3)}
	assert.Equal(t, 3.0, *DimensionAverage(reviews, CuriosityVsEgo))
	assert.Equal(t, 3.5, *DimensionAverage(reviews, ParticipationVsSpectatorship))
	assert.Equal(t, 4.0, *DimensionAverage(reviews, EmotionalIntelligence))
}

func TestOverallAverage_Empty(t *testing.T) {
	assert.Nil(t, OverallAverage([]domain.Review{}))
}

func TestOverallAverage_IsFlatMean(t *testing.T) {
	reviews := []domain.Review{rv(5, 4, 3), rv(4, 3, 5), rv(3, 5, 4)}
	assert.Equal(t, 4.0, *OverallAverage(reviews))

	reviews = []domain.Review{rv(1, 2, 2), rv(5, 5, 4), rv(3, 1, 1), rv(2, 2, 5)}
	sum := 0
	for _, r := range reviews {
		sum += r.CuriosityVsEgo + r.ParticipationVsSpectatorship + r.EmotionalIntelligence
	}
	assert.InDelta(t, float64(sum)/12, *OverallAverage(reviews), 1e-12)
}

func TestConfidenceFor(t *testing.T) {
	cases := map[int]Confidence{
		0: ConfidenceNone, 1: ConfidenceLow, 2: ConfidenceMedium,
		3: ConfidenceHigh, 5: ConfidenceHigh, 10: ConfidenceHigh,
	}
	for n, want := range cases {
		assert.Equal(t, want, ConfidenceFor(n), "count %d", n)
	}
}

func TestConfidenceFor_Monotonic(t *testing.T) {
	rank := map[Confidence]int{ConfidenceNone: 0, ConfidenceLow: 1, ConfidenceMedium: 2, ConfidenceHigh: 3}
	prev := -1
	for n := 0; n < 20; n++ {
		r := rank[ConfidenceFor(n)]
		assert.GreaterOrEqual(t, r, prev)
		prev = r
	}
}

func TestScore_NoReviews(t *testing.T) {
	res := Score(nil)
	assert.Nil(t, res.Average)
	assert.Zero(t, res.Count)
	assert.Equal(t, ConfidenceNone, res.Confidence)
	require.Len(t, res.Breakdown, 3)
	for _, d := range Dimensions {
		assert.Nil(t, res.Breakdown[d])
	}
}

func TestScore_ThreeReviewsHighConfidence(t *testing.T) {
	res := Score([]domain.Review{rv(4, 4, 4), rv(2, 2, 2), rv(3, 3, 3)})
	require.NotNil(t, res.Average)
	assert.Equal(t, 3.0, *res.Average)
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, ConfidenceHigh, res.Confidence)
	for _, d := range Dimensions {
		require.NotNil(t, res.Breakdown[d])
		assert.Equal(t, 3.0, *res.Breakdown[d])
	}
}

func TestScore_BreakdownMatchesDimensionAverage(t *testing.T) {
	reviews := []domain.Review{rv(5, 1, 3), rv(2, 4, 4)}
	res := Score(reviews)
	for _, d := range Dimensions {
		assert.Equal(t, *DimensionAverage(reviews, d), *res.Breakdown[d], string(d))
	}
	assert.Equal(t, ConfidenceMedium, res.Confidence)
}
