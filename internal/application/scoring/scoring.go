// Package scoring aggregates rubric reviews into a confidence-qualified
// average and orders submissions for triage. It performs no I/O.
package scoring

import "github.com/applicant-intake/internal/domain"

// Dimension is one scored rubric axis.
type Dimension string

const (
	CuriosityVsEgo               Dimension = "curiosity_vs_ego"
	ParticipationVsSpectatorship Dimension = "participation_vs_spectatorship"
	EmotionalIntelligence        Dimension = "emotional_intelligence"
)

// Dimensions lists every rubric axis in display order.
var Dimensions = []Dimension{CuriosityVsEgo, ParticipationVsSpectatorship, EmotionalIntelligence}

// Confidence summarizes how many independent reviews back an average.
type Confidence string

const (
	ConfidenceNone   Confidence = "none"
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Result is the computed scoring for one submission. A nil Average or
// breakdown value means there are no reviews; it is never coerced to 0.
type Result struct {
	Average    *float64               `json:"average_score"`
	Count      int                    `json:"review_count"`
	Confidence Confidence             `json:"confidence"`
	Breakdown  map[Dimension]*float64 `json:"breakdown"`
}

func scoreOf(r domain.Review, d Dimension) int {
	switch d {
	case CuriosityVsEgo:
		return r.CuriosityVsEgo
	case ParticipationVsSpectatorship:
		return r.ParticipationVsSpectatorship
	case EmotionalIntelligence:
		return r.EmotionalIntelligence
	}
	return 0
}

// ReviewAverage is the mean of a single review's three rubric scores.
func ReviewAverage(r domain.Review) float64 {
	return float64(r.CuriosityVsEgo+r.ParticipationVsSpectatorship+r.EmotionalIntelligence) / 3
}

// DimensionAverage is the mean of one dimension across reviews, or nil when there are none.
func DimensionAverage(reviews []domain.Review, d Dimension) *float64 {
	if len(reviews) == 0 {
		return nil
	}
	sum := 0
	for _, r := range reviews {
		sum += scoreOf(r, d)
	}
	avg := float64(sum) / float64(len(reviews))
	return &avg
}

// OverallAverage is the flat mean over all 3*len(reviews) rubric numbers,
// or nil when there are no reviews.
func OverallAverage(reviews []domain.Review) *float64 {
	if len(reviews) == 0 {
		return nil
	}
	sum := 0
	for _, r := range reviews {
		sum += r.CuriosityVsEgo + r.ParticipationVsSpectatorship + r.EmotionalIntelligence
	}
	avg := float64(sum) / float64(len(reviews)*len(Dimensions))
	return &avg
}

// ConfidenceFor maps a review count to its confidence label.
func ConfidenceFor(count int) Confidence {
	switch {
	case count <= 0:
		return ConfidenceNone
	case count == 1:
		return ConfidenceLow
	case count == 2:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}

// Score composes the average, count, confidence and per-dimension breakdown.
func Score(reviews []domain.Review) Result {
	breakdown := make(map[Dimension]*float64, len(Dimensions))
	for _, d := range Dimensions {
		breakdown[d] = DimensionAverage(reviews, d)
	}
	return Result{
		Average:    OverallAverage(reviews),
		Count:      len(reviews),
		Confidence: ConfidenceFor(len(reviews)),
		Breakdown:  breakdown,
	}
}
