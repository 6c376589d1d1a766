package domain

import "time"

// Review is one reviewer's rubric scores for a submission.
// PK: submission_id, SK: reviewer_id, so a reviewer can only ever revise their own review.
type Review struct {
	SubmissionID                 string    `json:"submission_id" dynamodbav:"submission_id"`
	ReviewerID                   string    `json:"reviewer_id" dynamodbav:"reviewer_id"`
	ReviewerName                 string    `json:"reviewer_name,omitempty" dynamodbav:"reviewer_name,omitempty"`
	CuriosityVsEgo               int       `json:"curiosity_vs_ego" dynamodbav:"curiosity_vs_ego"`
	ParticipationVsSpectatorship int       `json:"participation_vs_spectatorship" dynamodbav:"participation_vs_spectatorship"`
	EmotionalIntelligence        int       `json:"emotional_intelligence" dynamodbav:"emotional_intelligence"`
	Notes                        string    `json:"notes,omitempty" dynamodbav:"notes,omitempty"`
	CreatedAt                    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt                    time.Time `json:"updated" dynamodbav:"updated_at"`
}

type SubmitReviewRequest struct {
	SubmissionID                 string `json:"submission_id" validate:"required"`
	CuriosityVsEgo               int    `json:"curiosity_vs_ego" validate:"required,min=1,max=5"`
	ParticipationVsSpectatorship int    `json:"participation_vs_spectatorship" validate:"required,min=1,max=5"`
	EmotionalIntelligence        int    `json:"emotional_intelligence" validate:"required,min=1,max=5"`
	Notes                        string `json:"notes" validate:"max=2000"`
}
