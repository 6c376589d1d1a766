package domain

import "time"

type SubmissionStatus string

const (
	StatusSubmitted SubmissionStatus = "SUBMITTED"
	StatusAccepted  SubmissionStatus = "ACCEPTED"
	StatusWaitlist  SubmissionStatus = "WAITLIST"
	StatusRejected  SubmissionStatus = "REJECTED"
)

// Valid reports whether s is one of the four known statuses.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusAccepted, StatusWaitlist, StatusRejected:
		return true
	}
	return false
}

// Submission is the durable video + profile record owned by one Applicant.
// Applicant name and email are denormalized for triage listings.
type Submission struct {
	SubmissionID     string           `json:"id" dynamodbav:"submission_id"`
	ApplicantID      string           `json:"applicant_id" dynamodbav:"applicant_id"`
	ApplicantEmail   string           `json:"applicant_email" dynamodbav:"applicant_email"`
	ApplicantName    string           `json:"applicant_name" dynamodbav:"applicant_name"`
	PromptID         string           `json:"prompt_id" dynamodbav:"prompt_id"`
	VideoKey         string           `json:"video_key" dynamodbav:"video_key"`
	VideoURL         string           `json:"video_url" dynamodbav:"video_url"`
	VideoDurationSec int              `json:"video_duration_sec" dynamodbav:"video_duration_sec"`
	Status           SubmissionStatus `json:"status" dynamodbav:"status"`
	CreatedAt        time.Time        `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time        `json:"updated" dynamodbav:"updated_at"`
}

// SubmissionCreated is published to external systems after a successful finalize.
type SubmissionCreated struct {
	SubmissionID   string    `json:"submission_id"`
	ApplicantID    string    `json:"applicant_id"`
	ApplicantEmail string    `json:"applicant_email"`
	ApplicantName  string    `json:"applicant_name"`
	PromptID       string    `json:"prompt_id"`
	VideoURL       string    `json:"video_url"`
	CreatedAt      time.Time `json:"created"`
}
