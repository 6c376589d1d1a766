package domain

import (
	"strings"
	"time"
)

// Profile is the set of applicant-entered fields collected before the video step.
type Profile struct {
	Name        string   `json:"name" dynamodbav:"name" validate:"required,max=100"`
	Email       string   `json:"email" dynamodbav:"email" validate:"required,email"`
	Location    string   `json:"location" dynamodbav:"location" validate:"required,max=100"`
	Timezone    string   `json:"timezone" dynamodbav:"timezone" validate:"required"`
	RoleCompany string   `json:"role_company,omitempty" dynamodbav:"role_company,omitempty" validate:"max=150"`
	HeardAbout  string   `json:"heard_about" dynamodbav:"heard_about" validate:"required,max=200"`
	PriorEvents string   `json:"prior_events,omitempty" dynamodbav:"prior_events,omitempty" validate:"max=300"`
	ThreeWords  string   `json:"three_words" dynamodbav:"three_words" validate:"required,max=100"`
	Bio         string   `json:"bio" dynamodbav:"bio" validate:"required,min=10,max=500"`
	Links       []string `json:"links,omitempty" dynamodbav:"links,omitempty" validate:"max=5,dive,url"`
}

// NormalizeEmail is the canonical form used for every email lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PendingApplication is an in-progress application addressable only by its token.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type PendingApplication struct {
	Token         string    `json:"token" dynamodbav:"token"`
	Email         string    `json:"email" dynamodbav:"email"`
	Profile       Profile   `json:"profile" dynamodbav:"profile"`
	PromptID      string    `json:"prompt_id" dynamodbav:"prompt_id"`
	EmailVerified bool      `json:"email_verified" dynamodbav:"email_verified"`
	ExpiresAt     int64     `json:"expires_at" dynamodbav:"expires_at"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
}

// Expired reports whether the record is past its expiry at now.
func (p *PendingApplication) Expired(now time.Time) bool {
	return p.ExpiresAt < now.Unix()
}

// ExpiryTime returns ExpiresAt as a time in UTC.
func (p *PendingApplication) ExpiryTime() time.Time {
	return time.Unix(p.ExpiresAt, 0).UTC()
}

// Applicant is the durable identity of a person. Email is unique across all time.
type Applicant struct {
	Email       string    `json:"email" dynamodbav:"email"`
	ApplicantID string    `json:"id" dynamodbav:"applicant_id"`
	Profile     Profile   `json:"profile" dynamodbav:"profile"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
}

type StartApplicationRequest struct {
	Profile
	Website string `json:"website"` // honeypot, must stay empty
}
