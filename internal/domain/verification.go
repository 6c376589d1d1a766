package domain

import "time"

// VerificationCode is a short-lived one-time code bound to a lower-cased email.
type VerificationCode struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

type CheckCodeRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}
