package domain

import "time"

// Reviewer roles carried in the JWT role claim.
const (
	RoleAdmin    = "ADMIN"
	RoleReviewer = "REVIEWER"
)

// Reviewer is a panel member who scores submissions. Keyed by lower-cased email.
type Reviewer struct {
	Email        string    `json:"email" dynamodbav:"email"`
	ReviewerID   string    `json:"id" dynamodbav:"reviewer_id"`
	Name         string    `json:"name" dynamodbav:"name"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	Role         string    `json:"role" dynamodbav:"role"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
