package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEmailVerified = "email_verified"
	fieldStatus        = "status"
	fieldUpdatedAt     = "updated_at"
	fieldCreatedAt     = "created_at"
)
