package domain

import "time"

type Prompt struct {
	PromptID  string    `json:"id" dynamodbav:"prompt_id"`
	Text      string    `json:"text" dynamodbav:"text"`
	Active    bool      `json:"active" dynamodbav:"active"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}
