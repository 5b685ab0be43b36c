package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTitle is used when an advice request carries no title
const DefaultTitle = "Untitled"

// Advice is one persisted prompt/answer exchange owned by a user
type Advice struct {
	ID          uuid.UUID `json:"id" db:"id"`
	InputPrompt string    `json:"input_prompt" db:"input_prompt"`
	Result      string    `json:"result" db:"result"`
	UserID      string    `json:"user_id" db:"user_id"` // identity-service subject, opaque
	Title       string    `json:"title" db:"title"`
	Provider    string    `json:"provider" db:"provider"` // provider that actually answered
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Advice model
func (Advice) TableName() string {
	return "advices"
}

// NewAdvice creates a new Advice with a fresh id and creation time
func NewAdvice(userID, title, prompt, result, provider string) *Advice {
	if title == "" {
		title = DefaultTitle
	}
	return &Advice{
		ID:          uuid.New(),
		InputPrompt: prompt,
		Result:      result,
		UserID:      userID,
		Title:       title,
		Provider:    provider,
		CreatedAt:   time.Now().UTC(),
	}
}

// BelongsTo reports whether userID owns the advice
func (a *Advice) BelongsTo(userID string) bool {
	return a.UserID != "" && a.UserID == userID
}
