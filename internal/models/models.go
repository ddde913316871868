package models

import (
	"time"
)

// User represents an authenticated user of the system.
// PasswordHash is empty for federated accounts; those cannot log in via the
// credential path.
type User struct {
	ID                string    `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Email             string    `db:"email" json:"email"`
	PasswordHash      string    `db:"password_hash" json:"-"`
	IsVerified        bool      `db:"is_verified" json:"is_verified"`
	VerificationToken string    `db:"verification_token" json:"-"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// ClassificationResult is the classifier service's answer for an uploaded
// scan. Category selects the prompt template; Prediction is the model's
// label within that category.
type ClassificationResult struct {
	Category      string `json:"category"`
	Prediction    string `json:"prediction"`
	PredictionIdx int    `json:"prediction_idx,omitempty"`
}
