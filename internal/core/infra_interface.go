package core

import (
	"context"
	"io"

	"github.com/rmullur/medist/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres so higher layers never depend on a specific DB.
type DbClient interface {
	// CreateUser inserts a new user. Returns ErrUserExists when the email is
	// already taken; the insert must be atomic under concurrent signups.
	CreateUser(ctx context.Context, user *models.User) (err error)
	GetUserByEmail(ctx context.Context, email string) (user *models.User, err error)
	GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error)
	MarkUserVerified(ctx context.Context, id string) error

	Close() error
}

// LLMProvider generates a free-text reply for a prompt.
type LLMProvider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ImageClassifier labels an uploaded scan with a medical category and a
// prediction within that category.
type ImageClassifier interface {
	Classify(ctx context.Context, filename string, image io.Reader) (*models.ClassificationResult, error)
}

// Mailer delivers the out-of-band verification email.
type Mailer interface {
	SendVerification(to, name, token string) error
}
