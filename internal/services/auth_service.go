package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rmullur/medist/internal/core"
	"github.com/rmullur/medist/internal/models"
)

const bcryptCost = 12

// AuthService owns account creation, credential and federated login, and
// email verification. Token issuance is the handler's job; this layer only
// decides who the user is.
type AuthService struct {
	db     core.DbClient
	mailer core.Mailer
	logger *zap.Logger
}

func NewAuthService(db core.DbClient, mailer core.Mailer, logger *zap.Logger) *AuthService {
	return &AuthService{db: db, mailer: mailer, logger: logger}
}

// Signup registers a credential-based account and sends the verification
// email. Persistence failure aborts the operation; a mail failure after a
// successful insert is reported as core.ErrVerificationEmail so callers can
// keep the two outcomes distinct — the account exists and can still be
// verified through the resend path.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) error {
	if name == "" || email == "" || password == "" {
		return core.ErrMissingField
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrUserCreation, err)
	}

	token, err := newVerificationToken()
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrUserCreation, err)
	}

	user := &models.User{
		ID:                uuid.NewString(),
		Name:              name,
		Email:             email,
		PasswordHash:      string(hash),
		IsVerified:        false,
		VerificationToken: token,
	}

	if err := s.db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, core.ErrUserExists) {
			return core.ErrUserExists
		}
		s.logger.Error("user creation failed", zap.Error(err))
		return fmt.Errorf("%w: %v", core.ErrUserCreation, err)
	}

	if err := s.mailer.SendVerification(user.Email, user.Name, token); err != nil {
		s.logger.Error("verification email failed", zap.String("email", email), zap.Error(err))
		return core.ErrVerificationEmail
	}
	return nil
}

// Login authenticates the credential path. Callers collapse ErrUserNotFound
// and ErrInvalidCredentials into one generic message; the distinction exists
// for logging and tests only.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, core.ErrUserNotFound
	}
	if !user.IsVerified {
		return nil, core.ErrUserUnverified
	}
	// Federated accounts have no hash and cannot use this path.
	if user.PasswordHash == "" {
		return nil, core.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, core.ErrInvalidCredentials
	}
	return user, nil
}

// FederatedSignIn upserts a verified account for an already-asserted
// identity. First sign-in inserts; later sign-ins reuse the record. A lost
// insert race falls back to the winner's row.
func (s *AuthService) FederatedSignIn(ctx context.Context, name, email string) (*models.User, error) {
	user, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user = &models.User{
		ID:         uuid.NewString(),
		Name:       name,
		Email:      email,
		IsVerified: true,
	}
	if err := s.db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, core.ErrUserExists) {
			return s.fetchExisting(ctx, email)
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) fetchExisting(ctx context.Context, email string) (*models.User, error) {
	user, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, core.ErrUserNotFound
	}
	return user, nil
}

// VerifyEmail consumes a verification link token.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return core.ErrInvalidToken
	}
	user, err := s.db.GetUserByVerificationToken(ctx, token)
	if err != nil {
		return err
	}
	if user == nil {
		return core.ErrInvalidToken
	}
	return s.db.MarkUserVerified(ctx, user.ID)
}

// ResendVerification re-sends the stored token. It reports nothing about
// account existence or state to the caller; failures are logged only.
func (s *AuthService) ResendVerification(ctx context.Context, email string) {
	user, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		s.logger.Error("resend lookup failed", zap.Error(err))
		return
	}
	if user == nil || user.IsVerified || user.VerificationToken == "" {
		return
	}
	if err := s.mailer.SendVerification(user.Email, user.Name, user.VerificationToken); err != nil {
		s.logger.Error("resend verification email failed", zap.String("email", email), zap.Error(err))
	}
}

func newVerificationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
