package core

import "errors"

// User / signup errors
var (
	ErrMissingField = errors.New("all fields are required")  // 400
	ErrUserExists   = errors.New("user already exists")      // 400
	ErrUserNotFound = errors.New("user not found")           // 401 (collapsed)
)

// Authentication errors
var (
	ErrUserUnverified     = errors.New("email not verified")          // 401
	ErrInvalidCredentials = errors.New("invalid email or password")   // 401
	ErrInvalidToken       = errors.New("invalid or expired token")    // 400/401
)

// Side-effect errors the handlers must keep distinct
var (
	ErrUserCreation      = errors.New("failed to create user")
	ErrVerificationEmail = errors.New("user created, but failed to send verification email")
)

// Config errors (server-side)
var (
	ErrAPIKeyMissing = errors.New("generative service API key is not configured")
)
