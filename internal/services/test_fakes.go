package services

import (
	"context"
	"errors"
	"sync"

	"github.com/rmullur/medist/internal/core"
	"github.com/rmullur/medist/internal/models"
)

// FakeDbClient is an in-memory DbClient for tests.
type FakeDbClient struct {
	mu     sync.Mutex
	users  map[string]*models.User // keyed by email
	FailOn string                  // method name to fail, empty for none
}

func NewFakeDbClient() *FakeDbClient {
	return &FakeDbClient{users: make(map[string]*models.User)}
}

func (f *FakeDbClient) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailOn == "CreateUser" {
		return errors.New("simulated db failure")
	}
	if _, ok := f.users[user.Email]; ok {
		return core.ErrUserExists
	}
	cp := *user
	f.users[user.Email] = &cp
	return nil
}

func (f *FakeDbClient) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailOn == "GetUserByEmail" {
		return nil, errors.New("simulated db failure")
	}
	u, ok := f.users[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *FakeDbClient) GetUserByVerificationToken(_ context.Context, token string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.VerificationToken == token && u.VerificationToken != "" {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *FakeDbClient) MarkUserVerified(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			u.IsVerified = true
			u.VerificationToken = ""
			return nil
		}
	}
	return errors.New("user not found")
}

func (f *FakeDbClient) Close() error { return nil }

// Count reports how many users the fake holds.
func (f *FakeDbClient) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

var _ core.DbClient = (*FakeDbClient)(nil)

// FakeMailer records sent verifications and optionally fails.
type FakeMailer struct {
	mu   sync.Mutex
	Sent []string // recipient emails
	Err  error
}

func (f *FakeMailer) SendVerification(to, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Sent = append(f.Sent, to)
	return nil
}

var _ core.Mailer = (*FakeMailer)(nil)
