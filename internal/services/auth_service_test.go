package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rmullur/medist/internal/core"
	"github.com/rmullur/medist/internal/models"
)

func newService() (*AuthService, *FakeDbClient, *FakeMailer) {
	db := NewFakeDbClient()
	mailer := &FakeMailer{}
	return NewAuthService(db, mailer, zap.NewNop()), db, mailer
}

func TestSignup(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
		setup    func(*FakeDbClient, *FakeMailer)
		wantErr  error
	}{
		{
			name:     "creates unverified user and sends mail",
			userName: "A",
			email:    "a@x.com",
			password: "pw",
		},
		{
			name:     "missing name",
			userName: "",
			email:    "a@x.com",
			password: "pw",
			wantErr:  core.ErrMissingField,
		},
		{
			name:     "missing email",
			userName: "A",
			email:    "",
			password: "pw",
			wantErr:  core.ErrMissingField,
		},
		{
			name:     "missing password",
			userName: "A",
			email:    "a@x.com",
			password: "",
			wantErr:  core.ErrMissingField,
		},
		{
			name:     "duplicate email",
			userName: "A",
			email:    "a@x.com",
			password: "pw",
			setup: func(db *FakeDbClient, _ *FakeMailer) {
				_ = db.CreateUser(context.Background(), &models.User{ID: "u1", Email: "a@x.com"})
			},
			wantErr: core.ErrUserExists,
		},
		{
			name:     "persistence failure aborts",
			userName: "A",
			email:    "a@x.com",
			password: "pw",
			setup: func(db *FakeDbClient, _ *FakeMailer) {
				db.FailOn = "CreateUser"
			},
			wantErr: core.ErrUserCreation,
		},
		{
			name:     "mail failure reported distinctly",
			userName: "A",
			email:    "a@x.com",
			password: "pw",
			setup: func(_ *FakeDbClient, mailer *FakeMailer) {
				mailer.Err = errors.New("smtp down")
			},
			wantErr: core.ErrVerificationEmail,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			svc, db, mailer := newService()
			if test.setup != nil {
				test.setup(db, mailer)
			}

			err := svc.Signup(context.Background(), test.userName, test.email, test.password)

			if test.wantErr != nil {
				require.ErrorIs(t, err, test.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSignup_PersistsUnverifiedUserWithTokenAndHash(t *testing.T) {
	svc, db, mailer := newService()

	require.NoError(t, svc.Signup(context.Background(), "A", "a@x.com", "pw"))

	user, err := db.GetUserByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.False(t, user.IsVerified)
	assert.NotEmpty(t, user.VerificationToken)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw")))
	assert.Equal(t, []string{"a@x.com"}, mailer.Sent)
}

// The account must survive a mail failure; only the send is reported failed.
func TestSignup_MailFailureKeepsAccount(t *testing.T) {
	svc, db, mailer := newService()
	mailer.Err = errors.New("smtp down")

	err := svc.Signup(context.Background(), "A", "a@x.com", "pw")

	require.ErrorIs(t, err, core.ErrVerificationEmail)
	user, _ := db.GetUserByEmail(context.Background(), "a@x.com")
	require.NotNil(t, user)
	assert.False(t, user.IsVerified)
}

func TestSignup_DuplicatePerformsNoWrite(t *testing.T) {
	svc, db, _ := newService()
	require.NoError(t, svc.Signup(context.Background(), "A", "a@x.com", "pw"))
	before := db.Count()

	err := svc.Signup(context.Background(), "A", "a@x.com", "pw")

	require.ErrorIs(t, err, core.ErrUserExists)
	assert.Equal(t, before, db.Count())
}

func TestLogin(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)

	tests := []struct {
		name    string
		email   string
		pass    string
		setup   func(*FakeDbClient)
		wantErr error
	}{
		{
			name:  "valid verified credentials",
			email: "a@x.com",
			pass:  "pw",
			setup: func(db *FakeDbClient) {
				_ = db.CreateUser(context.Background(), &models.User{
					ID: "u1", Email: "a@x.com", PasswordHash: string(hash), IsVerified: true,
				})
			},
		},
		{
			name:    "unknown email",
			email:   "nobody@x.com",
			pass:    "pw",
			wantErr: core.ErrUserNotFound,
		},
		{
			name:  "unverified account",
			email: "a@x.com",
			pass:  "pw",
			setup: func(db *FakeDbClient) {
				_ = db.CreateUser(context.Background(), &models.User{
					ID: "u1", Email: "a@x.com", PasswordHash: string(hash), IsVerified: false,
				})
			},
			wantErr: core.ErrUserUnverified,
		},
		{
			name:  "wrong password",
			email: "a@x.com",
			pass:  "nope",
			setup: func(db *FakeDbClient) {
				_ = db.CreateUser(context.Background(), &models.User{
					ID: "u1", Email: "a@x.com", PasswordHash: string(hash), IsVerified: true,
				})
			},
			wantErr: core.ErrInvalidCredentials,
		},
		{
			name:  "federated account has no credential path",
			email: "fed@x.com",
			pass:  "anything",
			setup: func(db *FakeDbClient) {
				_ = db.CreateUser(context.Background(), &models.User{
					ID: "u2", Email: "fed@x.com", IsVerified: true,
				})
			},
			wantErr: core.ErrInvalidCredentials,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			svc, db, _ := newService()
			if test.setup != nil {
				test.setup(db)
			}

			user, err := svc.Login(context.Background(), test.email, test.pass)

			if test.wantErr != nil {
				require.ErrorIs(t, err, test.wantErr)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, test.email, user.Email)
			}
		})
	}
}

func TestFederatedSignIn_FirstSignInCreatesVerifiedUser(t *testing.T) {
	svc, db, _ := newService()

	user, err := svc.FederatedSignIn(context.Background(), "Fed", "fed@x.com")

	require.NoError(t, err)
	assert.True(t, user.IsVerified)
	assert.Empty(t, user.PasswordHash)

	stored, _ := db.GetUserByEmail(context.Background(), "fed@x.com")
	require.NotNil(t, stored)
}

func TestFederatedSignIn_ReusesExistingRecord(t *testing.T) {
	svc, db, _ := newService()
	_ = db.CreateUser(context.Background(), &models.User{ID: "u1", Name: "Fed", Email: "fed@x.com", IsVerified: true})

	user, err := svc.FederatedSignIn(context.Background(), "Other Name", "fed@x.com")

	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, 1, db.Count())
}

func TestVerifyEmail(t *testing.T) {
	svc, db, _ := newService()
	_ = db.CreateUser(context.Background(), &models.User{
		ID: "u1", Email: "a@x.com", VerificationToken: "tok123",
	})

	require.NoError(t, svc.VerifyEmail(context.Background(), "tok123"))

	user, _ := db.GetUserByEmail(context.Background(), "a@x.com")
	assert.True(t, user.IsVerified)
	assert.Empty(t, user.VerificationToken)

	// Token is single-use.
	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), "tok123"), core.ErrInvalidToken)
}

func TestVerifyEmail_UnknownToken(t *testing.T) {
	svc, _, _ := newService()
	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), "nope"), core.ErrInvalidToken)
	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), ""), core.ErrInvalidToken)
}

func TestResendVerification(t *testing.T) {
	svc, db, mailer := newService()
	_ = db.CreateUser(context.Background(), &models.User{
		ID: "u1", Email: "a@x.com", VerificationToken: "tok123",
	})
	_ = db.CreateUser(context.Background(), &models.User{
		ID: "u2", Email: "done@x.com", IsVerified: true,
	})

	svc.ResendVerification(context.Background(), "a@x.com")
	svc.ResendVerification(context.Background(), "done@x.com")
	svc.ResendVerification(context.Background(), "ghost@x.com")

	assert.Equal(t, []string{"a@x.com"}, mailer.Sent)
}
