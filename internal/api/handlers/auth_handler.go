package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/api/idtoken"

	"github.com/rmullur/medist/internal/auth"
	"github.com/rmullur/medist/internal/core"
	"github.com/rmullur/medist/internal/services"
)

// IDTokenValidator verifies a federated identity assertion and returns its
// claims. Production wiring uses Google's idtoken package; tests swap it.
type IDTokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

type AuthHandler struct {
	svc            *services.AuthService
	tokens         *auth.TokenManager
	googleClientID string
	validateToken  IDTokenValidator
	logger         *zap.Logger
}

func NewAuthHandler(svc *services.AuthService, tokens *auth.TokenManager, googleClientID string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		svc:            svc,
		tokens:         tokens,
		googleClientID: googleClientID,
		validateToken:  idtoken.Validate,
		logger:         logger,
	}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	err := h.svc.Signup(r.Context(), req.Name, req.Email, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, map[string]string{"message": "User created successfully"})
	case errors.Is(err, core.ErrMissingField):
		writeError(w, http.StatusBadRequest, "All fields are required")
	case errors.Is(err, core.ErrUserExists):
		writeError(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, core.ErrVerificationEmail):
		writeError(w, http.StatusInternalServerError, "User created, but failed to send verification email")
	default:
		h.logger.Error("signup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to create user")
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, core.ErrUserUnverified) {
			writeError(w, http.StatusUnauthorized, "Email not verified")
			return
		}
		// Unknown email and wrong password answer identically.
		if errors.Is(err, core.ErrUserNotFound) || errors.Is(err, core.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	h.issueSession(w, r, user.ID, user.Email)
	writeJSON(w, http.StatusOK, map[string]string{
		"user_id": user.ID,
		"email":   user.Email,
		"name":    user.Name,
	})
}

type googleSignInRequest struct {
	IDToken string `json:"id_token"`
}

func (h *AuthHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req googleSignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDToken == "" {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	if h.googleClientID == "" {
		h.logger.Error("federated sign-in skipped, missing config key", zap.String("key", "GOOGLE_CLIENT_ID"))
		writeError(w, http.StatusInternalServerError, "federated sign-in is not configured")
		return
	}

	payload, err := h.validateToken(r.Context(), req.IDToken, h.googleClientID)
	if err != nil {
		h.logger.Info("federated token rejected", zap.Error(err))
		writeError(w, http.StatusUnauthorized, "invalid identity token")
		return
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	if email == "" {
		writeError(w, http.StatusUnauthorized, "invalid identity token")
		return
	}

	user, err := h.svc.FederatedSignIn(r.Context(), name, email)
	if err != nil {
		h.logger.Error("federated sign-in failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "sign-in failed")
		return
	}

	h.issueSession(w, r, user.ID, user.Email)
	writeJSON(w, http.StatusOK, map[string]string{
		"user_id": user.ID,
		"email":   user.Email,
		"name":    user.Name,
	})
}

// Session re-derives the exposed session from the cookie claims alone; no
// store lookup happens here.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(auth.SessionCookieName)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	claims, err := h.tokens.Parse(cookie.Value)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"user_id": claims.UserID,
		"email":   claims.Email,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	err := h.svc.VerifyEmail(r.Context(), token)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Email verified successfully"})
	case errors.Is(err, core.ErrInvalidToken):
		writeError(w, http.StatusBadRequest, "Invalid or expired verification link")
	default:
		h.logger.Error("email verification failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "verification failed")
	}
}

type resendRequest struct {
	Email string `json:"email"`
}

// ResendVerification always answers 200 to avoid account enumeration.
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req resendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	h.svc.ResendVerification(r.Context(), req.Email)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "If the account exists and is unverified, a new email has been sent",
	})
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, r *http.Request, userID, email string) {
	token, err := h.tokens.Issue(userID, email)
	if err != nil {
		h.logger.Error("token issuance failed", zap.Error(err))
		return
	}
	h.tokens.SetSessionCookie(w, r, token)
}
