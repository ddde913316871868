package middlewares

import (
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/rmullur/medist/internal/auth"
)

// Paths requiring a valid session; sub-paths are covered too.
var protectedPaths = []string{"/mainpage"}

const loginPath = "/loginpage"

// SessionGuard gates access to protected views. API routes, static asset
// prefixes and anything with a file extension are exempt. Any failure to
// resolve the session token is treated as unauthenticated (fail-closed): the
// browser is redirected to the login view with the original path attached as
// callbackUrl.
type SessionGuard struct {
	tokens *auth.TokenManager
	logger *zap.Logger
}

func NewSessionGuard(tokens *auth.TokenManager, logger *zap.Logger) *SessionGuard {
	return &SessionGuard{tokens: tokens, logger: logger}
}

func (g *SessionGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if strings.HasPrefix(path, "/api/") ||
			strings.HasPrefix(path, "/static/") ||
			strings.Contains(path, ".") {
			next.ServeHTTP(w, r)
			return
		}

		if !isProtected(path) {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(auth.SessionCookieName)
		if err != nil {
			g.redirectToLogin(w, r, path)
			return
		}
		if _, err := g.tokens.Parse(cookie.Value); err != nil {
			g.logger.Info("session token rejected",
				zap.String("path", path), zap.Error(err))
			g.redirectToLogin(w, r, path)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isProtected(path string) bool {
	for _, p := range protectedPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func (g *SessionGuard) redirectToLogin(w http.ResponseWriter, r *http.Request, from string) {
	u := loginPath + "?callbackUrl=" + url.QueryEscape(from)
	http.Redirect(w, r, u, http.StatusFound)
}
