package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/rmullur/medist/internal/api/handlers"
	"github.com/rmullur/medist/internal/api/middlewares"
	"github.com/rmullur/medist/internal/auth"
	"github.com/rmullur/medist/internal/config"
	"github.com/rmullur/medist/internal/core/orchestrator"
	"github.com/rmullur/medist/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, authSvc *services.AuthService, orch *orchestrator.Orchestrator, tokens *auth.TokenManager, logger *zap.Logger) *Server {
	authHandler := handlers.NewAuthHandler(authSvc, tokens, cfg.GoogleClientID, logger)
	chatHandler := handlers.NewChatHandler(orch)
	imageHandler := handlers.NewImageHandler(orch, logger)
	diagHandler := handlers.NewDiagHandler(cfg.AIAPIKey)
	guard := middlewares.NewSessionGuard(tokens, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Pages are served from the web directory behind the session guard; the
	// guard exempts /api, static prefixes and anything with a file extension.
	fileServer := http.FileServer(http.Dir("./web"))
	r.With(guard.Middleware).Handle("/*", fileServer)

	// API routes
	r.Route("/api", func(api chi.Router) {
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)
		api.Post("/logout", authHandler.Logout)
		api.Get("/verify-email", authHandler.VerifyEmail)
		api.Post("/resend-verification", authHandler.ResendVerification)

		api.Post("/auth/google", authHandler.GoogleSignIn)
		api.Get("/auth/session", authHandler.Session)
		api.Get("/auth/test", diagHandler.APIKeyStatus)

		api.Post("/chat", chatHandler.Chat)
		api.Post("/image-analysis", imageHandler.Analyze)
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv, logger: logger}
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
