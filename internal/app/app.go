package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rmullur/medist/internal/auth"
	"github.com/rmullur/medist/internal/config"
	"github.com/rmullur/medist/internal/core"
	"github.com/rmullur/medist/internal/core/classifier"
	db "github.com/rmullur/medist/internal/core/database"
	"github.com/rmullur/medist/internal/core/llm"
	"github.com/rmullur/medist/internal/core/mailer"
	"github.com/rmullur/medist/internal/core/orchestrator"
	"github.com/rmullur/medist/internal/services"
)

const sessionTTL = 24 * time.Hour

type App struct {
	DBClient core.DbClient
	Server   *Server
	llm      *llm.GeminiLLM
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("database initialized and ready")

	// Without the key the server still runs: chat turns answer with the
	// configuration-issue fallback and /api/auth/test reports the state.
	var gemini *llm.GeminiLLM
	var llmProvider core.LLMProvider
	if cfg.AIAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set; generative replies disabled")
	} else {
		gemini, err = llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
		if err != nil {
			_ = dbClient.Close()
			return nil, err
		}
		llmProvider = gemini
	}

	classifierClient := classifier.NewClient(cfg.ClassifierURL)
	smtpMailer := mailer.NewSMTPMailer(cfg)
	tokens := auth.NewTokenManager(cfg.JWTSecret, sessionTTL)

	authSvc := services.NewAuthService(dbClient, smtpMailer, logger)
	orch := orchestrator.New(llmProvider, classifierClient, logger)

	server := NewServer(cfg, authSvc, orch, tokens, logger)

	return &App{DBClient: dbClient, Server: server, llm: gemini}, nil
}

func (a *App) Close() {
	if a.llm != nil {
		_ = a.llm.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
