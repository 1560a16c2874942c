package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/faqbot/internal/config"
	"github.com/sandevgo/faqbot/internal/core"
	"github.com/sandevgo/faqbot/internal/providers/llm"
	"github.com/sandevgo/faqbot/internal/service/knowledge"
	"github.com/sandevgo/faqbot/internal/service/match"
	"github.com/sandevgo/faqbot/internal/service/miner"
	"github.com/sandevgo/faqbot/internal/service/resolve"
	"github.com/sandevgo/faqbot/internal/service/session"
	"github.com/sandevgo/faqbot/internal/storage/sqlite"
	"github.com/sandevgo/faqbot/internal/transport/cli"
	"github.com/sandevgo/faqbot/internal/transport/telegram"
	"github.com/sandevgo/faqbot/pkg/log"
	"github.com/sandevgo/faqbot/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	responsesCfg := config.NewResponsesConfig(ctx)
	minerCfg := config.NewMinerConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	knowledgeRepo := sqlite.NewKnowledgeRepo(db)
	transcriptRepo := sqlite.NewTranscriptRepo(db)
	exchangeRepo := sqlite.NewExchangeRepo(db)

	// 3. Knowledge store (hot cache in front of the durable repo)
	store := knowledge.NewStore(knowledgeRepo)

	// 4. Generative fallback, only when configured
	var fallback core.FallbackProvider
	if config.IsFallbackConfigured() {
		fb, err := llm.NewFallback(config.NewFallbackConfig(ctx))
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize generative fallback")
		}
		fallback = fb
	} else {
		logger.Info().Msg("no fallback credential configured, generative tier disabled")
	}

	// 5. Query resolver
	resolver := resolve.New(
		session.NewStore(),
		match.NewMatcher(responsesCfg),
		store,
		fallback,
		exchangeRepo,
	)

	// 6. Scheduled history miner
	m := miner.New(transcriptRepo, store, exchangeRepo, core.BotName, minerCfg)
	services = append(services, miner.NewService(m, minerCfg))

	// 7. Transports
	transports, err := initTransports(ctx, appCfg, resolver, transcriptRepo)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	services = append(services, transports...)

	return services
}

func initTransports(
	ctx context.Context,
	cfg *config.AppConfig,
	resolver *resolve.Resolver,
	transcripts core.TranscriptRepository,
) ([]srv.Service, error) {
	var services []srv.Service

	if cfg.IsTelegramSelected() {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, resolver, transcripts)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	if cfg.IsCLISelected() {
		repl, err := cli.NewReadLine(resolver, transcripts, cfg)
		if err != nil {
			return nil, err
		}
		services = append(services, repl)
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}

func openDB(ctx context.Context, appCfg *config.AppConfig) (*sql.DB, error) {
	return sqlite.NewDB(ctx, appCfg.GetDatabasePath())
}
