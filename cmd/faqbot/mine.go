package main

import (
	"database/sql"
	"os"
	"os/signal"

	"github.com/sandevgo/faqbot/internal/config"
	"github.com/sandevgo/faqbot/internal/core"
	"github.com/sandevgo/faqbot/internal/service/knowledge"
	"github.com/sandevgo/faqbot/internal/service/miner"
	"github.com/sandevgo/faqbot/internal/storage/sqlite"
	"github.com/sandevgo/faqbot/pkg/log"
	"github.com/sandevgo/faqbot/pkg/retry"
	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Run a single history-mining pass and exit",
	Long:  `Scans recorded channel transcripts, learns new question/answer pairs, and exits. Exits non-zero when the knowledge store cannot be opened.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		appCfg := config.NewAppConfig(ctx)
		minerCfg := config.NewMinerConfig(ctx)

		// A scheduled learning run with no storage target has no useful
		// work to do, so a failed open is allowed to be fatal here.
		var db *sql.DB
		err := retry.NewDefaultRetrier().Do(ctx, func() error {
			var openErr error
			db, openErr = openDB(ctx, appCfg)
			return openErr
		})
		if err != nil {
			logger.Error().Err(err).Msg("cannot open knowledge store")
			return err
		}
		defer db.Close()

		store := knowledge.NewStore(sqlite.NewKnowledgeRepo(db))
		m := miner.New(sqlite.NewTranscriptRepo(db), store, sqlite.NewExchangeRepo(db), core.BotName, minerCfg)

		learned := m.RunOnePass(ctx)
		logger.Info().Int("learned", learned).Msg("mining pass complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)
}
