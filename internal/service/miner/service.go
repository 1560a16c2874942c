package miner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sandevgo/faqbot/internal/config"
	"github.com/sandevgo/faqbot/pkg/log"
)

// Service runs the miner on a schedule: one delayed run shortly after
// startup, then a recurring pass. The mining logic itself stays free of
// timer concerns; this wrapper only invokes RunOnePass.
type Service struct {
	miner *Miner
	cfg   *config.MinerConfig

	cron     *cron.Cron
	firstRun *time.Timer
	running  sync.Mutex
}

func NewService(m *Miner, cfg *config.MinerConfig) *Service {
	return &Service{
		miner: m,
		cfg:   cfg,
	}
}

func (s *Service) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Dur("interval", s.cfg.Interval).Msg("starting history miner")

	run := func() {
		// Passes are idempotent but assumed non-overlapping.
		if !s.running.TryLock() {
			logger.Warn().Msg("mining pass still in progress, skipping")
			return
		}
		defer s.running.Unlock()
		s.miner.RunOnePass(ctx)
	}

	s.firstRun = time.AfterFunc(s.cfg.FirstRunDelay, run)

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.cfg.Interval), run); err != nil {
		return fmt.Errorf("failed to schedule mining pass: %w", err)
	}
	s.cron.Start()

	return nil
}

func (s *Service) Shutdown(ctx context.Context) error {
	if s.firstRun != nil {
		s.firstRun.Stop()
	}
	if s.cron != nil {
		// Wait for an in-flight pass, but never past the shutdown
		// deadline.
		select {
		case <-s.cron.Stop().Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
