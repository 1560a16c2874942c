package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/faqbot/pkg/log"
)

type MinerConfig struct {
	Interval      time.Duration `env:"MINER_INTERVAL" envDefault:"24h"`
	FirstRunDelay time.Duration `env:"MINER_FIRST_RUN_DELAY" envDefault:"1m"`
	HistoryLimit  int           `env:"MINER_HISTORY_LIMIT" envDefault:"1000"`
	ChannelPause  time.Duration `env:"MINER_CHANNEL_PAUSE" envDefault:"2s"`
}

func NewMinerConfig(ctx context.Context) *MinerConfig {
	c := &MinerConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Miner config")
	}
	return c
}
