package config

import (
	"context"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/faqbot/pkg/log"
)

type FallbackConfig struct {
	APIKey      string `env:"FALLBACK_API_KEY,required,notEmpty"`
	BaseURL     string `env:"FALLBACK_BASE_URL" envDefault:"https://api.openai.com"`
	Model       string `env:"FALLBACK_MODEL" envDefault:"gpt-4o-mini"`
	TokenBudget int    `env:"FALLBACK_TOKEN_BUDGET" envDefault:"1500"`
}

// IsFallbackConfigured reports whether the generative fallback can be
// built at all. Absence degrades the feature to a no-op, it never fails
// the resolution pipeline.
func IsFallbackConfigured() bool {
	return os.Getenv("FALLBACK_API_KEY") != ""
}

func NewFallbackConfig(ctx context.Context) *FallbackConfig {
	c := &FallbackConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Fallback config")
	}
	return c
}
