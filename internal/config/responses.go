package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/faqbot/pkg/log"
)

// ResponsesConfig carries the data interpolated into pattern-rule
// answers: where meetings live, where recordings are published, who to
// email when nothing else helps.
type ResponsesConfig struct {
	MeetingURL    string `env:"MEETING_URL" envDefault:"https://zoom.us/j/000000000"`
	RecordingsURL string `env:"RECORDINGS_URL" envDefault:"https://drive.example.com/recordings"`
	ScheduleURL   string `env:"SCHEDULE_URL" envDefault:"https://calendar.example.com/team"`
	SupportEmail  string `env:"SUPPORT_EMAIL" envDefault:"support@example.com"`
}

func NewResponsesConfig(ctx context.Context) *ResponsesConfig {
	c := &ResponsesConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Responses config")
	}
	return c
}
