// Package cli is a local REPL transport, handy for poking at the
// resolver without a chat platform attached.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/sandevgo/faqbot/internal/config"
	"github.com/sandevgo/faqbot/internal/core"
	"github.com/sandevgo/faqbot/internal/service/resolve"
	"github.com/sandevgo/faqbot/pkg/log"
)

const (
	localChatID = "cli-local"
	localUserID = "cli-user"
)

type ReadLine struct {
	cfg         *config.AppConfig
	resolver    *resolve.Resolver
	transcripts core.TranscriptRepository
	rl          *readline.Instance
}

func NewReadLine(resolver *resolve.Resolver, transcripts core.TranscriptRepository, cfg *config.AppConfig) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:         cfg,
		resolver:    resolver,
		transcripts: transcripts,
		rl:          rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("ReadLine chat started. Type 'exit' to quit.")

	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		in := core.InboundMessage{ChatID: localChatID, AuthorID: localUserID, Text: line}
		r.recordTranscript(ctx, localUserID, line, false)

		reply := r.resolver.Resolve(ctx, in)
		fmt.Fprintf(r.rl.Stdout(), "%s  [%s]\n", reply.Text, reply.Source)

		r.recordTranscript(ctx, core.BotName, reply.Text, true)
	}
}

func (r *ReadLine) recordTranscript(ctx context.Context, author, text string, botAuthored bool) {
	err := r.transcripts.Add(ctx, core.ChatMessage{
		ChatID:      localChatID,
		AuthorID:    author,
		Text:        text,
		BotAuthored: botAuthored,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to record transcript message")
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
