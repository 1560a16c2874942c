package telegram

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sandevgo/faqbot/internal/config"
	"github.com/sandevgo/faqbot/internal/core"
	"github.com/sandevgo/faqbot/internal/service/resolve"
	"github.com/sandevgo/faqbot/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

type Bot struct {
	bot         *tele.Bot
	cfg         *config.TelegramConfig
	resolver    *resolve.Resolver
	transcripts core.TranscriptRepository
	sender      *sender
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	resolver *resolve.Resolver,
	transcripts core.TranscriptRepository,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:         b,
		cfg:         cfg,
		resolver:    resolver,
		transcripts: transcripts,
		sender:      newSender(b),
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)

	in := core.InboundMessage{
		ChatID:   strconv.FormatInt(c.Chat().ID, 10),
		AuthorID: strconv.FormatInt(c.Sender().ID, 10),
		Text:     c.Text(),
	}
	if c.Message().ReplyTo != nil {
		in.ThreadID = strconv.Itoa(c.Message().ReplyTo.ID)
	}

	// PlatformID is the Telegram message id; a later reply threading to
	// this message carries it as ThreadID.
	b.recordTranscript(ctx, core.ChatMessage{
		PlatformID: strconv.Itoa(c.Message().ID),
		ChatID:     in.ChatID,
		AuthorID:   in.AuthorID,
		Text:       in.Text,
		ThreadID:   in.ThreadID,
	})

	_ = c.Notify(tele.Typing)

	reply := b.resolver.Resolve(ctx, in)

	if err := b.sender.sendMarkdown(ctx, c, reply); err != nil {
		logger.Error().Err(err).Msg("failed to deliver reply")
		return err
	}

	b.recordTranscript(ctx, core.ChatMessage{
		ChatID:      in.ChatID,
		AuthorID:    core.BotName,
		Text:        reply.Text,
		ThreadID:    reply.ThreadID,
		BotAuthored: true,
	})

	return nil
}

// recordTranscript feeds the message into the transcript log that the
// miner reads later. A logging failure never blocks the exchange.
func (b *Bot) recordTranscript(ctx context.Context, msg core.ChatMessage) {
	msg.CreatedAt = time.Now()
	if err := b.transcripts.Add(ctx, msg); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to record transcript message")
	}
}
