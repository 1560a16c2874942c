package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sandevgo/faqbot/internal/core"
	"github.com/sandevgo/faqbot/pkg/log"
)

type TranscriptRepo struct {
	db *sql.DB
}

func NewTranscriptRepo(db *sql.DB) *TranscriptRepo {
	return &TranscriptRepo{db: db}
}

func (r *TranscriptRepo) Add(ctx context.Context, msg core.ChatMessage) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transcripts (platform_id, chat_id, author_id, text, thread_id, bot_authored) VALUES (?, ?, ?, ?, ?, ?)`,
		msg.PlatformID, msg.ChatID, msg.AuthorID, msg.Text, msg.ThreadID, msg.BotAuthored,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transcript message: %w", err)
	}
	return nil
}

func (r *TranscriptRepo) ListChannels(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT chat_id FROM transcripts ORDER BY chat_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	var channels []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		channels = append(channels, id)
	}
	return channels, rows.Err()
}

// RecentHistory returns up to limit messages for a channel in
// chronological order. The limit mirrors the cap a chat platform puts
// on history pagination.
func (r *TranscriptRepo) RecentHistory(ctx context.Context, chatID string, limit int) ([]core.ChatMessage, error) {
	query := `
		SELECT id, platform_id, chat_id, author_id, text, thread_id, bot_authored, created_at
		FROM transcripts WHERE chat_id = ?
		ORDER BY id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var msgs []core.ChatMessage
	for rows.Next() {
		var m core.ChatMessage
		if err := rows.Scan(&m.ID, &m.PlatformID, &m.ChatID, &m.AuthorID, &m.Text, &m.ThreadID, &m.BotAuthored, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transcript message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query ran newest-first; flip back to chronological order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	log.FromCtx(ctx).Debug().Str("chat", chatID).Int("count", len(msgs)).Msg("loaded channel history")
	return msgs, nil
}

type ExchangeRepo struct {
	db *sql.DB
}

func NewExchangeRepo(db *sql.DB) *ExchangeRepo {
	return &ExchangeRepo{db: db}
}

func (r *ExchangeRepo) LogMatched(ctx context.Context, ex core.Exchange) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO exchanges (chat_id, question, response, source) VALUES (?, ?, ?, ?)`,
		ex.ChatID, ex.Question, ex.Response, ex.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to log exchange: %w", err)
	}
	return nil
}

func (r *ExchangeRepo) MatchedSince(ctx context.Context, since time.Time, limit int) ([]core.Exchange, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, chat_id, question, response, source, created_at
		 FROM exchanges WHERE created_at >= ? ORDER BY id ASC LIMIT ?`,
		since.UTC(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	var exs []core.Exchange
	for rows.Next() {
		var ex core.Exchange
		if err := rows.Scan(&ex.ID, &ex.ChatID, &ex.Question, &ex.Response, &ex.Source, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		exs = append(exs, ex)
	}
	return exs, rows.Err()
}
