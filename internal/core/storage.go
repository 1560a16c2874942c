package core

import (
	"context"
	"time"
)

// KnowledgeRepository is the durable, text-indexed half of the knowledge
// store. Search returns the single most relevant entry above the
// confidence floor, or nil when nothing matches.
type KnowledgeRepository interface {
	Search(ctx context.Context, question, scope string, minConfidence float64) (*KnowledgeEntry, error)
	Insert(ctx context.Context, entry KnowledgeEntry) (int64, error)
	Replace(ctx context.Context, id int64, answer string, confidence float64) error
	Touch(ctx context.Context, id int64) error
}

// TranscriptRepository records every message flowing through the
// transport and hands bounded history back to the miner. It doubles as
// the channel enumeration boundary: ListChannels is "channels the bot
// has seen", RecentHistory is capped at the given limit.
type TranscriptRepository interface {
	Add(ctx context.Context, msg ChatMessage) error
	ListChannels(ctx context.Context) ([]string, error)
	RecentHistory(ctx context.Context, chatID string, limit int) ([]ChatMessage, error)
}

// ExchangeLog keeps resolver-matched exchanges for later replay.
type ExchangeLog interface {
	LogMatched(ctx context.Context, ex Exchange) error
	MatchedSince(ctx context.Context, since time.Time, limit int) ([]Exchange, error)
}
