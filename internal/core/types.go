package core

import "time"

const (
	BotName    = "FaqBot"
	BotVersion = "0.1.0"

	// ScopeGeneral is the pool used when no originating context is known.
	ScopeGeneral = "general"
)

// Topic is a coarse subject-matter label used to bias matching and
// fallback prompting.
type Topic string

const (
	TopicNone       Topic = ""
	TopicScheduling Topic = "scheduling"
	TopicAccess     Topic = "access"
	TopicRecordings Topic = "recordings"
	TopicBilling    Topic = "billing"
	TopicTechnical  Topic = "technical"
)

// ChatMessage is one raw message as delivered by the chat transport.
// The core treats the transport as an opaque stream. ID is the local
// transcript row; PlatformID is the message's own id on the chat
// platform, the counter ThreadID refers to.
type ChatMessage struct {
	ID          int64     `json:"id"`
	PlatformID  string    `json:"platform_id,omitempty"`
	ChatID      string    `json:"chat_id"`
	AuthorID    string    `json:"author_id"`
	Text        string    `json:"text"`
	ThreadID    string    `json:"thread_id,omitempty"`
	BotAuthored bool      `json:"bot_authored"`
	CreatedAt   time.Time `json:"created_at"`
}

// InboundMessage is a single user query entering the resolver.
type InboundMessage struct {
	ChatID   string
	AuthorID string
	Text     string
	ThreadID string
}

// Reply is what the resolver hands back to the transport. Delivery
// mechanics are the transport's responsibility.
type Reply struct {
	Text     string
	ThreadID string
	Source   ReplySource
}

// ReplySource names the tier that produced a reply.
type ReplySource string

const (
	SourceIntent    ReplySource = "intent"
	SourcePattern   ReplySource = "pattern"
	SourceKnowledge ReplySource = "knowledge"
	SourceFallback  ReplySource = "fallback"
	SourceDefault   ReplySource = "default"
)

// QA is one resolved (query, response) turn kept in session history and
// fed to the generative fallback as context.
type QA struct {
	Query    string
	Response string
	At       time.Time
}

// KnowledgeEntry is a scored question/answer pair in the knowledge store.
type KnowledgeEntry struct {
	ID          int64     `json:"id"`
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	Confidence  float64   `json:"confidence"`
	UseCount    int64     `json:"use_count"`
	Scope       string    `json:"scope"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// Exchange is a resolver-logged (question, response) pair that already
// matched successfully, replayed by the miner at high confidence.
type Exchange struct {
	ID        int64     `json:"id"`
	ChatID    string    `json:"chat_id"`
	Question  string    `json:"question"`
	Response  string    `json:"response"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}
