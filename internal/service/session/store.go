// Package session keeps short-lived per-(user, chat) conversational
// state. Sessions are never destroyed explicitly; they fall out of the
// cache after an hour of inactivity.
package session

import (
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sandevgo/faqbot/internal/core"
)

const (
	DefaultTTL      = time.Hour
	cleanupInterval = 10 * time.Minute

	// HistoryLimit caps the per-session exchange ring; oldest drops first.
	HistoryLimit = 10
)

// State is the per-conversation position in the exchange state machine.
type State string

const (
	StateInitial       State = "initial"
	StateAwaitingTopic State = "awaiting_topic"
	StateAnswering     State = "answering"
	StateFollowup      State = "followup"
)

type Session struct {
	UserID    string
	ChatID    string
	State     State
	History   []core.QA
	LastTopic core.Topic
}

// Patch carries the fields an exchange wants merged into its session.
// Query and Response must both be set for a history entry to be
// appended.
type Patch struct {
	State     State
	Topic     core.Topic
	Query     string
	Response  string
	Timestamp time.Time
}

// Store keeps sessions by value: readers get snapshots and Update is a
// locked read-modify-write, so concurrent messages from the same pair
// never race on the history slice.
type Store struct {
	mu       sync.Mutex
	sessions *cache.Cache
}

func NewStore() *Store {
	return &Store{
		sessions: cache.New(DefaultTTL, cleanupInterval),
	}
}

func key(userID, chatID string) string {
	return userID + "|" + chatID
}

// GetOrCreate returns a snapshot of the session for the pair, creating
// it in state Initial on first contact. Mutating the snapshot never
// changes the stored session; go through Update.
func (s *Store) GetOrCreate(userID, chatID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.load(userID, chatID)
	sess.History = append([]core.QA(nil), sess.History...)
	return &sess
}

// Update merges the patch atomically and re-writes the entry so the
// inactivity TTL slides. Returns a snapshot of the merged session.
func (s *Store) Update(userID, chatID string, p Patch) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.load(userID, chatID)

	if p.State != "" {
		sess.State = p.State
	}
	if p.Topic != core.TopicNone {
		sess.LastTopic = p.Topic
	}
	if p.Query != "" && p.Response != "" {
		at := p.Timestamp
		if at.IsZero() {
			at = time.Now()
		}
		history := make([]core.QA, len(sess.History), len(sess.History)+1)
		copy(history, sess.History)
		history = append(history, core.QA{Query: p.Query, Response: p.Response, At: at})
		if len(history) > HistoryLimit {
			history = history[len(history)-HistoryLimit:]
		}
		sess.History = history
	}

	s.sessions.Set(key(userID, chatID), sess, cache.DefaultExpiration)
	return &sess
}

// load must run under the store lock.
func (s *Store) load(userID, chatID string) Session {
	if v, ok := s.sessions.Get(key(userID, chatID)); ok {
		return v.(Session)
	}

	sess := Session{
		UserID: userID,
		ChatID: chatID,
		State:  StateInitial,
	}
	s.sessions.Set(key(userID, chatID), sess, cache.DefaultExpiration)
	return sess
}
