// Package miner turns raw chat history into scored knowledge entries.
// It reconstructs question/answer groups from transcripts, scores their
// confidence, and upserts them; re-mining identical content only moves
// confidence monotonically, never duplicates.
package miner

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sandevgo/faqbot/internal/config"
	"github.com/sandevgo/faqbot/internal/core"
	"github.com/sandevgo/faqbot/internal/service/knowledge"
	"github.com/sandevgo/faqbot/pkg/log"
)

const (
	// Confidence assigned per answer provenance.
	confidenceBotAnswer  = 0.9
	confidenceManyVoices = 0.8
	confidenceSingle     = 0.6
	confidenceReplayed   = 0.95

	// quotePrefixLen is how much of the anchor question a later message
	// must contain to count as a quoted reply.
	quotePrefixLen = 10

	replayLimit = 1000
)

var questionWords = map[string]struct{}{
	"how": {}, "what": {}, "when": {}, "where": {}, "why": {}, "who": {},
	"which": {}, "can": {}, "could": {}, "do": {}, "does": {}, "is": {},
	"are": {}, "should": {}, "will": {},
}

var questionPhrases = []string{
	"how do i", "how can i", "anyone know", "does anyone", "is there a way", "any idea",
}

// QAGroup is the transient reconstruction of one question and its
// candidate answers. It exists only during a single mining pass.
type QAGroup struct {
	Question   core.ChatMessage
	Candidates []core.ChatMessage
	Designated *core.ChatMessage
	Confidence float64
}

type Miner struct {
	history   core.TranscriptRepository
	store     *knowledge.Store
	exchanges core.ExchangeLog
	botID     string
	cfg       *config.MinerConfig
}

func New(history core.TranscriptRepository, store *knowledge.Store, exchanges core.ExchangeLog, botID string, cfg *config.MinerConfig) *Miner {
	return &Miner{
		history:   history,
		store:     store,
		exchanges: exchanges,
		botID:     botID,
		cfg:       cfg,
	}
}

// MineChannel scans one channel's messages in timestamp order and
// groups each question anchor with the candidate answers that follow
// it. Groups without a single candidate are dropped.
func (m *Miner) MineChannel(msgs []core.ChatMessage) []QAGroup {
	sorted := make([]core.ChatMessage, len(msgs))
	copy(sorted, msgs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	var groups []QAGroup
	var open *QAGroup

	flush := func() {
		if open != nil && len(open.Candidates) > 0 {
			groups = append(groups, *open)
		}
		open = nil
	}

	for _, msg := range sorted {
		if !msg.BotAuthored && isQuestion(msg.Text) {
			flush()
			open = &QAGroup{Question: msg}
			continue
		}
		if open == nil {
			continue
		}
		if m.isCandidateAnswer(open.Question, msg) {
			open.Candidates = append(open.Candidates, msg)
			if msg.BotAuthored && msg.AuthorID == m.botID {
				// Our own reply trumps any earlier designation.
				designated := msg
				open.Designated = &designated
				open.Confidence = confidenceBotAnswer
			}
		}
	}
	flush()

	return groups
}

func (m *Miner) isCandidateAnswer(anchor, msg core.ChatMessage) bool {
	if msg.BotAuthored {
		return true
	}
	if quotesQuestion(anchor.Text, msg.Text) {
		return true
	}
	return msg.ThreadID != "" && msg.ThreadID == threadKey(anchor)
}

// ScoreAndStore picks each group's answer, derives its confidence, and
// upserts it scoped to the originating channel. A single group's
// failure is logged and skipped, never aborts the pass.
func (m *Miner) ScoreAndStore(ctx context.Context, groups []QAGroup) int {
	logger := log.FromCtx(ctx)

	stored := 0
	for _, g := range groups {
		answer := g.Candidates[0]
		confidence := confidenceSingle
		if len(g.Candidates) > 2 {
			confidence = confidenceManyVoices
		}
		if g.Designated != nil {
			answer = *g.Designated
			confidence = g.Confidence
		}

		changed, err := m.store.Upsert(ctx, g.Question.Text, answer.Text, confidence, g.Question.ChatID)
		if err != nil {
			logger.Error().Err(err).Str("chat", g.Question.ChatID).Msg("failed to store mined answer")
			continue
		}
		if changed {
			stored++
		}
	}
	return stored
}

// MineBotHistory replays resolver-logged exchanges that already matched
// successfully. These are known-good, so they land at high confidence.
func (m *Miner) MineBotHistory(ctx context.Context) int {
	logger := log.FromCtx(ctx)

	exs, err := m.exchanges.MatchedSince(ctx, time.Time{}, replayLimit)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load matched exchanges")
		return 0
	}

	stored := 0
	for _, ex := range exs {
		// Fallback-produced answers are channel-agnostic; keep them in
		// the general pool on replay, matching how they were recorded.
		scope := ex.ChatID
		if ex.Source == string(core.SourceFallback) {
			scope = core.ScopeGeneral
		}

		changed, err := m.store.Upsert(ctx, ex.Question, ex.Response, confidenceReplayed, scope)
		if err != nil {
			logger.Error().Err(err).Int64("exchange", ex.ID).Msg("failed to replay exchange")
			continue
		}
		if changed {
			stored++
		}
	}
	return stored
}

// RunOnePass mines every known channel once, then replays the exchange
// log. Per-channel failures are logged and skipped; the pass itself
// never fails upward.
func (m *Miner) RunOnePass(ctx context.Context) int {
	logger := log.FromCtx(ctx)
	started := time.Now()

	channels, err := m.history.ListChannels(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to enumerate channels, skipping mining pass")
		return 0
	}

	total := 0
	for i, ch := range channels {
		if i > 0 {
			// Fixed pause between channels keeps us under platform limits.
			select {
			case <-ctx.Done():
				return total
			case <-time.After(m.cfg.ChannelPause):
			}
		}

		msgs, err := m.history.RecentHistory(ctx, ch, m.cfg.HistoryLimit)
		if err != nil {
			logger.Error().Err(err).Str("chat", ch).Msg("failed to load channel history, skipping")
			continue
		}

		groups := m.MineChannel(msgs)
		stored := m.ScoreAndStore(ctx, groups)
		logger.Debug().Str("chat", ch).Int("groups", len(groups)).Int("stored", stored).Msg("channel mined")
		total += stored
	}

	total += m.MineBotHistory(ctx)

	logger.Info().Int("learned", total).Dur("took", time.Since(started)).Msg("mining pass finished")
	return total
}

func isQuestion(text string) bool {
	if strings.Contains(text, "?") {
		return true
	}

	lower := strings.ToLower(text)
	fields := strings.Fields(lower)
	if len(fields) > 0 {
		if _, ok := questionWords[strings.Trim(fields[0], ".,!:")]; ok {
			return true
		}
	}

	for _, p := range questionPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func quotesQuestion(question, text string) bool {
	q := strings.TrimSpace(question)
	if len(q) > quotePrefixLen {
		q = q[:quotePrefixLen]
	}
	return q != "" && strings.Contains(text, q)
}

// threadKey is the id replies carry in ThreadID when they thread to
// this message. Transports populate PlatformID with the platform's own
// message id; the transcript rowid only stands in when there is none.
func threadKey(msg core.ChatMessage) string {
	if msg.ThreadID != "" {
		return msg.ThreadID
	}
	if msg.PlatformID != "" {
		return msg.PlatformID
	}
	return strconv.FormatInt(msg.ID, 10)
}
