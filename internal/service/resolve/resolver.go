// Package resolve orchestrates the answer pipeline: session-intent
// shortcuts, pattern matching, learned knowledge, generative fallback,
// default response. The first tier that succeeds wins.
package resolve

import (
	"context"
	"strings"
	"time"

	"github.com/sandevgo/faqbot/internal/core"
	"github.com/sandevgo/faqbot/internal/service/knowledge"
	"github.com/sandevgo/faqbot/internal/service/match"
	"github.com/sandevgo/faqbot/internal/service/session"
	"github.com/sandevgo/faqbot/pkg/log"
)

const (
	greetingResponse = "Hi! I answer questions about sessions, access, recordings and more. What can I help you with?"
	thankYouResponse = "You're welcome! Ping me any time."
	helpResponse     = "Ask me things like \"how do I join the zoom meeting?\" or \"where is the recording?\" and I'll do my best."
	defaultResponse  = "Sorry, I couldn't figure that one out. Try rephrasing, or ask a teammate to point me at the answer."

	// Confidence given to an exchange recorded from live traffic.
	recordedConfidence = 0.9
)

type Resolver struct {
	sessions  *session.Store
	matcher   *match.Matcher
	store     *knowledge.Store
	fallback  core.FallbackProvider
	exchanges core.ExchangeLog
}

func New(
	sessions *session.Store,
	matcher *match.Matcher,
	store *knowledge.Store,
	fallback core.FallbackProvider,
	exchanges core.ExchangeLog,
) *Resolver {
	return &Resolver{
		sessions:  sessions,
		matcher:   matcher,
		store:     store,
		fallback:  fallback,
		exchanges: exchanges,
	}
}

// Resolve answers one inbound message. It never surfaces a technical
// error to the user; the worst case is the default response.
func (r *Resolver) Resolve(ctx context.Context, in core.InboundMessage) core.Reply {
	logger := log.FromCtx(ctx)

	query := strings.TrimSpace(in.Text)
	if query == "" {
		// Nothing to match against; no tier runs.
		return r.reply(in, defaultResponse, core.SourceDefault)
	}

	sess := r.sessions.GetOrCreate(in.AuthorID, in.ChatID)

	if reply, ok := r.resolveIntent(in, sess, query); ok {
		return reply
	}

	topic, _ := match.ClassifyTopic(query)

	if answer, ok := r.matcher.Match(query); ok {
		r.logExchange(ctx, in, query, answer.Text, core.SourcePattern)
		r.commit(in, session.Patch{State: session.StateAnswering, Topic: answer.Topic, Query: query, Response: answer.Text})
		return r.reply(in, answer.Text, core.SourcePattern)
	}

	if answer, found, err := r.store.Find(ctx, query, in.ChatID); err != nil {
		// Store unreachable is not "no knowledge"; degrade to the next tier.
		logger.Warn().Err(err).Msg("knowledge store unavailable, skipping tier")
	} else if found {
		r.logExchange(ctx, in, query, answer.Entry.Answer, core.SourceKnowledge)
		r.commit(in, session.Patch{State: session.StateAnswering, Topic: topic, Query: query, Response: answer.Entry.Answer})
		return r.reply(in, answer.Entry.Answer, core.SourceKnowledge)
	}

	if r.fallback != nil {
		if text, err := r.fallback.Complete(ctx, sess.History, topic, query); err != nil {
			logger.Debug().Err(err).Msg("generative fallback unavailable")
		} else if strings.TrimSpace(text) != "" {
			r.record(ctx, in, query, text)
			r.commit(in, session.Patch{State: session.StateAnswering, Topic: topic, Query: query, Response: text})
			return r.reply(in, text, core.SourceFallback)
		}
	}

	r.commit(in, session.Patch{State: session.StateAwaitingTopic, Topic: topic, Query: query, Response: defaultResponse})
	return r.reply(in, defaultResponse, core.SourceDefault)
}

// resolveIntent handles the greeting/thanks/help short-circuits. None
// of them touches the knowledge store.
func (r *Resolver) resolveIntent(in core.InboundMessage, sess *session.Session, query string) (core.Reply, bool) {
	switch {
	case session.IsThankYou(query):
		r.commit(in, session.Patch{State: session.StateFollowup, Query: query, Response: thankYouResponse})
		return r.reply(in, thankYouResponse, core.SourceIntent), true
	case session.IsGreeting(query):
		r.commit(in, session.Patch{State: session.StateAwaitingTopic, Query: query, Response: greetingResponse})
		return r.reply(in, greetingResponse, core.SourceIntent), true
	case session.IsHelpRequest(query):
		r.commit(in, session.Patch{State: session.StateAwaitingTopic, Query: query, Response: helpResponse})
		return r.reply(in, helpResponse, core.SourceIntent), true
	}
	return core.Reply{}, false
}

// record feeds a fallback-produced exchange back into the knowledge
// store so the corpus grows from live traffic, not only batch mining.
// Generated answers carry no channel-specific context, so they land in
// the general pool and can answer any channel.
func (r *Resolver) record(ctx context.Context, in core.InboundMessage, query, response string) {
	if _, err := r.store.Upsert(ctx, query, response, recordedConfidence, core.ScopeGeneral); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to record resolved exchange")
	}
	r.logExchange(ctx, in, query, response, core.SourceFallback)
}

func (r *Resolver) logExchange(ctx context.Context, in core.InboundMessage, query, response string, source core.ReplySource) {
	if r.exchanges == nil {
		return
	}
	err := r.exchanges.LogMatched(ctx, core.Exchange{
		ChatID:   in.ChatID,
		Question: query,
		Response: response,
		Source:   string(source),
	})
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to log matched exchange")
	}
}

func (r *Resolver) commit(in core.InboundMessage, patch session.Patch) {
	patch.Timestamp = time.Now()
	r.sessions.Update(in.AuthorID, in.ChatID, patch)
}

func (r *Resolver) reply(in core.InboundMessage, text string, source core.ReplySource) core.Reply {
	return core.Reply{Text: text, ThreadID: in.ThreadID, Source: source}
}
