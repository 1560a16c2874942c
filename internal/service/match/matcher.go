// Package match holds the deterministic tiers of query resolution: the
// topic classifier, the literal phrase table and the structured trigger
// rules. Everything here is side-effect-free.
package match

import (
	"strings"

	"github.com/sandevgo/faqbot/internal/config"
	"github.com/sandevgo/faqbot/internal/core"
)

type Matcher struct {
	cfg      *config.ResponsesConfig
	keywords []keywordEntry
	rules    []Rule
}

func NewMatcher(cfg *config.ResponsesConfig) *Matcher {
	return &Matcher{
		cfg:      cfg,
		keywords: buildKeywordTable(cfg),
		rules:    buildRules(),
	}
}

// Answer is a successful pattern match plus the topic it came from.
type Answer struct {
	Text  string
	Topic core.Topic
}

// Match tries tier 1 (literal phrase table) then tier 2 (structured
// rules). Tier 1 always wins even when a rule would also fire.
func (m *Matcher) Match(query string) (Answer, bool) {
	lower := strings.ToLower(query)

	for _, e := range m.keywords {
		if strings.Contains(lower, e.phrase) {
			topic, _ := ClassifyTopic(query)
			return Answer{Text: e.answer, Topic: topic}, true
		}
	}

	for _, r := range m.rules {
		if text, ok := r.Match(query, m.cfg); ok {
			return Answer{Text: text, Topic: r.Topic}, true
		}
	}

	return Answer{}, false
}
