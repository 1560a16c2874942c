package match

import (
	"regexp"

	"github.com/sandevgo/faqbot/internal/config"
	"github.com/sandevgo/faqbot/internal/core"
)

// Rule is one tier-2 structured trigger: a compiled pattern and a pure
// responder over the submatches. Rules are evaluated in declaration
// order; the first trigger that fires wins.
type Rule struct {
	Topic   core.Topic
	trigger *regexp.Regexp
	respond func(groups []string, cfg *config.ResponsesConfig) string
}

// Match runs the trigger against the query and produces the answer when
// it fires. Patterns are case-insensitive themselves.
func (r Rule) Match(query string, cfg *config.ResponsesConfig) (string, bool) {
	groups := r.trigger.FindStringSubmatch(query)
	if groups == nil {
		return "", false
	}
	return r.respond(groups, cfg), true
}

func buildRules() []Rule {
	return []Rule{
		{
			Topic:   core.TopicAccess,
			trigger: regexp.MustCompile(`(?i)\b(join|access|enter|connect to)\b.*\b(zoom|meeting|call|session)\b`),
			respond: func(_ []string, cfg *config.ResponsesConfig) string {
				return "To join the meeting, open " + cfg.MeetingURL +
					" a few minutes before the start. If it asks for a passcode, check the calendar invite."
			},
		},
		{
			Topic:   core.TopicRecordings,
			trigger: regexp.MustCompile(`(?i)\b(recording|recorded|replay|playback)s?\b`),
			respond: func(_ []string, cfg *config.ResponsesConfig) string {
				return "All session recordings are uploaded within 24 hours: " + cfg.RecordingsURL
			},
		},
		{
			Topic:   core.TopicScheduling,
			trigger: regexp.MustCompile(`(?i)\bwhen\b.*\b(next|upcoming)\b.*\b(session|meeting|call|class)\b`),
			respond: func(_ []string, cfg *config.ResponsesConfig) string {
				return "The upcoming sessions are on the shared calendar: " + cfg.ScheduleURL
			},
		},
		{
			Topic:   core.TopicScheduling,
			trigger: regexp.MustCompile(`(?i)\b(reschedule|postpone|move)\b.*\b(session|meeting|call)\b`),
			respond: func(_ []string, cfg *config.ResponsesConfig) string {
				return "Rescheduling requests go to " + cfg.SupportEmail + ". Include the session date you mean."
			},
		},
		{
			Topic:   core.TopicTechnical,
			trigger: regexp.MustCompile(`(?i)\b(audio|camera|microphone|mic|screen ?shar\w*)\b.*\b(not work|broken|issue|problem|fail)`),
			respond: func(groups []string, cfg *config.ResponsesConfig) string {
				return "Sorry about the " + groups[1] + " trouble. Try rejoining first; if it persists, email " +
					cfg.SupportEmail + " with your device details."
			},
		},
		{
			Topic:   core.TopicBilling,
			trigger: regexp.MustCompile(`(?i)\b(invoice|refund|payment|billing)\b`),
			respond: func(groups []string, cfg *config.ResponsesConfig) string {
				return "For anything around " + groups[1] + ", write to " + cfg.SupportEmail +
					" and the billing folks will pick it up."
			},
		},
	}
}
