package match

import "github.com/sandevgo/faqbot/internal/config"

// keywordEntry is one tier-1 phrase-to-answer pair. A slice keeps
// insertion order, which is the documented first-match tie-break; a map
// would iterate randomly.
type keywordEntry struct {
	phrase string
	answer string
}

// buildKeywordTable returns the literal phrase table. High-confidence
// short phrases sit here so they bypass the structural rules entirely.
func buildKeywordTable(cfg *config.ResponsesConfig) []keywordEntry {
	return []keywordEntry{
		{"zoom link", "You can join the meeting here: " + cfg.MeetingURL},
		{"meeting link", "You can join the meeting here: " + cfg.MeetingURL},
		{"where is the recording", "Recordings are published here: " + cfg.RecordingsURL},
		{"next session", "The full schedule is here: " + cfg.ScheduleURL},
		{"office hours", "Office hours are listed in the team calendar: " + cfg.ScheduleURL},
		{"contact support", "You can reach the team at " + cfg.SupportEmail + "."},
		{"who do i ask", "Best place to start is " + cfg.SupportEmail + ", they will route you."},
	}
}
