package match

import (
	"strings"

	"github.com/sandevgo/faqbot/internal/core"
)

// topicKeywords pairs one topic with its fixed keyword list. Slice
// order is declaration order and breaks classification ties.
type topicKeywords struct {
	topic    core.Topic
	keywords []string
}

var topics = []topicKeywords{
	{core.TopicScheduling, []string{"schedule", "calendar", "when", "time", "date", "meeting", "session", "reschedule", "postpone"}},
	{core.TopicAccess, []string{"join", "access", "link", "invite", "zoom", "password", "login", "connect", "enter"}},
	{core.TopicRecordings, []string{"recording", "record", "video", "replay", "playback", "watch", "missed"}},
	{core.TopicBilling, []string{"payment", "invoice", "bill", "refund", "price", "cost", "subscription"}},
	{core.TopicTechnical, []string{"error", "bug", "broken", "crash", "audio", "camera", "microphone", "screen"}},
}

// ClassifyTopic scores the query against every topic's keyword list and
// returns the topic with the strictly highest count of distinct hits.
// Ties go to the earliest declared topic; zero hits everywhere means no
// topic was identified.
func ClassifyTopic(text string) (core.Topic, bool) {
	lower := strings.ToLower(text)

	best := core.TopicNone
	bestScore := 0
	for _, tk := range topics {
		score := 0
		for _, kw := range tk.keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = tk.topic
		}
	}

	return best, bestScore > 0
}
