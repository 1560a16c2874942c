package session

import "strings"

var (
	greetingPhrases = []string{"hello", "hey", "good morning", "good afternoon", "good evening", "hi there", "hi!", "hi "}
	thankYouPhrases = []string{"thank", "thx", "thanks", "appreciate it", "much obliged"}
	helpPhrases     = []string{"help", "what can you do", "how do you work", "what do you know"}
)

func IsGreeting(text string) bool {
	return containsAny(text, greetingPhrases) || strings.EqualFold(strings.TrimSpace(text), "hi")
}

func IsThankYou(text string) bool {
	return containsAny(text, thankYouPhrases)
}

func IsHelpRequest(text string) bool {
	return containsAny(text, helpPhrases)
}

func containsAny(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
