// Package llm implements the generative fallback against any
// OpenAI-compatible chat completion endpoint. The resolver treats every
// failure here as "no fallback available", never as fatal.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/faqbot/internal/config"
	"github.com/sandevgo/faqbot/internal/core"
)

const promptEncoding = "cl100k_base"

type Fallback struct {
	baseProvider
	tokenBudget int
	encoder     *tiktoken.Tiktoken
}

func NewFallback(cfg *config.FallbackConfig) (*Fallback, error) {
	enc, err := tiktoken.GetEncoding(promptEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load token encoding: %w", err)
	}

	return &Fallback{
		baseProvider: newBaseProvider(cfg.BaseURL, cfg.APIKey, cfg.Model),
		tokenBudget:  cfg.TokenBudget,
		encoder:      enc,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Complete asks the model for a best-effort answer, seeding it with as
// many recent session turns as fit the token budget plus the topic
// hint.
func (f *Fallback) Complete(ctx context.Context, turns []core.QA, topic core.Topic, query string) (string, error) {
	payload := map[string]any{
		"model":    f.model,
		"messages": f.buildMessages(turns, topic, query),
	}

	resp, err := f.doRequest(ctx, http.MethodPost, "/v1/chat/completions", payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("fallback returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("fallback returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

func (f *Fallback) buildMessages(turns []core.QA, topic core.Topic, query string) []chatMessage {
	system := "You are " + core.BotName + ", a concise helper answering team-chat questions. " +
		"Answer in one short paragraph. If you do not know, say so plainly."
	if topic != core.TopicNone {
		system += " The question is likely about: " + string(topic) + "."
	}

	messages := []chatMessage{{Role: "system", Content: system}}

	// Walk history newest-first until the budget runs out, then restore
	// chronological order.
	budget := f.tokenBudget
	var kept []chatMessage
	for i := len(turns) - 1; i >= 0; i-- {
		cost := f.countTokens(turns[i].Query) + f.countTokens(turns[i].Response)
		if cost > budget {
			break
		}
		budget -= cost
		kept = append([]chatMessage{
			{Role: "user", Content: turns[i].Query},
			{Role: "assistant", Content: turns[i].Response},
		}, kept...)
	}

	messages = append(messages, kept...)
	return append(messages, chatMessage{Role: "user", Content: query})
}

func (f *Fallback) countTokens(text string) int {
	return len(f.encoder.Encode(text, nil, nil))
}
