package core

import "context"

// FallbackProvider produces a best-effort generative answer seeded with
// recent session turns and a topic hint. Any error is treated by the
// caller as "no fallback available", never as fatal.
type FallbackProvider interface {
	Complete(ctx context.Context, turns []QA, topic Topic, query string) (string, error)
}
