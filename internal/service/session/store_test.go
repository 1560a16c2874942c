package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/faqbot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetOrCreate(t *testing.T) {
	s := NewStore()

	sess := s.GetOrCreate("u1", "c1")
	require.NotNil(t, sess)
	assert.Equal(t, StateInitial, sess.State)
	assert.Empty(t, sess.History)

	// Pairs are isolated from each other.
	s.Update("u1", "c1", Patch{State: StateAnswering})
	assert.Equal(t, StateInitial, s.GetOrCreate("u2", "c1").State)
	assert.Equal(t, StateAnswering, s.GetOrCreate("u1", "c1").State)
}

func TestStore_GetOrCreate_SnapshotIsolation(t *testing.T) {
	s := NewStore()
	s.Update("u1", "c1", Patch{Query: "q0", Response: "a0"})

	// Mutating a returned session must not leak into the store.
	sess := s.GetOrCreate("u1", "c1")
	sess.State = StateFollowup
	sess.History = append(sess.History, core.QA{Query: "rogue", Response: "rogue"})
	sess.History[0].Query = "clobbered"

	fresh := s.GetOrCreate("u1", "c1")
	assert.Equal(t, StateInitial, fresh.State)
	require.Len(t, fresh.History, 1)
	assert.Equal(t, "q0", fresh.History[0].Query)
}

func TestStore_Update_Concurrent(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				s.Update("u1", "c1", Patch{
					Query:    fmt.Sprintf("q%d-%d", g, i),
					Response: "a",
				})
			}
		}(g)
	}
	wg.Wait()

	// Forty appends through one window: nothing lost below the cap.
	sess := s.GetOrCreate("u1", "c1")
	assert.Len(t, sess.History, HistoryLimit)
}

func TestStore_Update_HistoryCap(t *testing.T) {
	s := NewStore()

	for i := 0; i < 25; i++ {
		s.Update("u1", "c1", Patch{
			Query:     fmt.Sprintf("q%d", i),
			Response:  fmt.Sprintf("a%d", i),
			Timestamp: time.Now(),
		})
	}

	sess := s.GetOrCreate("u1", "c1")
	require.Len(t, sess.History, HistoryLimit)
	// Oldest evicted first: the window holds the most recent ten.
	assert.Equal(t, "q15", sess.History[0].Query)
	assert.Equal(t, "q24", sess.History[len(sess.History)-1].Query)
}

func TestStore_Update_PartialPatch(t *testing.T) {
	s := NewStore()

	sess := s.Update("u1", "c1", Patch{State: StateAnswering, Topic: core.TopicAccess})
	assert.Equal(t, StateAnswering, sess.State)
	assert.Equal(t, core.TopicAccess, sess.LastTopic)
	// Query without response appends nothing.
	sess = s.Update("u1", "c1", Patch{Query: "orphan"})
	assert.Empty(t, sess.History)
	// State untouched by an empty patch field.
	assert.Equal(t, StateAnswering, sess.State)
}

func TestIntents(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) bool
		text string
		want bool
	}{
		{"greeting_lower", IsGreeting, "hello there", true},
		{"greeting_mixed_case", IsGreeting, "HeLLo!", true},
		{"greeting_bare_hi", IsGreeting, "hi", true},
		{"greeting_negative", IsGreeting, "how do I join?", false},
		{"thanks", IsThankYou, "thanks so much!", true},
		{"thanks_casing", IsThankYou, "THANK YOU", true},
		{"thanks_negative", IsThankYou, "where is the recording", false},
		{"help", IsHelpRequest, "what can you do?", true},
		{"help_plain", IsHelpRequest, "help", true},
		{"help_negative", IsHelpRequest, "hello", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.text))
		})
	}
}
