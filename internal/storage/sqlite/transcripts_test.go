package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandevgo/faqbot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptRepo_HistoryRoundtrip(t *testing.T) {
	ctx := context.Background()

	db, err := NewDB(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewTranscriptRepo(db)

	for i := range 5 {
		require.NoError(t, repo.Add(ctx, core.ChatMessage{
			ChatID:   "team-1",
			AuthorID: "alice",
			Text:     fmt.Sprintf("message %d", i),
		}))
	}
	require.NoError(t, repo.Add(ctx, core.ChatMessage{
		PlatformID:  "901",
		ChatID:      "team-2",
		AuthorID:    core.BotName,
		Text:        "bot reply",
		BotAuthored: true,
	}))

	t.Run("list_channels", func(t *testing.T) {
		channels, err := repo.ListChannels(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"team-1", "team-2"}, channels)
	})

	t.Run("chronological_order", func(t *testing.T) {
		msgs, err := repo.RecentHistory(ctx, "team-1", 100)
		require.NoError(t, err)
		require.Len(t, msgs, 5)
		assert.Equal(t, "message 0", msgs[0].Text)
		assert.Equal(t, "message 4", msgs[4].Text)
	})

	t.Run("limit_keeps_newest", func(t *testing.T) {
		msgs, err := repo.RecentHistory(ctx, "team-1", 2)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "message 3", msgs[0].Text)
		assert.Equal(t, "message 4", msgs[1].Text)
	})

	t.Run("bot_flag_survives", func(t *testing.T) {
		msgs, err := repo.RecentHistory(ctx, "team-2", 10)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.True(t, msgs[0].BotAuthored)
		assert.Equal(t, core.BotName, msgs[0].AuthorID)
	})

	t.Run("platform_id_survives", func(t *testing.T) {
		msgs, err := repo.RecentHistory(ctx, "team-2", 10)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "901", msgs[0].PlatformID)

		// Messages without a platform id read back empty, not NULL.
		msgs, err = repo.RecentHistory(ctx, "team-1", 1)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Empty(t, msgs[0].PlatformID)
	})
}

func TestExchangeRepo_MatchedSince(t *testing.T) {
	ctx := context.Background()

	db, err := NewDB(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewExchangeRepo(db)

	require.NoError(t, repo.LogMatched(ctx, core.Exchange{
		ChatID: "team-1", Question: "where is the recording?", Response: "shared drive", Source: "knowledge",
	}))
	require.NoError(t, repo.LogMatched(ctx, core.Exchange{
		ChatID: "team-1", Question: "when is standup?", Response: "9am", Source: "pattern",
	}))

	got, err := repo.MatchedSince(ctx, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "where is the recording?", got[0].Question)
	assert.Equal(t, "pattern", got[1].Source)

	none, err := repo.MatchedSince(ctx, time.Now().Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
