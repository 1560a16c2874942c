package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sandevgo/faqbot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *KnowledgeRepo {
	t.Helper()

	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewKnowledgeRepo(db)
}

func TestKnowledgeRepo_SearchRanksByRelevance(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)

	_, err := repo.Insert(ctx, core.KnowledgeEntry{
		Question: "how do I join the zoom meeting", Answer: "use the link", Confidence: 0.9, Scope: "general",
	})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, core.KnowledgeEntry{
		Question: "where are meeting notes kept", Answer: "on the wiki", Confidence: 0.9, Scope: "general",
	})
	require.NoError(t, err)

	got, err := repo.Search(ctx, "join zoom meeting?", "general", 0.7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "use the link", got.Answer)
}

func TestKnowledgeRepo_SearchFilters(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)

	id, err := repo.Insert(ctx, core.KnowledgeEntry{
		Question: "where is the recording", Answer: "shared drive", Confidence: 0.75, Scope: "team-1",
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	t.Run("confidence_floor_is_strict", func(t *testing.T) {
		got, err := repo.Search(ctx, "where is the recording", "team-1", 0.75)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("scope_mismatch", func(t *testing.T) {
		got, err := repo.Search(ctx, "where is the recording", "general", 0.7)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("hit", func(t *testing.T) {
		got, err := repo.Search(ctx, "where is the recording", "team-1", 0.7)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(1), got.UseCount)
	})

	t.Run("empty_question", func(t *testing.T) {
		got, err := repo.Search(ctx, "???", "team-1", 0)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestKnowledgeRepo_ReplaceGuardsAgainstDowngrade(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)

	id, err := repo.Insert(ctx, core.KnowledgeEntry{
		Question: "how do I reset my password", Answer: "use the portal", Confidence: 0.8, Scope: "general",
	})
	require.NoError(t, err)

	// The WHERE clause refuses a lower confidence even if a racing
	// caller slips one through.
	require.NoError(t, repo.Replace(ctx, id, "worse", 0.5))
	got, err := repo.Search(ctx, "how do I reset my password", "general", 0)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "use the portal", got.Answer)

	require.NoError(t, repo.Replace(ctx, id, "better", 0.9))
	got, err = repo.Search(ctx, "how do I reset my password", "general", 0)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "better", got.Answer)
	assert.Equal(t, 0.9, got.Confidence)
	assert.Equal(t, int64(2), got.UseCount)
}

func TestKnowledgeRepo_Touch(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)

	id, err := repo.Insert(ctx, core.KnowledgeEntry{
		Question: "when is standup", Answer: "9am", Confidence: 0.9, Scope: "general",
	})
	require.NoError(t, err)

	require.NoError(t, repo.Touch(ctx, id))
	require.NoError(t, repo.Touch(ctx, id))

	got, err := repo.Search(ctx, "when is standup", "general", 0)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(3), got.UseCount)
}

func TestBuildMatchQuery(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"dedup_and_lowercase", "Zoom zoom ZOOM", `"zoom"`},
		{"strips_punctuation", "how? do! i...", `"how" OR "do" OR "i"`},
		{"empty", "??!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildMatchQuery(tt.in))
		})
	}
}
