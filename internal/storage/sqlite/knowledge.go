package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/sandevgo/faqbot/internal/core"
)

type KnowledgeRepo struct {
	db *sql.DB
}

func NewKnowledgeRepo(db *sql.DB) *KnowledgeRepo {
	return &KnowledgeRepo{db: db}
}

// Search returns the most relevant entry for the question within the
// given scope, ranked by bm25, restricted to confidence strictly above
// the floor. A nil entry means no match, not an error.
func (r *KnowledgeRepo) Search(ctx context.Context, question, scope string, minConfidence float64) (*core.KnowledgeEntry, error) {
	match := buildMatchQuery(question)
	if match == "" {
		return nil, nil
	}

	query := `
		SELECT k.id, k.question, k.answer, k.confidence, k.use_count, k.scope, k.created_at, k.last_updated
		FROM knowledge_fts f
		JOIN knowledge k ON k.id = f.rowid
		WHERE knowledge_fts MATCH ? AND k.confidence > ? AND k.scope = ?
		ORDER BY bm25(knowledge_fts)
		LIMIT 1`

	var e core.KnowledgeEntry
	err := r.db.QueryRowContext(ctx, query, match, minConfidence, scope).Scan(
		&e.ID, &e.Question, &e.Answer, &e.Confidence, &e.UseCount, &e.Scope, &e.CreatedAt, &e.LastUpdated,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("knowledge search failed: %w", err)
	}
	return &e, nil
}

func (r *KnowledgeRepo) Insert(ctx context.Context, entry core.KnowledgeEntry) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO knowledge (question, answer, confidence, use_count, scope) VALUES (?, ?, ?, 1, ?)`,
		entry.Question, entry.Answer, entry.Confidence, entry.Scope,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert knowledge entry: %w", err)
	}
	return res.LastInsertId()
}

// Replace supersedes an entry's answer and confidence. Callers enforce
// the confidence-monotonic contract; the row itself never moves down.
func (r *KnowledgeRepo) Replace(ctx context.Context, id int64, answer string, confidence float64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE knowledge
		 SET answer = ?, confidence = ?, use_count = use_count + 1, last_updated = CURRENT_TIMESTAMP
		 WHERE id = ? AND confidence < ?`,
		answer, confidence, id, confidence,
	)
	if err != nil {
		return fmt.Errorf("failed to replace knowledge entry: %w", err)
	}
	return nil
}

// Touch records a re-observation: use count up, timestamp refreshed.
func (r *KnowledgeRepo) Touch(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE knowledge SET use_count = use_count + 1, last_updated = CURRENT_TIMESTAMP WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to touch knowledge entry: %w", err)
	}
	return nil
}

// buildMatchQuery turns free text into an FTS5 MATCH expression:
// distinct alphanumeric tokens, each quoted, joined with OR so partial
// overlap still ranks.
func buildMatchQuery(text string) string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, `"`+f+`"`)
	}

	return strings.Join(tokens, " OR ")
}
