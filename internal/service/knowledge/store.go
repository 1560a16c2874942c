// Package knowledge layers an in-process hot cache over the durable,
// text-indexed knowledge repository and owns the confidence-monotonic
// upsert contract.
package knowledge

import (
	"context"
	"strings"
	"time"
	"unicode"

	cache "github.com/patrickmn/go-cache"
	"github.com/sandevgo/faqbot/internal/core"
	"github.com/sandevgo/faqbot/pkg/log"
)

const (
	hotTTL          = 24 * time.Hour
	cleanupInterval = time.Hour
	cacheKeyPrefix  = 50

	// Confidence floors per lookup pool, and the discount applied when a
	// scoped question is answered from the general pool.
	minScopedConfidence  = 0.7
	minGeneralConfidence = 0.8
	generalDiscount      = 0.9

	// Two questions count as "the same" when the FTS top hit also shares
	// at least this fraction of its word set with the incoming question.
	// Relying on the ranker's top hit alone is corpus-size-dependent.
	dedupOverlap = 0.6
)

// Provenance tags where an answer came from.
type Provenance string

const (
	FromCache Provenance = "cache"
	FromStore Provenance = "store"
)

// Answer is a knowledge hit plus its provenance.
type Answer struct {
	Entry  core.KnowledgeEntry
	Source Provenance
	// Scoped is false when the hit came from the general pool after the
	// scoped search missed.
	Scoped bool
}

type Store struct {
	repo core.KnowledgeRepository
	hot  *cache.Cache
}

// cachedAnswer is what the hot cache holds: the entry plus the pool it
// was originally resolved from, so a cache hit reports the same
// provenance as the search that populated it.
type cachedAnswer struct {
	entry  core.KnowledgeEntry
	scoped bool
}

func NewStore(repo core.KnowledgeRepository) *Store {
	return &Store{
		repo: repo,
		hot:  cache.New(hotTTL, cleanupInterval),
	}
}

// Find resolves a question against the hot cache, then the scoped
// durable pool, then the general pool with a stricter floor and a
// discounted confidence. found=false with a nil error means the corpus
// genuinely has no answer; an error means the store was unreachable.
func (s *Store) Find(ctx context.Context, question, scope string) (Answer, bool, error) {
	if strings.TrimSpace(question) == "" {
		return Answer{}, false, nil
	}
	if scope == "" {
		scope = core.ScopeGeneral
	}

	key := cacheKey(question, scope)
	if v, ok := s.hot.Get(key); ok {
		hit := v.(cachedAnswer)
		// A cache hit is still a match; the durable use count moves too.
		if err := s.repo.Touch(ctx, hit.entry.ID); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Int64("id", hit.entry.ID).Msg("failed to bump knowledge use count")
		}
		hit.entry.UseCount++
		s.hot.Set(key, hit, cache.DefaultExpiration)
		return Answer{Entry: hit.entry, Source: FromCache, Scoped: hit.scoped}, true, nil
	}

	entry, err := s.repo.Search(ctx, question, scope, minScopedConfidence)
	if err != nil {
		return Answer{}, false, err
	}

	scoped := true
	if entry == nil && scope != core.ScopeGeneral {
		entry, err = s.repo.Search(ctx, question, core.ScopeGeneral, minGeneralConfidence)
		if err != nil {
			return Answer{}, false, err
		}
		if entry != nil {
			entry.Confidence *= generalDiscount
			scoped = false
		}
	}
	if entry == nil {
		return Answer{}, false, nil
	}

	if err := s.repo.Touch(ctx, entry.ID); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Int64("id", entry.ID).Msg("failed to bump knowledge use count")
	}
	entry.UseCount++
	s.hot.Set(key, cachedAnswer{entry: *entry, scoped: scoped}, cache.DefaultExpiration)

	return Answer{Entry: *entry, Source: FromStore, Scoped: scoped}, true, nil
}

// Upsert records a question/answer observation. An existing entry for
// the same question is replaced only when the new confidence is
// strictly greater; otherwise the stored record stays authoritative and
// only its use count and timestamp move. Returns true when an entry was
// inserted or superseded.
func (s *Store) Upsert(ctx context.Context, question, answer string, confidence float64, scope string) (bool, error) {
	logger := log.FromCtx(ctx)
	if scope == "" {
		scope = core.ScopeGeneral
	}

	existing, err := s.repo.Search(ctx, question, scope, 0)
	if err != nil {
		return false, err
	}

	if existing != nil && sameQuestion(question, existing.Question) {
		if confidence > existing.Confidence {
			if err := s.repo.Replace(ctx, existing.ID, answer, confidence); err != nil {
				return false, err
			}
			existing.Answer = answer
			existing.Confidence = confidence
			existing.UseCount++
			s.hot.Set(cacheKey(question, scope), cachedAnswer{entry: *existing, scoped: true}, cache.DefaultExpiration)
			logger.Debug().Int64("id", existing.ID).Float64("confidence", confidence).Msg("knowledge entry superseded")
			return true, nil
		}

		if err := s.repo.Touch(ctx, existing.ID); err != nil {
			return false, err
		}
		existing.UseCount++
		s.hot.Set(cacheKey(question, scope), cachedAnswer{entry: *existing, scoped: true}, cache.DefaultExpiration)
		return false, nil
	}

	entry := core.KnowledgeEntry{
		Question:   question,
		Answer:     answer,
		Confidence: confidence,
		UseCount:   1,
		Scope:      scope,
	}
	id, err := s.repo.Insert(ctx, entry)
	if err != nil {
		return false, err
	}
	entry.ID = id
	s.hot.Set(cacheKey(question, scope), cachedAnswer{entry: entry, scoped: true}, cache.DefaultExpiration)
	logger.Debug().Int64("id", id).Str("scope", scope).Msg("knowledge entry learned")
	return true, nil
}

func cacheKey(question, scope string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(question)), " ")
	if len(norm) > cacheKeyPrefix {
		norm = norm[:cacheKeyPrefix]
	}
	return scope + "|" + norm
}

// sameQuestion applies the dedup policy: Jaccard overlap of the two
// lower-cased word sets must reach dedupOverlap.
func sameQuestion(a, b string) bool {
	as := wordSet(a)
	bs := wordSet(b)
	if len(as) == 0 || len(bs) == 0 {
		return false
	}

	inter := 0
	for w := range as {
		if _, ok := bs[w]; ok {
			inter++
		}
	}
	union := len(as) + len(bs) - inter
	return float64(inter)/float64(union) >= dedupOverlap
}

func wordSet(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
