// Package retrieval ranks corpus spans against a query and packs the best
// ones into a bounded context for answer generation.
package retrieval

import (
	"context"
	"log"
	"sort"

	"github.com/cognify-labs/cognify/internal/domain"
	"github.com/cognify-labs/cognify/internal/index"
)

// Defaults for score fusion. Questions are usually paraphrases rather than
// keyword matches, so the semantic score is favored.
const (
	DefaultAlpha = 0.7
	DefaultTopK  = 8
)

// Config controls retrieval ranking.
type Config struct {
	// Alpha is the semantic weight in the fused score:
	// fused = alpha*semantic + (1-alpha)*lexical.
	Alpha float64
	// TopK is the default result count when the query does not override it.
	TopK int
}

// DefaultConfig provides sane retrieval defaults.
func DefaultConfig() Config {
	return Config{
		Alpha: DefaultAlpha,
		TopK:  DefaultTopK,
	}
}

// ScoredEntry is one retrieval candidate with its fused relevance score.
type ScoredEntry struct {
	Entry    *domain.IndexEntry
	Score    float64
	Semantic float64
	Lexical  float64
}

// Retriever ranks index entries for a query. It holds no per-query state and
// is safe for concurrent use across in-flight queries.
type Retriever struct {
	embedder index.EmbeddingClient
	cfg      Config
}

// NewRetriever creates a Retriever. A nil embedder degrades every query to
// lexical-only ranking.
func NewRetriever(embedder index.EmbeddingClient, cfg Config) *Retriever {
	if cfg.Alpha <= 0 || cfg.Alpha > 1 {
		cfg.Alpha = DefaultAlpha
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	return &Retriever{embedder: embedder, cfg: cfg}
}

// Search returns at most top-k entries ranked by fused relevance, strictly
// descending, ties broken by earlier start time. An empty corpus or an empty
// candidate set after time filtering yields an empty result, not an error.
func (r *Retriever) Search(ctx context.Context, idx *index.Index, query domain.Query) ([]ScoredEntry, error) {
	if err := domain.ValidateQuery(&query); err != nil {
		return nil, err
	}

	// Time filtering excludes out-of-range entries before ranking so the
	// min-max normalization sees only real candidates.
	candidates := make([]*domain.IndexEntry, 0, idx.Len())
	for _, entry := range idx.Entries {
		if query.TimeRange != nil && !query.TimeRange.Overlaps(entry.Unit) {
			continue
		}
		candidates = append(candidates, entry)
	}
	if len(candidates) == 0 {
		return []ScoredEntry{}, nil
	}

	queryTokens := index.Tokenize(query.Text)

	var queryVec []float32
	if r.embedder != nil {
		vec, err := r.embedder.GenerateEmbedding(ctx, query.Text)
		if err != nil {
			log.Printf("retrieval: query embedding unavailable, falling back to lexical ranking: %v", err)
		} else {
			queryVec = vec
		}
	}

	semantic := make([]float64, len(candidates))
	lexical := make([]float64, len(candidates))
	for i, entry := range candidates {
		lexical[i] = idx.LexicalScore(queryTokens, entry)
		if queryVec != nil && !entry.SemanticUnavailable {
			semantic[i] = index.CosineSimilarity(queryVec, entry.Embedding)
		}
	}

	// Min-max normalize each scorer over the candidate set; this guards
	// against scale mismatch between BM25 and cosine values.
	normalizeScores(semantic)
	normalizeScores(lexical)

	results := make([]ScoredEntry, len(candidates))
	for i, entry := range candidates {
		results[i] = ScoredEntry{
			Entry:    entry,
			Semantic: semantic[i],
			Lexical:  lexical[i],
			Score:    r.cfg.Alpha*semantic[i] + (1-r.cfg.Alpha)*lexical[i],
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Entry.Unit.Start < results[j].Entry.Unit.Start
	})

	topK := query.TopK
	if topK == 0 {
		topK = r.cfg.TopK
	}
	if len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}

// normalizeScores rescales values into [0,1] in place via min-max. A constant
// list collapses to zeros rather than ones so a scorer with no signal cannot
// dominate the fusion.
func normalizeScores(values []float64) {
	if len(values) == 0 {
		return
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	if max <= min {
		for i := range values {
			values[i] = 0
		}
		return
	}
	for i := range values {
		values[i] = (values[i] - min) / (max - min)
	}
}
