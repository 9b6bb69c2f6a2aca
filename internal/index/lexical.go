package index

import (
	"math"
	"strings"
	"unicode"

	"github.com/cognify-labs/cognify/internal/domain"
)

// BM25 parameters, standard values.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// Tokenize lowercases the text and splits it into alphanumeric tokens. The
// same tokenizer is applied to corpus units at indexing time and to query
// text at retrieval time.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// lexicalStats holds the corpus-level statistics BM25 needs. Built once per
// index and read-only afterwards.
type lexicalStats struct {
	docFreq   map[string]int
	docCount  int
	avgDocLen float64
}

func buildLexicalStats(entries []*domain.IndexEntry) *lexicalStats {
	stats := &lexicalStats{
		docFreq:  make(map[string]int),
		docCount: len(entries),
	}

	totalLen := 0
	for _, e := range entries {
		totalLen += len(e.Tokens)
		seen := make(map[string]struct{}, len(e.Tokens))
		for _, tok := range e.Tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			stats.docFreq[tok]++
		}
	}

	if stats.docCount > 0 {
		stats.avgDocLen = float64(totalLen) / float64(stats.docCount)
	}

	return stats
}

// score computes the BM25 relevance of an entry for the query tokens.
func (s *lexicalStats) score(queryTokens []string, entry *domain.IndexEntry) float64 {
	if s.docCount == 0 || len(entry.Tokens) == 0 || len(queryTokens) == 0 {
		return 0
	}

	termFreq := make(map[string]int, len(entry.Tokens))
	for _, tok := range entry.Tokens {
		termFreq[tok]++
	}

	docLen := float64(len(entry.Tokens))
	score := 0.0
	for _, tok := range queryTokens {
		tf := float64(termFreq[tok])
		if tf == 0 {
			continue
		}
		df := float64(s.docFreq[tok])
		idf := math.Log(1 + (float64(s.docCount)-df+0.5)/(df+0.5))
		score += idf * (tf * (bm25K1 + 1)) / (tf + bm25K1*(1-bm25B+bm25B*docLen/s.avgDocLen))
	}

	return score
}

// CosineSimilarity returns the cosine of the angle between two vectors, or 0
// when either is empty, zero-length, or the dimensions do not match.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
