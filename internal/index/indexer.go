// Package index builds the searchable representation of a merged corpus:
// lexical tokens plus semantic vectors per text unit.
package index

import (
	"context"
	"log"
	"sync"

	"github.com/cognify-labs/cognify/internal/domain"
)

// DefaultEmbedConcurrency bounds concurrent embedding-provider calls.
const DefaultEmbedConcurrency = 4

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Index is the searchable representation of one video's corpus. It owns the
// corpus after construction and is read-only thereafter, so it may serve
// concurrent queries without locking. Rebuilds replace the whole Index.
type Index struct {
	Corpus  *domain.Corpus
	Entries []*domain.IndexEntry

	stats *lexicalStats
}

// Len returns the number of index entries.
func (idx *Index) Len() int {
	return len(idx.Entries)
}

// Degraded returns the number of entries indexed without a semantic vector.
func (idx *Index) Degraded() int {
	n := 0
	for _, e := range idx.Entries {
		if e.SemanticUnavailable {
			n++
		}
	}
	return n
}

// LexicalScore computes the BM25 relevance of an entry for pre-tokenized
// query terms.
func (idx *Index) LexicalScore(queryTokens []string, entry *domain.IndexEntry) float64 {
	return idx.stats.score(queryTokens, entry)
}

// Indexer builds an Index from a Corpus. Embedding calls for distinct units
// are independent, so they are fanned out to a bounded worker pool; each
// result is written to its own entry, never appended to a shared list.
type Indexer struct {
	embedder    EmbeddingClient
	concurrency int
}

// NewIndexer creates an Indexer. A nil embedder produces lexical-only
// indexes with every entry flagged semantically unavailable.
func NewIndexer(embedder EmbeddingClient, concurrency int) *Indexer {
	if concurrency <= 0 {
		concurrency = DefaultEmbedConcurrency
	}
	return &Indexer{
		embedder:    embedder,
		concurrency: concurrency,
	}
}

// Build constructs the Index for a corpus. Indexing the same corpus twice
// yields entries with identical IDs and lexical keys; vectors are identical
// given a deterministic embedding provider. A failed embedding call degrades
// the affected entry to lexical-only rather than dropping it or aborting the
// build.
func (ix *Indexer) Build(ctx context.Context, corpus *domain.Corpus) (*Index, error) {
	if err := domain.ValidateCorpus(corpus); err != nil {
		return nil, err
	}

	entries := make([]*domain.IndexEntry, len(corpus.Units))
	for i, unit := range corpus.Units {
		entries[i] = &domain.IndexEntry{
			ID:     unit.ID,
			Unit:   unit,
			Tokens: Tokenize(unit.Text),
		}
	}

	if ix.embedder != nil && len(entries) > 0 {
		ix.embedAll(ctx, entries)
	} else {
		for _, e := range entries {
			e.SemanticUnavailable = true
		}
	}

	return &Index{
		Corpus:  corpus,
		Entries: entries,
		stats:   buildLexicalStats(entries),
	}, nil
}

func (ix *Indexer) embedAll(ctx context.Context, entries []*domain.IndexEntry) {
	jobs := make(chan int)

	var wg sync.WaitGroup
	workers := ix.concurrency
	if workers > len(entries) {
		workers = len(entries)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				entry := entries[i]
				embedding, err := ix.embedder.GenerateEmbedding(ctx, entry.Unit.Text)
				if err != nil {
					log.Printf("index: embedding unavailable for unit %s: %v", entry.ID, err)
					entry.SemanticUnavailable = true
					continue
				}
				entry.Embedding = embedding
			}
		}()
	}

	for i := range entries {
		select {
		case jobs <- i:
		case <-ctx.Done():
			// Mark the rest degraded; the index is still usable lexically.
			for j := i; j < len(entries); j++ {
				entries[j].SemanticUnavailable = true
			}
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)
	wg.Wait()
}

// NewIndexFromEntries reassembles an Index from persisted entries, recomputing
// the lexical statistics. Entries must already be in corpus order.
func NewIndexFromEntries(corpus *domain.Corpus, entries []*domain.IndexEntry) *Index {
	return &Index{
		Corpus:  corpus,
		Entries: entries,
		stats:   buildLexicalStats(entries),
	}
}
