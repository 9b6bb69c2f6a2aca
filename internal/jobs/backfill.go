package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cognify-labs/cognify/internal/index"
	"github.com/cognify-labs/cognify/internal/library"
)

// KnowledgeRegistry is the registry surface the backfill needs.
type KnowledgeRegistry interface {
	Degraded() []string
	Get(videoID string) (*library.Knowledge, error)
	Put(k *library.Knowledge)
}

// KnowledgeStore persists rebuilt knowledge. Optional.
type KnowledgeStore interface {
	Save(ctx context.Context, k *library.Knowledge) error
}

// BackfillProcessor rebuilds indexes that were degraded by embedding-provider
// failures at ingest time. A rebuild is wholesale: the new index replaces the
// old one only when it recovered at least one vector, so a provider that is
// still down costs nothing but the probe calls.
type BackfillProcessor struct {
	registry KnowledgeRegistry
	indexer  *index.Indexer
	store    KnowledgeStore
}

// NewBackfillProcessor creates a BackfillProcessor. A nil store skips
// persistence.
func NewBackfillProcessor(registry KnowledgeRegistry, indexer *index.Indexer, store KnowledgeStore) *BackfillProcessor {
	return &BackfillProcessor{
		registry: registry,
		indexer:  indexer,
		store:    store,
	}
}

// ProcessJobs implements the JobProcessor interface
func (p *BackfillProcessor) ProcessJobs(ctx context.Context) error {
	degraded := p.registry.Degraded()
	if len(degraded) == 0 {
		return nil
	}

	log.Printf("Backfilling embeddings for %d degraded videos", len(degraded))

	for _, videoID := range degraded {
		if err := p.backfill(ctx, videoID); err != nil {
			log.Printf("Error backfilling video %s: %v", videoID, err)
		}
	}

	return nil
}

func (p *BackfillProcessor) backfill(ctx context.Context, videoID string) error {
	k, err := p.registry.Get(videoID)
	if err != nil {
		// Deleted since the poll; nothing to do.
		return nil
	}

	rebuilt, err := p.indexer.Build(ctx, k.Corpus)
	if err != nil {
		return fmt.Errorf("failed to rebuild index: %w", err)
	}

	before := k.Index.Degraded()
	after := rebuilt.Degraded()
	if after >= before {
		// Provider still unavailable; keep the current index.
		return nil
	}

	next := &library.Knowledge{
		VideoID:    k.VideoID,
		Corpus:     k.Corpus,
		Index:      rebuilt,
		Report:     k.Report,
		IngestedAt: k.IngestedAt,
	}

	if p.store != nil {
		if err := p.store.Save(ctx, next); err != nil {
			return fmt.Errorf("failed to persist rebuilt index: %w", err)
		}
	}

	p.registry.Put(next)
	log.Printf("Backfilled video %s: degraded entries %d -> %d", videoID, before, after)
	return nil
}

// DefaultBackfillInterval is the poll interval for the backfill worker.
const DefaultBackfillInterval = time.Minute
