// Package service holds the business logic between the HTTP/CLI surfaces and
// the ingestion, indexing, and answering engines.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/cognify-labs/cognify/internal/domain"
	"github.com/cognify-labs/cognify/internal/index"
	"github.com/cognify-labs/cognify/internal/ingest"
	"github.com/cognify-labs/cognify/internal/library"
	"github.com/cognify-labs/cognify/internal/pagination"
	"github.com/cognify-labs/cognify/internal/telemetry"
)

// KnowledgeStore defines the persistence interface for ingested knowledge.
type KnowledgeStore interface {
	Save(ctx context.Context, k *library.Knowledge) error
	Delete(ctx context.Context, videoID string) error
	LoadAll(ctx context.Context) ([]*library.Knowledge, error)
}

// IngestInput carries one video's raw extraction output.
type IngestInput struct {
	VideoID  string
	Captions []ingest.CaptionFragment
	Frames   []ingest.FrameFragment
}

// VideoService handles the ingestion lifecycle of per-video knowledge.
type VideoService struct {
	pipeline *ingest.Pipeline
	indexer  *index.Indexer
	registry *library.Registry
	store    KnowledgeStore
}

// NewVideoService creates a VideoService. A nil store disables persistence.
func NewVideoService(pipeline *ingest.Pipeline, indexer *index.Indexer, registry *library.Registry, store KnowledgeStore) *VideoService {
	return &VideoService{
		pipeline: pipeline,
		indexer:  indexer,
		registry: registry,
		store:    store,
	}
}

// Ingest runs the full pipeline for one video and registers the resulting
// knowledge handle, replacing any previous knowledge for that video. When a
// store is configured the new state is persisted before the registry swap, so
// a persistence failure leaves the previous knowledge intact.
func (s *VideoService) Ingest(ctx context.Context, input IngestInput) (*library.Knowledge, error) {
	ctx, span := telemetry.StartSpan(ctx, "VideoService.Ingest", telemetry.SpanAttributes{
		VideoID:   input.VideoID,
		Operation: "ingest",
	})
	defer span.End()

	corpus, report, err := s.pipeline.Run(input.VideoID, input.Captions, input.Frames)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	idx, err := s.indexer.Build(ctx, corpus)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	k := &library.Knowledge{
		VideoID:    input.VideoID,
		Corpus:     corpus,
		Index:      idx,
		Report:     report,
		IngestedAt: time.Now().UTC(),
	}

	if s.store != nil {
		if err := s.store.Save(ctx, k); err != nil {
			span.SetError(err)
			return nil, fmt.Errorf("failed to persist knowledge for video %s: %w", input.VideoID, err)
		}
	}

	s.registry.Put(k)
	log.Printf("service: ingested video %s: %d caption units, %d screen units, %d deduplicated, %d dropped, %d degraded",
		input.VideoID, report.CaptionUnits, report.ScreenUnits, report.Deduplicated, report.Dropped, idx.Degraded())

	return k, nil
}

// Get returns the knowledge handle for a video.
func (s *VideoService) Get(ctx context.Context, videoID string) (*library.Knowledge, error) {
	return s.registry.Get(videoID)
}

// Delete drops a video's knowledge from the registry and the store.
func (s *VideoService) Delete(ctx context.Context, videoID string) error {
	ctx, span := telemetry.StartSpan(ctx, "VideoService.Delete", telemetry.SpanAttributes{
		VideoID:   videoID,
		Operation: "delete",
	})
	defer span.End()

	if err := s.registry.Delete(videoID); err != nil {
		return err
	}

	if s.store != nil {
		if err := s.store.Delete(ctx, videoID); err != nil && !errors.Is(err, domain.ErrVideoNotFound) {
			span.SetError(err)
			return fmt.Errorf("failed to delete stored knowledge for video %s: %w", videoID, err)
		}
	}

	return nil
}

// List returns one page of video summaries, newest first.
func (s *VideoService) List(ctx context.Context, cursor string, limit int) (*pagination.PageResult[library.Summary], error) {
	if limit <= 0 {
		limit = 20
	}

	decoded, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	all := s.registry.List()
	sort.Slice(all, func(i, j int) bool {
		if !all[i].IngestedAt.Equal(all[j].IngestedAt) {
			return all[i].IngestedAt.After(all[j].IngestedAt)
		}
		return all[i].VideoID > all[j].VideoID
	})

	if decoded != nil {
		rest := all[:0:0]
		for _, sum := range all {
			if sum.IngestedAt.Before(decoded.Timestamp) ||
				(sum.IngestedAt.Equal(decoded.Timestamp) && sum.VideoID < decoded.LastID) {
				rest = append(rest, sum)
			}
		}
		all = rest
	}

	hasMore := len(all) > limit
	items := all
	if hasMore {
		items = all[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.VideoID, last.IngestedAt)
	}

	return &pagination.PageResult[library.Summary]{
		Items:   items,
		Cursor:  nextCursor,
		HasMore: hasMore,
	}, nil
}

// Recover loads all persisted knowledge into the registry at startup.
func (s *VideoService) Recover(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	all, err := s.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to recover knowledge: %w", err)
	}

	for _, k := range all {
		s.registry.Put(k)
	}
	if len(all) > 0 {
		log.Printf("service: recovered %d videos from storage", len(all))
	}
	return nil
}
