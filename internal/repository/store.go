package repository

import (
	"context"
	"fmt"

	"github.com/cognify-labs/cognify/internal/domain"
	"github.com/cognify-labs/cognify/internal/index"
	"github.com/cognify-labs/cognify/internal/ingest"
	"github.com/cognify-labs/cognify/internal/library"
	"github.com/cognify-labs/cognify/internal/pagination"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists whole knowledge handles. Writes are transactional at corpus
// granularity: a re-ingest either fully replaces a video's stored units or
// leaves the previous state intact.
type Store struct {
	pool   *pgxpool.Pool
	runner *TxRunner
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, runner: NewTxRunner(pool)}
}

// Save writes one video's knowledge: summary row plus all index entries.
func (s *Store) Save(ctx context.Context, k *library.Knowledge) error {
	rec := &VideoRecord{
		VideoID:    k.VideoID,
		IngestedAt: k.IngestedAt,
	}
	if k.Report != nil {
		rec.CaptionUnits = k.Report.CaptionUnits
		rec.ScreenUnits = k.Report.ScreenUnits
		rec.Dropped = k.Report.Dropped
		rec.Deduplicated = k.Report.Deduplicated
	}

	return s.runner.WithTx(ctx, func(videos *VideoRepository) error {
		if err := videos.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("failed to upsert video %s: %w", k.VideoID, err)
		}
		if err := videos.ReplaceUnits(ctx, k.VideoID, k.Index.Entries); err != nil {
			return fmt.Errorf("failed to replace units of video %s: %w", k.VideoID, err)
		}
		return nil
	})
}

// Load reassembles one video's knowledge handle from storage.
func (s *Store) Load(ctx context.Context, videoID string) (*library.Knowledge, error) {
	videos := NewVideoRepository(s.pool)

	rec, err := videos.Get(ctx, videoID)
	if err != nil {
		return nil, err
	}

	entries, err := videos.LoadUnits(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to load units of video %s: %w", videoID, err)
	}

	units := make([]domain.TextUnit, len(entries))
	for i, entry := range entries {
		units[i] = entry.Unit
	}
	corpus := &domain.Corpus{
		VideoID:    videoID,
		Units:      units,
		IngestedAt: rec.IngestedAt,
	}

	return &library.Knowledge{
		VideoID: videoID,
		Corpus:  corpus,
		Index:   index.NewIndexFromEntries(corpus, entries),
		Report: &ingest.Report{
			CaptionUnits: rec.CaptionUnits,
			ScreenUnits:  rec.ScreenUnits,
			Dropped:      rec.Dropped,
			Deduplicated: rec.Deduplicated,
		},
		IngestedAt: rec.IngestedAt,
	}, nil
}

// LoadAll loads every stored video, for registry recovery at startup.
func (s *Store) LoadAll(ctx context.Context) ([]*library.Knowledge, error) {
	ids, err := NewVideoRepository(s.pool).ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	knowledge := make([]*library.Knowledge, 0, len(ids))
	for _, id := range ids {
		k, err := s.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		knowledge = append(knowledge, k)
	}
	return knowledge, nil
}

// Delete removes one video's stored knowledge.
func (s *Store) Delete(ctx context.Context, videoID string) error {
	return NewVideoRepository(s.pool).Delete(ctx, videoID)
}

// List returns one page of stored video summaries.
func (s *Store) List(ctx context.Context, cursor string, limit int) (*pagination.PageResult[*VideoRecord], error) {
	decoded, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	return NewVideoRepository(s.pool).ListWithCursor(ctx, decoded, limit)
}
