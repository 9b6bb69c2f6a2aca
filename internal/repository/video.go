// Package repository persists per-video knowledge in Postgres with pgvector
// embeddings. Persistence is optional; the engine is fully functional from
// the in-process registry alone.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cognify-labs/cognify/internal/domain"
	"github.com/cognify-labs/cognify/internal/index"
	"github.com/cognify-labs/cognify/internal/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// VideoRecord is the stored ingestion summary for one video.
type VideoRecord struct {
	VideoID      string
	CaptionUnits int
	ScreenUnits  int
	Dropped      int
	Deduplicated int
	IngestedAt   time.Time
}

type VideoRepository struct {
	db dbtx
}

func NewVideoRepository(pool *pgxpool.Pool) *VideoRepository {
	return &VideoRepository{db: pool}
}

func NewVideoRepositoryWithTx(tx pgx.Tx) *VideoRepository {
	return &VideoRepository{db: tx}
}

// Upsert writes the video row, replacing the previous summary on re-ingest.
func (r *VideoRepository) Upsert(ctx context.Context, rec *VideoRecord) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO videos (id, caption_units, screen_units, dropped, deduplicated, ingested_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
		     caption_units = EXCLUDED.caption_units,
		     screen_units = EXCLUDED.screen_units,
		     dropped = EXCLUDED.dropped,
		     deduplicated = EXCLUDED.deduplicated,
		     ingested_at = EXCLUDED.ingested_at`,
		rec.VideoID, rec.CaptionUnits, rec.ScreenUnits, rec.Dropped, rec.Deduplicated, rec.IngestedAt,
	)
	return err
}

// Get returns the stored summary for a video.
func (r *VideoRepository) Get(ctx context.Context, videoID string) (*VideoRecord, error) {
	var rec VideoRecord
	err := r.db.QueryRow(ctx,
		`SELECT id, caption_units, screen_units, dropped, deduplicated, ingested_at
		 FROM videos WHERE id = $1`,
		videoID,
	).Scan(&rec.VideoID, &rec.CaptionUnits, &rec.ScreenUnits, &rec.Dropped, &rec.Deduplicated, &rec.IngestedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVideoNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Delete removes a video row; text units go with it via the foreign key.
func (r *VideoRepository) Delete(ctx context.Context, videoID string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM videos WHERE id = $1`,
		videoID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrVideoNotFound
	}
	return nil
}

// ListIDs returns every stored video ID, for startup recovery.
func (r *VideoRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM videos ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListWithCursor returns one page of video summaries, newest first.
func (r *VideoRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*VideoRecord], error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, caption_units, screen_units, dropped, deduplicated, ingested_at
			 FROM videos
			 WHERE (ingested_at, id) < ($1, $2)
			 ORDER BY ingested_at DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, caption_units, screen_units, dropped, deduplicated, ingested_at
			 FROM videos
			 ORDER BY ingested_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanVideoRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		lastItem := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(lastItem.VideoID, lastItem.IngestedAt)
	}

	return &pagination.PageResult[*VideoRecord]{
		Items:   items,
		Cursor:  nextCursor,
		HasMore: hasMore,
	}, nil
}

// ReplaceUnits deletes a video's stored units and inserts the given index
// entries in corpus order. Entries without a vector are stored with a NULL
// embedding so a later backfill can find them.
func (r *VideoRepository) ReplaceUnits(ctx context.Context, videoID string, entries []*domain.IndexEntry) error {
	_, err := r.db.Exec(ctx, `DELETE FROM text_units WHERE video_id = $1`, videoID)
	if err != nil {
		return err
	}

	for ordinal, entry := range entries {
		var embedding any
		if !entry.SemanticUnavailable && entry.Embedding != nil {
			embedding = pgvector.NewVector(entry.Embedding)
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO text_units
				(id, video_id, ordinal, source, content, start_sec, end_sec, confidence, frame_ref, embedding, semantic_unavailable)
			 VALUES
				($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			entry.ID,
			videoID,
			ordinal,
			string(entry.Unit.Source),
			entry.Unit.Text,
			entry.Unit.Start,
			entry.Unit.End,
			entry.Unit.Confidence,
			nullableString(entry.Unit.FrameRef),
			embedding,
			entry.SemanticUnavailable,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// LoadUnits reads a video's index entries back in corpus order, recomputing
// the lexical tokens from the stored text.
func (r *VideoRepository) LoadUnits(ctx context.Context, videoID string) ([]*domain.IndexEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, source, content, start_sec, end_sec, confidence, frame_ref, embedding, semantic_unavailable
		 FROM text_units WHERE video_id = $1 ORDER BY ordinal`,
		videoID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.IndexEntry
	for rows.Next() {
		var entry domain.IndexEntry
		var source string
		var frameRef *string
		var vec *pgvector.Vector
		if err := rows.Scan(
			&entry.ID,
			&source,
			&entry.Unit.Text,
			&entry.Unit.Start,
			&entry.Unit.End,
			&entry.Unit.Confidence,
			&frameRef,
			&vec,
			&entry.SemanticUnavailable,
		); err != nil {
			return nil, err
		}
		entry.Unit.ID = entry.ID
		entry.Unit.Source = domain.Source(source)
		if frameRef != nil {
			entry.Unit.FrameRef = *frameRef
		}
		if vec != nil {
			entry.Embedding = vec.Slice()
		}
		entry.Tokens = index.Tokenize(entry.Unit.Text)
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

func scanVideoRows(rows pgx.Rows) ([]*VideoRecord, error) {
	var results []*VideoRecord
	for rows.Next() {
		var rec VideoRecord
		if err := rows.Scan(&rec.VideoID, &rec.CaptionUnits, &rec.ScreenUnits, &rec.Dropped, &rec.Deduplicated, &rec.IngestedAt); err != nil {
			return nil, err
		}
		results = append(results, &rec)
	}
	return results, rows.Err()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
