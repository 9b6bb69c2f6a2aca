// Package library holds the in-process registry of per-video knowledge. A
// registered handle is read-only; re-ingesting a video swaps the whole handle
// under the lock, so in-flight queries keep the snapshot they started with.
package library

import (
	"sort"
	"sync"
	"time"

	"github.com/cognify-labs/cognify/internal/domain"
	"github.com/cognify-labs/cognify/internal/index"
	"github.com/cognify-labs/cognify/internal/ingest"
)

// Knowledge is one video's queryable state: the merged corpus, its built
// index, and the ingestion report. Immutable after registration.
type Knowledge struct {
	VideoID    string
	Corpus     *domain.Corpus
	Index      *index.Index
	Report     *ingest.Report
	IngestedAt time.Time
}

// Summary is the listing view of one registered video.
type Summary struct {
	VideoID       string    `json:"video_id"`
	CaptionUnits  int       `json:"caption_units"`
	ScreenUnits   int       `json:"screen_units"`
	DegradedUnits int       `json:"degraded_units"`
	IngestedAt    time.Time `json:"ingested_at"`
}

// Registry maps video IDs to knowledge handles.
type Registry struct {
	mu     sync.RWMutex
	videos map[string]*Knowledge
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{videos: make(map[string]*Knowledge)}
}

// Put registers a knowledge handle, replacing any previous handle for the
// same video wholesale.
func (r *Registry) Put(k *Knowledge) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.videos[k.VideoID] = k
}

// Get returns the handle for a video, or ErrVideoNotFound.
func (r *Registry) Get(videoID string) (*Knowledge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	k, ok := r.videos[videoID]
	if !ok {
		return nil, domain.ErrVideoNotFound
	}
	return k, nil
}

// Delete removes a video's knowledge. Deleting an unknown video returns
// ErrVideoNotFound.
func (r *Registry) Delete(videoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.videos[videoID]; !ok {
		return domain.ErrVideoNotFound
	}
	delete(r.videos, videoID)
	return nil
}

// List returns summaries for all registered videos, ordered by video ID.
func (r *Registry) List() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]Summary, 0, len(r.videos))
	for _, k := range r.videos {
		summaries = append(summaries, k.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].VideoID < summaries[j].VideoID
	})
	return summaries
}

// Degraded returns the IDs of videos whose index has entries without a
// semantic vector. The backfill worker polls this.
func (r *Registry) Degraded() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for id, k := range r.videos {
		if k.Index != nil && k.Index.Degraded() > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered videos.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.videos)
}

// Summary builds the listing view of this knowledge handle.
func (k *Knowledge) Summary() Summary {
	s := Summary{
		VideoID:    k.VideoID,
		IngestedAt: k.IngestedAt,
	}
	if k.Corpus != nil {
		s.CaptionUnits = k.Corpus.CountBySource(domain.SourceCaption)
		s.ScreenUnits = k.Corpus.CountBySource(domain.SourceOnScreenText)
	}
	if k.Index != nil {
		s.DegradedUnits = k.Index.Degraded()
	}
	return s
}
