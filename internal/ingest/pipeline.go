package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/cognify-labs/cognify/internal/domain"
)

// Config controls the ingestion pipeline.
type Config struct {
	Dedup DedupConfig
	// MaxChunkWords is the target word count for coalesced caption chunks;
	// 0 disables coalescing.
	MaxChunkWords int
}

// DefaultConfig provides sane pipeline defaults.
func DefaultConfig() Config {
	return Config{
		Dedup:         DefaultDedupConfig(),
		MaxChunkWords: 60,
	}
}

// Report summarizes one ingestion run.
type Report struct {
	CaptionUnits int
	ScreenUnits  int
	Dropped      int
	Deduplicated int
}

// Pipeline builds an immutable Corpus from raw provider fragments. Stages run
// sequentially per video: normalize, deduplicate, merge. Malformed fragments
// are logged and dropped without aborting the run; a partial corpus is
// acceptable.
type Pipeline struct {
	cfg Config
}

// NewPipeline creates a Pipeline with the given configuration.
func NewPipeline(cfg Config) *Pipeline {
	if cfg.Dedup.Threshold == 0 && cfg.Dedup.Window == 0 {
		cfg.Dedup = DefaultDedupConfig()
	}
	return &Pipeline{cfg: cfg}
}

// Run executes the full ingestion pipeline for one video.
func (p *Pipeline) Run(videoID string, captions []CaptionFragment, frames []FrameFragment) (*domain.Corpus, *Report, error) {
	if videoID == "" {
		return nil, nil, domain.ErrEmptyVideoID
	}

	report := &Report{}

	coalesced := CoalesceCaptions(captions, p.cfg.MaxChunkWords)

	captionUnits := make([]domain.TextUnit, 0, len(coalesced))
	for i, f := range coalesced {
		unit, err := NormalizeCaption(videoID, i, f)
		if err != nil {
			report.Dropped++
			if !errors.Is(err, domain.ErrEmptyText) {
				log.Printf("ingest: dropping caption fragment %d of video %s: %v", i, videoID, err)
			}
			continue
		}
		captionUnits = append(captionUnits, unit)
	}

	screenUnits := make([]domain.TextUnit, 0, len(frames))
	for i, f := range frames {
		unit, err := NormalizeFrame(videoID, i, f)
		if err != nil {
			report.Dropped++
			if !errors.Is(err, domain.ErrEmptyText) {
				log.Printf("ingest: dropping frame fragment %d of video %s: %v", i, videoID, err)
			}
			continue
		}
		screenUnits = append(screenUnits, unit)
	}

	// Providers promise ordered output; enforce it anyway so the two-pointer
	// merge invariant holds.
	sort.SliceStable(captionUnits, func(i, j int) bool { return captionUnits[i].Start < captionUnits[j].Start })
	sort.SliceStable(screenUnits, func(i, j int) bool { return screenUnits[i].Start < screenUnits[j].Start })

	before := len(screenUnits)
	screenUnits = Deduplicate(screenUnits, p.cfg.Dedup)
	report.Deduplicated = before - len(screenUnits)

	corpus := &domain.Corpus{
		VideoID:    videoID,
		Units:      MergeTimeline(captionUnits, screenUnits),
		IngestedAt: time.Now().UTC(),
	}

	if err := domain.ValidateCorpus(corpus); err != nil {
		return nil, nil, fmt.Errorf("merged corpus failed validation: %w", err)
	}

	report.CaptionUnits = len(captionUnits)
	report.ScreenUnits = len(screenUnits)

	return corpus, report, nil
}

// RunProviders fetches both fragment streams from the given providers and
// runs the pipeline on them.
func (p *Pipeline) RunProviders(ctx context.Context, videoID string, stt SpeechToTextProvider, ocr FrameOCRProvider) (*domain.Corpus, *Report, error) {
	captions, err := stt.Transcript(ctx, videoID)
	if err != nil {
		return nil, nil, fmt.Errorf("speech-to-text provider failed: %w", err)
	}

	frames, err := ocr.FrameText(ctx, videoID)
	if err != nil {
		return nil, nil, fmt.Errorf("frame OCR provider failed: %w", err)
	}

	return p.Run(videoID, captions, frames)
}
