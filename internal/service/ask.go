package service

import (
	"context"
	"time"

	"github.com/cognify-labs/cognify/internal/answer"
	"github.com/cognify-labs/cognify/internal/domain"
	"github.com/cognify-labs/cognify/internal/library"
	"github.com/cognify-labs/cognify/internal/telemetry"
)

// AskInput carries one question against one video.
type AskInput struct {
	VideoID   string
	Question  string
	TopK      int
	TimeRange *domain.TimeRange
}

// AskService answers questions against registered knowledge.
type AskService struct {
	registry     *library.Registry
	orchestrator *answer.Orchestrator
	timeout      time.Duration
}

// NewAskService creates an AskService. A non-zero timeout bounds each query
// end to end.
func NewAskService(registry *library.Registry, orchestrator *answer.Orchestrator, timeout time.Duration) *AskService {
	return &AskService{
		registry:     registry,
		orchestrator: orchestrator,
		timeout:      timeout,
	}
}

// Ask answers one question. Unknown videos and invalid questions are errors;
// every other outcome is reported through the Answer's status.
func (s *AskService) Ask(ctx context.Context, input AskInput) (*domain.Answer, error) {
	ctx, span := telemetry.StartSpan(ctx, "AskService.Ask", telemetry.SpanAttributes{
		VideoID:   input.VideoID,
		Operation: "ask",
	})
	defer span.End()

	k, err := s.registry.Get(input.VideoID)
	if err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	return s.orchestrator.Ask(ctx, k.Index, domain.Query{
		Text:      input.Question,
		TopK:      input.TopK,
		TimeRange: input.TimeRange,
	})
}
