// Package answer drives the query flow: retrieve, assemble, generate, and
// return an answer with citations, with defined fallbacks on failure.
package answer

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/cognify-labs/cognify/internal/domain"
	"github.com/cognify-labs/cognify/internal/index"
	"github.com/cognify-labs/cognify/internal/retrieval"
)

// State is one step of the per-query state machine. FAILED is reachable from
// every step.
type State string

const (
	StateReceived   State = "RECEIVED"
	StateRetrieving State = "RETRIEVING"
	StateAssembling State = "ASSEMBLING"
	StateGenerating State = "GENERATING"
	StateDone       State = "DONE"
	StateFailed     State = "FAILED"
)

// GenerateClient defines the interface for the generative answer provider.
type GenerateClient interface {
	GenerateAnswer(ctx context.Context, system, user string) (string, error)
}

// Config controls orchestration.
type Config struct {
	// ContextBudget is the AnswerContext character limit.
	ContextBudget int
	// NeighborWindow is how many adjacent corpus chunks are pulled in
	// around each retrieved span before assembly. 0 disables expansion.
	NeighborWindow int
	// MaxRetries is how many times a failed generation call is retried
	// before the query fails.
	MaxRetries int
	// RetryBackoff is the base delay between generation retries; it doubles
	// per attempt.
	RetryBackoff time.Duration
}

// DefaultConfig provides sane orchestration defaults.
func DefaultConfig() Config {
	return Config{
		ContextBudget:  retrieval.DefaultContextBudget,
		NeighborWindow: retrieval.DefaultNeighborWindow,
		MaxRetries:     2,
		RetryBackoff:   500 * time.Millisecond,
	}
}

// Orchestrator runs queries against a built index. It holds no per-query
// state; concurrent queries are independent.
type Orchestrator struct {
	retriever *retrieval.Retriever
	generator GenerateClient
	cfg       Config
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(retriever *retrieval.Retriever, generator GenerateClient, cfg Config) *Orchestrator {
	if cfg.ContextBudget <= 0 {
		cfg.ContextBudget = retrieval.DefaultContextBudget
	}
	if cfg.NeighborWindow < 0 {
		cfg.NeighborWindow = 0
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	return &Orchestrator{retriever: retriever, generator: generator, cfg: cfg}
}

// Ask answers one question against the given index. Validation failures
// return an error; every other outcome is reported through the Answer's
// status. An empty retrieval is a successful-but-unanswerable response, not
// an error. A generation failure after retries yields status failed with the
// error kind preserved and no partial answer text; on provider failures the
// retrieved citations are kept so the caller can still point the student at
// the best spans, while timeouts return no citations.
func (o *Orchestrator) Ask(ctx context.Context, idx *index.Index, query domain.Query) (*domain.Answer, error) {
	state := StateReceived
	if err := domain.ValidateQuery(&query); err != nil {
		return nil, err
	}

	state = StateRetrieving
	results, err := o.retriever.Search(ctx, idx, query)
	if err != nil {
		return o.fail(state, err), nil
	}
	if len(results) == 0 {
		return &domain.Answer{Status: domain.AskStatusNoRelevantContext, Citations: []domain.Citation{}}, nil
	}

	state = StateAssembling
	expanded := retrieval.ExpandNeighbors(idx, results, o.cfg.NeighborWindow, query.TimeRange)
	actx := retrieval.AssembleContext(expanded, o.cfg.ContextBudget)
	if actx.Empty() {
		return &domain.Answer{Status: domain.AskStatusNoRelevantContext, Citations: []domain.Citation{}}, nil
	}

	state = StateGenerating
	system, user := BuildPrompts(query.Text, actx)
	text, genErr := o.generateWithRetry(ctx, system, user)
	if genErr != nil {
		answer := o.fail(state, genErr)
		// On provider failures keep provenance so the caller can still
		// surface the best spans. A timeout means the caller is gone, so
		// nothing is returned for it.
		if answer.ErrorKind != domain.ErrCodeTimeout {
			answer.Citations = actx.Citations()
		}
		return answer, nil
	}

	return &domain.Answer{
		Text:      text,
		Citations: actx.Citations(),
		Status:    domain.AskStatusOK,
	}, nil
}

func (o *Orchestrator) fail(state State, err error) *domain.Answer {
	log.Printf("answer: query failed in state %s: %v", state, err)
	return &domain.Answer{
		Status:    domain.AskStatusFailed,
		Citations: []domain.Citation{},
		ErrorKind: errorKind(err),
	}
}

// generateWithRetry calls the generative provider, retrying provider errors
// up to MaxRetries with doubling backoff. Cancellation and deadlines are
// surfaced immediately and never retried.
func (o *Orchestrator) generateWithRetry(ctx context.Context, system, user string) (string, error) {
	if o.generator == nil {
		return "", domain.ErrGenerationUnavailable
	}

	backoff := o.cfg.RetryBackoff
	var lastErr error

	for attempt := 0; attempt <= o.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", domain.NewDomainErrorWithCause(domain.ErrCodeTimeout, "generation cancelled while backing off", ctx.Err())
			case <-timer.C:
			}
			backoff *= 2
		}

		text, err := o.generator.GenerateAnswer(ctx, system, user)
		if err == nil {
			return text, nil
		}

		if isTimeout(ctx, err) {
			return "", domain.NewDomainErrorWithCause(domain.ErrCodeTimeout, "generation exceeded caller deadline", err)
		}

		lastErr = err
		log.Printf("answer: generation attempt %d/%d failed: %v", attempt+1, o.cfg.MaxRetries+1, err)
	}

	return "", domain.NewDomainErrorWithCause(domain.ErrCodeProviderUnavailable, "generation provider failed after retries", lastErr)
}

func isTimeout(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

func errorKind(err error) string {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return domain.ErrCodeInternalError
}
