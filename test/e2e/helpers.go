//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cognify-labs/cognify/internal/answer"
	"github.com/cognify-labs/cognify/internal/api/handlers"
	"github.com/cognify-labs/cognify/internal/index"
	"github.com/cognify-labs/cognify/internal/ingest"
	"github.com/cognify-labs/cognify/internal/library"
	"github.com/cognify-labs/cognify/internal/retrieval"
	"github.com/cognify-labs/cognify/internal/server"
	"github.com/cognify-labs/cognify/internal/service"
)

// StubProvider is a deterministic stand-in for the embedding and generation
// providers. Embeddings hash token text into a small fixed vector; answers
// echo a canned response so tests can assert on citations and status without
// a network dependency.
type StubProvider struct {
	mu             sync.Mutex
	EmbedDown      bool
	GenerateDown   bool
	GenerateCalls  int
	EmbeddingCalls int
	CannedAnswer   string
	lastUserPrompt string
}

func NewStubProvider() *StubProvider {
	return &StubProvider{CannedAnswer: "The key idea is covered at the cited timestamps [1]."}
}

func (p *StubProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.EmbeddingCalls++
	if p.EmbedDown {
		return nil, fmt.Errorf("embedding provider unavailable")
	}

	vec := make([]float32, 8)
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()
	for i := range vec {
		vec[i] = float32((seed>>uint(i*4))&0xF) + 1
	}
	return vec, nil
}

func (p *StubProvider) GenerateAnswer(ctx context.Context, system, user string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.GenerateCalls++
	p.lastUserPrompt = user
	if p.GenerateDown {
		return "", fmt.Errorf("generation provider unavailable")
	}
	return p.CannedAnswer, nil
}

// LastUserPrompt returns the most recent user prompt sent to the generator.
func (p *StubProvider) LastUserPrompt() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastUserPrompt
}

// E2ETestEnv wires the full service stack behind a real HTTP server.
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	Provider   *StubProvider
	Registry   *library.Registry
	Server     *httptest.Server
	HTTPClient *http.Client
}

// SetupE2EEnv builds the full stack with stub providers and no database.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	t.Helper()

	provider := NewStubProvider()
	registry := library.NewRegistry()

	pipeline := ingest.NewPipeline(ingest.DefaultConfig())
	indexer := index.NewIndexer(provider, 2)
	retriever := retrieval.NewRetriever(provider, retrieval.DefaultConfig())
	orchestrator := answer.NewOrchestrator(retriever, provider, answer.Config{
		NeighborWindow: retrieval.DefaultNeighborWindow,
		MaxRetries:     1,
		RetryBackoff:   time.Millisecond,
	})

	videoSvc := service.NewVideoService(pipeline, indexer, registry, nil)
	askSvc := service.NewAskService(registry, orchestrator, 10*time.Second)

	router := server.NewRouter(server.RouterConfig{
		VideoHandler: handlers.NewVideoHandler(videoSvc),
		AskHandler:   handlers.NewAskHandler(askSvc),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &E2ETestEnv{
		T:          t,
		Ctx:        context.Background(),
		Provider:   provider,
		Registry:   registry,
		Server:     srv,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path string) (int, *APIResponse, error) {
	return e.doRequest("GET", path, nil)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}) (int, *APIResponse, error) {
	return e.doRequest("POST", path, body)
}

// Delete performs a DELETE request
func (e *E2ETestEnv) Delete(path string) (int, *APIResponse, error) {
	return e.doRequest("DELETE", path, nil)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}) (int, *APIResponse, error) {
	url := e.Server.URL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	if len(respBody) == 0 {
		return resp.StatusCode, &APIResponse{}, nil
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return resp.StatusCode, &apiResp, nil
}
