package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cognify-labs/cognify/internal/api"
	"github.com/cognify-labs/cognify/internal/domain"
	"github.com/cognify-labs/cognify/internal/service"
	"github.com/go-chi/chi/v5"
)

type AskService interface {
	Ask(ctx context.Context, input service.AskInput) (*domain.Answer, error)
}

type AskHandler struct {
	svc AskService
}

func NewAskHandler(svc AskService) *AskHandler {
	return &AskHandler{svc: svc}
}

type AskRequest struct {
	Question string   `json:"question"`
	TopK     int      `json:"top_k,omitempty"`
	From     *float64 `json:"from,omitempty"`
	To       *float64 `json:"to,omitempty"`
}

type CitationResponse struct {
	Source string  `json:"source"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
}

type AskResponse struct {
	Answer    string             `json:"answer"`
	Citations []CitationResponse `json:"citations"`
	Status    string             `json:"status"`
	ErrorKind string             `json:"error_kind,omitempty"`
}

func answerToResponse(a *domain.Answer) *AskResponse {
	citations := make([]CitationResponse, len(a.Citations))
	for i, c := range a.Citations {
		citations[i] = CitationResponse{
			Source: string(c.Source),
			Start:  c.Start,
			End:    c.End,
		}
	}

	return &AskResponse{
		Answer:    a.Text,
		Citations: citations,
		Status:    string(a.Status),
		ErrorKind: a.ErrorKind,
	}
}

func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Question == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}

	if (req.From == nil) != (req.To == nil) {
		api.Error(w, http.StatusBadRequest, "from and to must be provided together")
		return
	}

	input := service.AskInput{
		VideoID:  id,
		Question: req.Question,
		TopK:     req.TopK,
	}
	if req.From != nil {
		input.TimeRange = &domain.TimeRange{From: *req.From, To: *req.To}
	}

	answer, err := h.svc.Ask(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, answerToResponse(answer))
}
