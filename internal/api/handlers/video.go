package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cognify-labs/cognify/internal/api"
	"github.com/cognify-labs/cognify/internal/ingest"
	"github.com/cognify-labs/cognify/internal/library"
	"github.com/cognify-labs/cognify/internal/pagination"
	"github.com/cognify-labs/cognify/internal/service"
	"github.com/go-chi/chi/v5"
)

type VideoService interface {
	Ingest(ctx context.Context, input service.IngestInput) (*library.Knowledge, error)
	Get(ctx context.Context, videoID string) (*library.Knowledge, error)
	Delete(ctx context.Context, videoID string) error
	List(ctx context.Context, cursor string, limit int) (*pagination.PageResult[library.Summary], error)
}

type VideoHandler struct {
	svc VideoService
}

func NewVideoHandler(svc VideoService) *VideoHandler {
	return &VideoHandler{svc: svc}
}

type IngestVideoRequest struct {
	VideoID  string                   `json:"video_id"`
	Captions []ingest.CaptionFragment `json:"captions"`
	Frames   []ingest.FrameFragment   `json:"frames"`
}

type VideoResponse struct {
	VideoID       string `json:"video_id"`
	CaptionUnits  int    `json:"caption_units"`
	ScreenUnits   int    `json:"screen_units"`
	DegradedUnits int    `json:"degraded_units"`
	Dropped       int    `json:"dropped"`
	Deduplicated  int    `json:"deduplicated"`
	IngestedAt    string `json:"ingested_at"`
}

func knowledgeToResponse(k *library.Knowledge) *VideoResponse {
	sum := k.Summary()
	return &VideoResponse{
		VideoID:       sum.VideoID,
		CaptionUnits:  sum.CaptionUnits,
		ScreenUnits:   sum.ScreenUnits,
		DegradedUnits: sum.DegradedUnits,
		Dropped:       k.Report.Dropped,
		Deduplicated:  k.Report.Deduplicated,
		IngestedAt:    sum.IngestedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *VideoHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.VideoID == "" {
		api.Error(w, http.StatusBadRequest, "video_id is required")
		return
	}

	input := service.IngestInput{
		VideoID:  req.VideoID,
		Captions: req.Captions,
		Frames:   req.Frames,
	}

	knowledge, err := h.svc.Ingest(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, knowledgeToResponse(knowledge))
}

func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	knowledge, err := h.svc.Get(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, knowledgeToResponse(knowledge))
}

func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type VideoListResponse struct {
	Items   []library.Summary `json:"items"`
	Cursor  string            `json:"cursor,omitempty"`
	HasMore bool              `json:"has_more"`
}

func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")
	limitStr := r.URL.Query().Get("limit")
	limit := 20
	if limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	page, err := h.svc.List(r.Context(), cursor, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := page.Items
	if items == nil {
		items = []library.Summary{}
	}

	api.Success(w, http.StatusOK, VideoListResponse{
		Items:   items,
		Cursor:  page.Cursor,
		HasMore: page.HasMore,
	})
}
