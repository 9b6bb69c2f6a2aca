package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cognify-labs/cognify/internal/domain"
	"github.com/cognify-labs/cognify/internal/ingest"
	"github.com/cognify-labs/cognify/internal/library"
	"github.com/cognify-labs/cognify/internal/pagination"
	"github.com/cognify-labs/cognify/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockVideoService struct {
	mock.Mock
}

func (m *MockVideoService) Ingest(ctx context.Context, input service.IngestInput) (*library.Knowledge, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*library.Knowledge), args.Error(1)
}

func (m *MockVideoService) Get(ctx context.Context, videoID string) (*library.Knowledge, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*library.Knowledge), args.Error(1)
}

func (m *MockVideoService) Delete(ctx context.Context, videoID string) error {
	args := m.Called(ctx, videoID)
	return args.Error(0)
}

func (m *MockVideoService) List(ctx context.Context, cursor string, limit int) (*pagination.PageResult[library.Summary], error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagination.PageResult[library.Summary]), args.Error(1)
}

func newTestKnowledge(videoID string) *library.Knowledge {
	return &library.Knowledge{
		VideoID: videoID,
		Report: &ingest.Report{
			CaptionUnits: 4,
			ScreenUnits:  2,
			Dropped:      1,
			Deduplicated: 1,
		},
		IngestedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
}

func requestWithURLParam(method, url, key, value string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestVideoHandler_Ingest_Success(t *testing.T) {
	mockSvc := new(MockVideoService)
	handler := NewVideoHandler(mockSvc)

	expected := newTestKnowledge("physics-101")
	mockSvc.On("Ingest", mock.Anything, mock.MatchedBy(func(input service.IngestInput) bool {
		return input.VideoID == "physics-101" && len(input.Captions) == 1 && len(input.Frames) == 1
	})).Return(expected, nil)

	body := `{"video_id":"physics-101","captions":[{"text":"voltage equals current times resistance","start":10,"end":14}],"frames":[{"frame_ref":"frame_0004","text":"V = IR","timestamp":12}]}`
	req := httptest.NewRequest(http.MethodPost, "/videos", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Ingest(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "physics-101", data["video_id"])
	assert.Equal(t, float64(1), data["deduplicated"])
	mockSvc.AssertExpectations(t)
}

func TestVideoHandler_Ingest_InvalidJSON(t *testing.T) {
	mockSvc := new(MockVideoService)
	handler := NewVideoHandler(mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/videos", bytes.NewReader([]byte(`{invalid`)))
	w := httptest.NewRecorder()

	handler.Ingest(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestVideoHandler_Ingest_MissingVideoID(t *testing.T) {
	mockSvc := new(MockVideoService)
	handler := NewVideoHandler(mockSvc)

	body := `{"captions":[{"text":"hello","start":0,"end":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/videos", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Ingest(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "video_id is required")
}

func TestVideoHandler_Ingest_ServiceError(t *testing.T) {
	mockSvc := new(MockVideoService)
	handler := NewVideoHandler(mockSvc)

	mockSvc.On("Ingest", mock.Anything, mock.Anything).
		Return(nil, domain.NewDomainError(domain.ErrCodeValidation, "empty video id"))

	body := `{"video_id":"physics-101","captions":[]}`
	req := httptest.NewRequest(http.MethodPost, "/videos", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Ingest(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestVideoHandler_Get_Success(t *testing.T) {
	mockSvc := new(MockVideoService)
	handler := NewVideoHandler(mockSvc)

	mockSvc.On("Get", mock.Anything, "physics-101").Return(newTestKnowledge("physics-101"), nil)

	req := requestWithURLParam(http.MethodGet, "/videos/physics-101", "id", "physics-101", nil)
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "physics-101", data["video_id"])
	mockSvc.AssertExpectations(t)
}

func TestVideoHandler_Get_NotFound(t *testing.T) {
	mockSvc := new(MockVideoService)
	handler := NewVideoHandler(mockSvc)

	mockSvc.On("Get", mock.Anything, "missing").Return(nil, domain.ErrVideoNotFound)

	req := requestWithURLParam(http.MethodGet, "/videos/missing", "id", "missing", nil)
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestVideoHandler_Delete_Success(t *testing.T) {
	mockSvc := new(MockVideoService)
	handler := NewVideoHandler(mockSvc)

	mockSvc.On("Delete", mock.Anything, "physics-101").Return(nil)

	req := requestWithURLParam(http.MethodDelete, "/videos/physics-101", "id", "physics-101", nil)
	w := httptest.NewRecorder()

	handler.Delete(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	mockSvc.AssertExpectations(t)
}

func TestVideoHandler_Delete_NotFound(t *testing.T) {
	mockSvc := new(MockVideoService)
	handler := NewVideoHandler(mockSvc)

	mockSvc.On("Delete", mock.Anything, "missing").Return(domain.ErrVideoNotFound)

	req := requestWithURLParam(http.MethodDelete, "/videos/missing", "id", "missing", nil)
	w := httptest.NewRecorder()

	handler.Delete(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestVideoHandler_List_Success(t *testing.T) {
	mockSvc := new(MockVideoService)
	handler := NewVideoHandler(mockSvc)

	page := &pagination.PageResult[library.Summary]{
		Items: []library.Summary{
			{VideoID: "physics-101", CaptionUnits: 4, IngestedAt: time.Now().UTC()},
			{VideoID: "chem-201", CaptionUnits: 2, IngestedAt: time.Now().UTC()},
		},
		Cursor:  "next-cursor",
		HasMore: true,
	}
	mockSvc.On("List", mock.Anything, "", 2).Return(page, nil)

	req := httptest.NewRequest(http.MethodGet, "/videos?limit=2", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	assert.Len(t, items, 2)
	assert.Equal(t, "next-cursor", data["cursor"])
	assert.Equal(t, true, data["has_more"])
	mockSvc.AssertExpectations(t)
}

func TestVideoHandler_List_DefaultLimit(t *testing.T) {
	mockSvc := new(MockVideoService)
	handler := NewVideoHandler(mockSvc)

	page := &pagination.PageResult[library.Summary]{Items: nil, HasMore: false}
	mockSvc.On("List", mock.Anything, "", 20).Return(page, nil)

	req := httptest.NewRequest(http.MethodGet, "/videos", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	items, ok := data["items"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, items)
	mockSvc.AssertExpectations(t)
}

func TestVideoHandler_List_InvalidCursor(t *testing.T) {
	mockSvc := new(MockVideoService)
	handler := NewVideoHandler(mockSvc)

	mockSvc.On("List", mock.Anything, "bogus", 20).
		Return(nil, domain.NewDomainError(domain.ErrCodeValidation, "invalid cursor"))

	req := httptest.NewRequest(http.MethodGet, "/videos?cursor=bogus", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertExpectations(t)
}
