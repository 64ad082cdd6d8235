package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloo-solutions/clausecast/internal/api/handlers"
	"github.com/cloo-solutions/clausecast/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDocumentService is a mock implementation of handlers.DocumentService
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Ingest(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) Analyze(ctx context.Context, docID string, topK int) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, docID, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}

func (m *MockDocumentService) Podcast(ctx context.Context, docID string, topK int) (*domain.PodcastScript, error) {
	args := m.Called(ctx, docID, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PodcastScript), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, docID string) error {
	args := m.Called(ctx, docID)
	return args.Error(0)
}

func (m *MockDocumentService) PodcastFromText(ctx context.Context, text string) (string, *domain.PodcastScript, error) {
	args := m.Called(ctx, text)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*domain.PodcastScript), args.Error(2)
}

func newTestRouter(svc handlers.DocumentService) http.Handler {
	return NewRouter(RouterConfig{
		DocumentHandler: handlers.NewDocumentHandler(svc),
	})
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(new(MockDocumentService))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_IngestDocument(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("Ingest", mock.Anything, "hello world").Return("doc-1", nil)

	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(`{"text": "hello world"}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Data struct {
			DocID string `json:"doc_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "doc-1", body.Data.DocID)
	svc.AssertExpectations(t)
}

func TestRouter_IngestDocument_BadRequests(t *testing.T) {
	router := newTestRouter(new(MockDocumentService))

	cases := map[string]string{
		"invalid json": `{`,
		"missing text": `{}`,
		"blank text":   `{"text": "   "}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(payload))
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRouter_IngestFile(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("Ingest", mock.Anything, "file body text").Return("doc-2", nil)

	router := newTestRouter(svc)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "agreement.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("file body text"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/documents/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestRouter_IngestFile_RejectsPDF(t *testing.T) {
	router := newTestRouter(new(MockDocumentService))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "agreement.PDF")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.7"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/documents/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_Analyze(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("Analyze", mock.Anything, "doc-1", 5).Return(&domain.AnalysisResult{
		Summary:     "summary",
		Themes:      []domain.Theme{},
		TopRedFlags: []domain.RedFlag{},
		UserActions: []domain.UserAction{},
	}, nil)

	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/doc-1/analysis?top_k=5", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"summary":"summary"`)
	svc.AssertExpectations(t)
}

func TestRouter_Analyze_DefaultTopK(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("Analyze", mock.Anything, "doc-1", 0).Return(&domain.AnalysisResult{
		Summary:     "s",
		Themes:      []domain.Theme{},
		TopRedFlags: []domain.RedFlag{},
		UserActions: []domain.UserAction{},
	}, nil)

	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/doc-1/analysis", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestRouter_Analyze_InvalidTopK(t *testing.T) {
	router := newTestRouter(new(MockDocumentService))

	for _, q := range []string{"top_k=0", "top_k=-2", "top_k=abc"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/doc-1/analysis?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestRouter_Analyze_NotFound(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("Analyze", mock.Anything, "missing", 0).Return(nil, domain.ErrDocumentNotFound)

	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/missing/analysis", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_DeleteDocument(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("Delete", mock.Anything, "doc-1").Return(nil)

	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/documents/doc-1", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	svc.AssertExpectations(t)
}

func TestRouter_DeleteDocument_StoreFailure(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("Delete", mock.Anything, "doc-1").
		Return(domain.NewIndexWriteError(assert.AnError))

	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/documents/doc-1", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRouter_Podcast(t *testing.T) {
	script := &domain.PodcastScript{
		Title: "Deep Dive: something...",
		Intro: []domain.PodcastSegment{{Speaker: "Sarah", Text: "hi", Emotion: "neutral"}},
	}
	svc := new(MockDocumentService)
	svc.On("Podcast", mock.Anything, "doc-1", 4).Return(script, nil)

	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/documents/doc-1/podcast", strings.NewReader(`{"top_k": 4}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Deep Dive")
	svc.AssertExpectations(t)
}

func TestRouter_Podcast_EmptyBody(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("Podcast", mock.Anything, "doc-1", 0).Return(&domain.PodcastScript{}, nil)

	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/documents/doc-1/podcast", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestRouter_PodcastFromText(t *testing.T) {
	script := &domain.PodcastScript{Title: "Deep Dive: raw..."}
	svc := new(MockDocumentService)
	svc.On("PodcastFromText", mock.Anything, "raw text").Return("doc-3", script, nil)

	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/podcast", strings.NewReader(`{"text": "raw text"}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"doc_id":"doc-3"`)
	svc.AssertExpectations(t)
}

func TestRouter_PodcastFromText_UpstreamFailure(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("PodcastFromText", mock.Anything, "raw text").
		Return("", nil, domain.NewMalformedOutputError("garbage", assert.AnError))

	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/podcast", strings.NewReader(`{"text": "raw text"}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
