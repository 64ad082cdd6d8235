package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cloo-solutions/clausecast/internal/api"
	"github.com/cloo-solutions/clausecast/internal/domain"
	"github.com/go-chi/chi/v5"
)

type DocumentService interface {
	Ingest(ctx context.Context, text string) (string, error)
	Analyze(ctx context.Context, docID string, topK int) (*domain.AnalysisResult, error)
	Podcast(ctx context.Context, docID string, topK int) (*domain.PodcastScript, error)
	PodcastFromText(ctx context.Context, text string) (string, *domain.PodcastScript, error)
	Delete(ctx context.Context, docID string) error
}

type DocumentHandler struct {
	svc DocumentService
}

func NewDocumentHandler(svc DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

type IngestRequest struct {
	Text string `json:"text"`
}

type IngestResponse struct {
	DocID   string `json:"doc_id"`
	Indexed bool   `json:"indexed"`
}

type PodcastRequest struct {
	TopK int `json:"top_k"`
}

type PodcastFromTextResponse struct {
	DocID  string                `json:"doc_id"`
	Script *domain.PodcastScript `json:"script"`
}

// Ingest indexes a raw text document and returns its assigned id.
func (h *DocumentHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		api.Error(w, http.StatusBadRequest, "text is required")
		return
	}

	docID, err := h.svc.Ingest(r.Context(), req.Text)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, IngestResponse{DocID: docID, Indexed: true})
}

// IngestFile indexes an uploaded text file. PDF extraction is handled by an
// upstream collaborator; only text uploads are accepted here.
func (h *DocumentHandler) IngestFile(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		api.Error(w, http.StatusUnsupportedMediaType, "pdf uploads are not supported, submit extracted text")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read file")
		return
	}

	text := string(data)
	if strings.TrimSpace(text) == "" {
		api.Error(w, http.StatusBadRequest, "file is empty")
		return
	}

	docID, err := h.svc.Ingest(r.Context(), text)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, IngestResponse{DocID: docID, Indexed: true})
}

// Analyze returns the structured analysis of an indexed document.
func (h *DocumentHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "id")
	if docID == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	topK := 0
	if raw := r.URL.Query().Get("top_k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			api.Error(w, http.StatusBadRequest, "top_k must be a positive integer")
			return
		}
		topK = parsed
	}

	analysis, err := h.svc.Analyze(r.Context(), docID, topK)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, analysis)
}

// Delete removes a document's indexed chunks and archived text.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "id")
	if docID == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.Delete(r.Context(), docID); err != nil {
		api.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Podcast synthesizes a script for an indexed document.
func (h *DocumentHandler) Podcast(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "id")
	if docID == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req PodcastRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.TopK < 0 {
		api.Error(w, http.StatusBadRequest, "top_k must be a positive integer")
		return
	}

	script, err := h.svc.Podcast(r.Context(), docID, req.TopK)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, script)
}

// PodcastFromText runs the full pipeline on raw text in one call.
func (h *DocumentHandler) PodcastFromText(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		api.Error(w, http.StatusBadRequest, "text is required")
		return
	}

	docID, script, err := h.svc.PodcastFromText(r.Context(), req.Text)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, PodcastFromTextResponse{DocID: docID, Script: script})
}
