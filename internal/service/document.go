package service

import (
	"context"
	"log"
	"strings"

	"github.com/cloo-solutions/clausecast/internal/domain"
	"github.com/cloo-solutions/clausecast/internal/telemetry"
	"github.com/google/uuid"
)

// defaultTable is the metadata table name documents are indexed under.
const defaultTable = "documents"

// UUIDGenerator generates unique identifiers
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator uses google/uuid
type DefaultUUIDGenerator struct{}

func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// DocumentArchive stores raw document text for later retrieval. Optional;
// the vector index remains the source of truth.
type DocumentArchive interface {
	PutDocument(ctx context.Context, docID string, text string) error
	DeleteDocument(ctx context.Context, docID string) error
}

// DocumentService is the outward-facing composition of the pipeline:
// ingest, analyze, and podcast synthesis.
type DocumentService struct {
	indexer  *IndexerService
	analysis *AnalysisService
	podcast  *PodcastService
	archive  DocumentArchive
	uuidGen  UUIDGenerator
	topK     int
}

func NewDocumentService(indexer *IndexerService, analysis *AnalysisService, podcast *PodcastService, archive DocumentArchive, uuidGen UUIDGenerator, topKDefault int) *DocumentService {
	if uuidGen == nil {
		uuidGen = &DefaultUUIDGenerator{}
	}
	if topKDefault <= 0 {
		topKDefault = 8
	}
	return &DocumentService{
		indexer:  indexer,
		analysis: analysis,
		podcast:  podcast,
		archive:  archive,
		uuidGen:  uuidGen,
		topK:     topKDefault,
	}
}

// TopKDefault returns the configured default retrieval depth.
func (s *DocumentService) TopKDefault() int {
	return s.topK
}

// Ingest assigns the document an id, archives the raw text when an archive
// is configured, and indexes it. Archive failures are logged and do not
// fail ingestion.
func (s *DocumentService) Ingest(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyDocument
	}

	docID := s.uuidGen.NewString()

	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Ingest", telemetry.SpanAttributes{
		DocID:     docID,
		Operation: "ingest",
	})
	defer span.End()

	if s.archive != nil {
		if err := s.archive.PutDocument(ctx, docID, text); err != nil {
			log.Printf("document: archive write for %s failed, continuing: %v", docID, err)
		}
	}

	if err := s.indexer.Index(ctx, docID, defaultTable, text); err != nil {
		return "", err
	}

	return docID, nil
}

// IngestAs indexes text under a caller-chosen document id.
func (s *DocumentService) IngestAs(ctx context.Context, docID, text string) error {
	if strings.TrimSpace(text) == "" {
		return domain.ErrEmptyDocument
	}
	if s.archive != nil {
		if err := s.archive.PutDocument(ctx, docID, text); err != nil {
			log.Printf("document: archive write for %s failed, continuing: %v", docID, err)
		}
	}
	return s.indexer.Index(ctx, docID, defaultTable, text)
}

// Analyze produces the structured analysis for an indexed document.
func (s *DocumentService) Analyze(ctx context.Context, docID string, topK int) (*domain.AnalysisResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Analyze", telemetry.SpanAttributes{
		DocID:     docID,
		Operation: "analyze",
	})
	defer span.End()

	if topK <= 0 {
		topK = s.topK
	}
	return s.analysis.Analyze(ctx, docID, topK)
}

// Podcast analyzes an indexed document and synthesizes its script.
func (s *DocumentService) Podcast(ctx context.Context, docID string, topK int) (*domain.PodcastScript, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Podcast", telemetry.SpanAttributes{
		DocID:     docID,
		Operation: "podcast",
	})
	defer span.End()

	analysis, err := s.Analyze(ctx, docID, topK)
	if err != nil {
		return nil, err
	}
	return s.podcast.Synthesize(ctx, analysis)
}

// Delete removes a document's chunks from the vector index and its raw
// text from the archive. Archive failures are logged and do not fail the
// deletion; the index is the source of truth.
func (s *DocumentService) Delete(ctx context.Context, docID string) error {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Delete", telemetry.SpanAttributes{
		DocID:     docID,
		Operation: "delete",
	})
	defer span.End()

	if err := s.indexer.Remove(ctx, docID); err != nil {
		return err
	}

	if s.archive != nil {
		if err := s.archive.DeleteDocument(ctx, docID); err != nil {
			log.Printf("document: archive delete for %s failed, continuing: %v", docID, err)
		}
	}

	return nil
}

// PodcastFromText runs the whole pipeline on raw text: ingest, analyze,
// synthesize. Returns the assigned document id alongside the script.
func (s *DocumentService) PodcastFromText(ctx context.Context, text string) (string, *domain.PodcastScript, error) {
	docID, err := s.Ingest(ctx, text)
	if err != nil {
		return "", nil, err
	}
	script, err := s.Podcast(ctx, docID, s.topK)
	if err != nil {
		return docID, nil, err
	}
	return docID, script, nil
}
