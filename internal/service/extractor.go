package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloo-solutions/clausecast/internal/domain"
)

// DefaultMaxAnalysisChunks caps how many retrieved chunks are folded into
// one analysis prompt.
const DefaultMaxAnalysisChunks = 8

const chunkSeparator = "\n---\n"

const analysisPromptTemplate = `Analyze these document chunks and return ONLY a valid JSON object (no markdown, no extra text).

DOCUMENT CHUNKS:
%s

Return this exact JSON structure:
{
"summary": "brief 2-3 sentence summary of the document",
"themes": [
    {
    "name": "theme name",
    "positives": ["positive aspect 1", "positive aspect 2"],
    "negatives": ["negative aspect 1", "negative aspect 2"],
    "examples": [{"text_snippet": "actual quote from document"}]
    },
    {
    "name": "another theme",
    "positives": ["positive1", "positive2"],
    "negatives": ["negative1", "negative2"],
    "examples": [{"text_snippet": "quote"}]
    },
    {
    "name": "third theme",
    "positives": ["positive1", "positive2"],
    "negatives": ["negative1", "negative2"],
    "examples": [{"text_snippet": "quote"}]
    }
],
"top_red_flags": [
    {"clause": "problematic clause", "reason": "why concerning", "severity": "high"},
    {"clause": "issue 2", "reason": "reason", "severity": "medium"},
    {"clause": "issue 3", "reason": "reason", "severity": "high"}
],
"user_actions": [
    {"action": "what user should do", "where_clause": "document section", "urgency": "high"},
    {"action": "action 2", "where_clause": "section", "urgency": "medium"},
    {"action": "action 3", "where_clause": "section", "urgency": "medium"}
]
}

Start JSON immediately with { - no other text.`

// GenerationClient defines the interface for free-text model generation
type GenerationClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AnalysisExtractor coerces a model's free-text reply into the fixed
// analysis schema. It performs no retries; retry policy belongs to callers.
type AnalysisExtractor struct {
	llm       GenerationClient
	maxChunks int
}

func NewAnalysisExtractor(llm GenerationClient, maxChunks int) *AnalysisExtractor {
	if maxChunks <= 0 {
		maxChunks = DefaultMaxAnalysisChunks
	}
	return &AnalysisExtractor{llm: llm, maxChunks: maxChunks}
}

// Extract issues one generation request over at most maxChunks chunks and
// parses the response into an AnalysisResult.
func (e *AnalysisExtractor) Extract(ctx context.Context, chunks []string) (*domain.AnalysisResult, error) {
	limited := chunks
	if len(limited) > e.maxChunks {
		limited = limited[:e.maxChunks]
	}
	prompt := fmt.Sprintf(analysisPromptTemplate, strings.Join(limited, chunkSeparator))

	raw, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "analysis generation failed", err)
	}

	return ParseAnalysisResponse(raw)
}

// ParseAnalysisResponse extracts a JSON object from a possibly messy model
// response. It tolerates fenced code blocks (with or without a language
// tag) and prose before or after the object: the text between the first '{'
// and the last '}' is what gets parsed.
func ParseAnalysisResponse(raw string) (*domain.AnalysisResult, error) {
	text := strings.TrimSpace(raw)
	text = stripCodeFence(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, domain.NewMalformedOutputError(text, fmt.Errorf("no JSON object boundaries found"))
	}
	text = text[start : end+1]

	var result domain.AnalysisResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, domain.NewMalformedOutputError(text, err)
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}

	return &result, nil
}

func stripCodeFence(text string) string {
	marker := "```json"
	idx := strings.Index(text, marker)
	if idx == -1 {
		marker = "```"
		idx = strings.Index(text, marker)
	}
	if idx == -1 {
		return text
	}

	inner := text[idx+len(marker):]
	if closing := strings.Index(inner, "```"); closing != -1 {
		inner = inner[:closing]
	}
	return strings.TrimSpace(inner)
}
