package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeEmbedding        = "EMBEDDING_FAILED"
	ErrCodeIndexWrite       = "INDEX_WRITE_FAILED"
	ErrCodeIndexQuery       = "INDEX_QUERY_FAILED"
	ErrCodeMalformedOutput  = "MALFORMED_MODEL_OUTPUT"
	ErrCodeSchemaValidation = "SCHEMA_VALIDATION_FAILED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidChunkParams = NewDomainError(ErrCodeValidation, "chunk overlap must be smaller than chunk size")
	ErrEmptyDocument      = NewDomainError(ErrCodeValidation, "document text is empty")
	ErrInvalidTopK        = NewDomainError(ErrCodeValidation, "top_k must be positive")
)

// Not found errors
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document has no indexed chunks")
)

// NewEmbeddingError wraps an embedding provider failure.
func NewEmbeddingError(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeEmbedding, "embedding generation failed", err)
}

// NewIndexWriteError wraps a vector index upsert failure.
func NewIndexWriteError(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeIndexWrite, "vector index write failed", err)
}

// NewIndexQueryError wraps a vector index query failure.
func NewIndexQueryError(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeIndexQuery, "vector index query failed", err)
}

// NewMalformedOutputError reports a model response that could not be parsed
// as JSON. The message carries at most the first 200 characters of the
// attempted text for diagnostics.
func NewMalformedOutputError(attempted string, err error) *DomainError {
	excerpt := attempted
	if runes := []rune(excerpt); len(runes) > 200 {
		excerpt = string(runes[:200])
	}
	return NewDomainErrorWithCause(ErrCodeMalformedOutput, fmt.Sprintf("model response is not valid JSON: %q", excerpt), err)
}

// NewSchemaValidationError reports a parsed model response that does not
// match the analysis schema.
func NewSchemaValidationError(reason string) *DomainError {
	return NewDomainError(ErrCodeSchemaValidation, "analysis response failed validation: "+reason)
}
