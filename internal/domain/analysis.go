package domain

import (
	"fmt"
	"strings"
)

// Severity levels shared by red flags and user actions.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Example is a cited snippet supporting a theme. ChunkIndex starts unset
// and is filled in by best-effort provenance back-mapping after extraction.
type Example struct {
	TextSnippet string `json:"text_snippet"`
	ChunkIndex  *int   `json:"chunk_index,omitempty"`
}

// Theme is one thematic finding with balanced positives and negatives.
type Theme struct {
	Name      string    `json:"name"`
	Positives []string  `json:"positives"`
	Negatives []string  `json:"negatives"`
	Examples  []Example `json:"examples"`
}

// RedFlag is a problematic clause with its reason and severity.
type RedFlag struct {
	Clause   string `json:"clause"`
	Reason   string `json:"reason"`
	Severity string `json:"severity"`
}

// UserAction is a recommended step for the document's reader.
type UserAction struct {
	Action      string `json:"action"`
	WhereClause string `json:"where_clause"`
	Urgency     string `json:"urgency"`
}

// AnalysisResult is the fixed-schema structured analysis extracted from a
// document's retrieved chunks.
type AnalysisResult struct {
	Summary     string       `json:"summary"`
	Themes      []Theme      `json:"themes"`
	TopRedFlags []RedFlag    `json:"top_red_flags"`
	UserActions []UserAction `json:"user_actions"`
}

func validLevel(level string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return normalized, true
	}
	return normalized, false
}

// Validate checks the result against the analysis schema and normalizes
// severity and urgency levels to lower case. A nil slice means the field
// was absent from the model response, which is a schema violation; an empty
// slice is acceptable.
func (a *AnalysisResult) Validate() error {
	if strings.TrimSpace(a.Summary) == "" {
		return NewSchemaValidationError("summary is required")
	}
	if a.Themes == nil {
		return NewSchemaValidationError("themes is required")
	}
	if a.TopRedFlags == nil {
		return NewSchemaValidationError("top_red_flags is required")
	}
	if a.UserActions == nil {
		return NewSchemaValidationError("user_actions is required")
	}

	for i, theme := range a.Themes {
		if strings.TrimSpace(theme.Name) == "" {
			return NewSchemaValidationError(fmt.Sprintf("themes[%d].name is required", i))
		}
	}

	for i := range a.TopRedFlags {
		normalized, ok := validLevel(a.TopRedFlags[i].Severity)
		if !ok {
			return NewSchemaValidationError(fmt.Sprintf("top_red_flags[%d].severity %q is not one of low/medium/high", i, a.TopRedFlags[i].Severity))
		}
		a.TopRedFlags[i].Severity = normalized
	}

	for i := range a.UserActions {
		normalized, ok := validLevel(a.UserActions[i].Urgency)
		if !ok {
			return NewSchemaValidationError(fmt.Sprintf("user_actions[%d].urgency %q is not one of low/medium/high", i, a.UserActions[i].Urgency))
		}
		a.UserActions[i].Urgency = normalized
	}

	return nil
}
