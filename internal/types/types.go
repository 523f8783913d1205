// Package types defines the value records shared between the tracker
// client, the AI analyzer, and the HTTP API. Everything here is an
// immutable snapshot built for a single request; the remote tracker
// remains the source of truth and nothing is persisted locally.
package types

import (
	"fmt"
	"strings"
)

// Issue is a snapshot of a single tracker issue. Key is the only
// stable identifier; every other field reflects tracker state at
// fetch time.
type Issue struct {
	Key         string  `json:"key"`
	Summary     string  `json:"summary"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	Assignee    *string `json:"assignee"`
	Priority    *string `json:"priority"`
	Created     *string `json:"created"`
	Updated     *string `json:"updated"`
}

// IssueCreateRequest is the client-provided payload for creating an
// issue. It is never stored; the created issue is re-fetched from the
// tracker so the returned snapshot matches tracker state.
type IssueCreateRequest struct {
	ProjectKey  string `json:"project_key"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	IssueType   string `json:"issue_type"`
}

// Validate checks required fields and applies the default issue type.
func (r *IssueCreateRequest) Validate() error {
	if strings.TrimSpace(r.ProjectKey) == "" {
		return fmt.Errorf("project_key is required")
	}
	if strings.TrimSpace(r.Summary) == "" {
		return fmt.Errorf("summary is required")
	}
	if r.IssueType == "" {
		r.IssueType = "Task"
	}
	return nil
}

// IssueUpdateRequest is a sparse patch. Absent fields must not
// overwrite existing tracker state.
type IssueUpdateRequest struct {
	Summary     *string `json:"summary,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// Empty reports whether the patch carries no changes at all.
func (r *IssueUpdateRequest) Empty() bool {
	return r.Summary == nil && r.Description == nil && r.Status == nil
}

// UpdateOutcome records the two phases of an issue update: the field
// patch and the status transition are separate tracker calls with
// independent failure modes. A missing transition is skipped rather
// than failing the whole update, and callers can see that here.
type UpdateOutcome struct {
	FieldsApplied     bool   // summary/description patch was sent and accepted
	TransitionApplied bool   // a matching transition was found and executed
	TransitionSkipped string // non-empty when a requested status change was skipped
}

// Project identifies one tracker project.
type Project struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	ID   string `json:"id"`
}

// SearchPage is one page of a cursor-paginated issue search. A nil
// NextPageToken signals the end of the stream.
type SearchPage struct {
	Issues        []Issue `json:"issues"`
	Total         int     `json:"total"`
	NextPageToken *string `json:"next_page_token"`
}

// AnalysisResult is the AI's assessment of one issue. Analysis always
// produces a value: failures degrade into a low-confidence result
// instead of an error (see the ai package).
type AnalysisResult struct {
	IssueKey               string   `json:"issue_key"`
	Summary                string   `json:"summary"`
	Suggestions            []string `json:"suggestions"`
	PriorityRecommendation *string  `json:"priority_recommendation"`
	ConfidenceScore        *float64 `json:"confidence_score"`
}

// AnalysisRequest optionally restricts a batch analysis to specific
// issue keys. An empty list means "analyze the whole fetched batch".
type AnalysisRequest struct {
	IssueKeys []string `json:"issue_keys,omitempty"`
}

// StrPtr returns a pointer to s. Convenience for building sparse
// patches and optional fields.
func StrPtr(s string) *string { return &s }

// FloatPtr returns a pointer to f.
func FloatPtr(f float64) *float64 { return &f }
