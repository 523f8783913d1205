package tracker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hS71Ru/Jira-AI-Analyzer/internal/types"
)

// searchJQL fetches every issue visible to the account, newest first.
// Ordering is the tracker's; we never re-sort.
const searchJQL = "project is not EMPTY ORDER BY created DESC"

// issueFields is the fixed field projection requested on every search
// and fetch, to bound payload size.
var issueFields = []string{
	"summary", "description", "status", "assignee", "priority", "created", "updated",
}

// Wire shapes for the Jira Cloud v3 REST API. Only the fields we
// consume are declared.

type searchRequest struct {
	JQL           string   `json:"jql"`
	Fields        []string `json:"fields"`
	FieldsByKeys  bool     `json:"fieldsByKeys"`
	MaxResults    int      `json:"maxResults"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
}

type searchResponse struct {
	Issues        []rawIssue `json:"issues"`
	Total         *int       `json:"total"`
	NextPageToken *string    `json:"nextPageToken"`
}

type rawIssue struct {
	Key    string    `json:"key"`
	Fields rawFields `json:"fields"`
}

type rawFields struct {
	Summary     string      `json:"summary"`
	Description *docNode    `json:"description"`
	Status      *namedValue `json:"status"`
	Assignee    *struct {
		DisplayName string `json:"displayName"`
	} `json:"assignee"`
	Priority *namedValue `json:"priority"`
	Created  *string     `json:"created"`
	Updated  *string     `json:"updated"`
}

type namedValue struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type createResponse struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// SearchIssues fetches one page of issues via the cursor-paginated
// search endpoint. maxResults is clamped to [1,100]; the upstream
// nextPageToken is propagated verbatim, and its absence signals the
// end of the stream.
func (c *Client) SearchIssues(ctx context.Context, maxResults int, pageToken string) (*types.SearchPage, error) {
	if maxResults < 1 {
		maxResults = 1
	}
	if maxResults > 100 {
		maxResults = 100
	}

	req := searchRequest{
		JQL:           searchJQL,
		Fields:        issueFields,
		FieldsByKeys:  true,
		MaxResults:    maxResults,
		NextPageToken: pageToken,
	}

	var resp searchResponse
	if err := c.do(ctx, "search issues", http.MethodPost, "/rest/api/3/search/jql", req, &resp); err != nil {
		return nil, err
	}

	issues := make([]types.Issue, 0, len(resp.Issues))
	for _, raw := range resp.Issues {
		issues = append(issues, formatIssue(raw))
	}

	// The cursor endpoint omits total on some sites; fall back to the
	// page size so callers always get a count.
	total := len(resp.Issues)
	if resp.Total != nil {
		total = *resp.Total
	}

	c.log.Debug("issue search complete",
		"count", len(issues), "total", total, "has_next_page", resp.NextPageToken != nil)

	return &types.SearchPage{
		Issues:        issues,
		Total:         total,
		NextPageToken: resp.NextPageToken,
	}, nil
}

// GetIssue fetches a single issue by key. A tracker 404 surfaces as
// an *Error whose NotFound() is true.
func (c *Client) GetIssue(ctx context.Context, key string) (*types.Issue, error) {
	var raw rawIssue
	path := "/rest/api/3/issue/" + url.PathEscape(key)
	if err := c.do(ctx, fmt.Sprintf("get issue %s", key), http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	issue := formatIssue(raw)
	return &issue, nil
}

// CreateIssue creates an issue and re-fetches it by the returned key,
// so the result reflects actual tracker state rather than the echoed
// payload.
func (c *Client) CreateIssue(ctx context.Context, req *types.IssueCreateRequest) (*types.Issue, error) {
	payload := map[string]any{
		"fields": map[string]any{
			"project":     map[string]string{"key": req.ProjectKey},
			"summary":     req.Summary,
			"description": textDoc(req.Description),
			"issuetype":   map[string]string{"name": req.IssueType},
		},
	}

	var created createResponse
	if err := c.do(ctx, "create issue", http.MethodPost, "/rest/api/3/issue", payload, &created); err != nil {
		return nil, err
	}

	c.log.Info("issue created", "key", created.Key)
	return c.GetIssue(ctx, created.Key)
}

// UpdateIssue applies a sparse patch. Summary/description land in one
// field-update call; a status change goes through the separate
// transition flow and is skipped, not fatal, when no legal transition
// matches. The returned outcome records both phases, and the issue is
// re-fetched so the snapshot reflects post-update tracker state.
func (c *Client) UpdateIssue(ctx context.Context, key string, patch *types.IssueUpdateRequest) (*types.Issue, *types.UpdateOutcome, error) {
	outcome := &types.UpdateOutcome{}

	fields := map[string]any{}
	if patch.Summary != nil {
		fields["summary"] = *patch.Summary
	}
	if patch.Description != nil {
		fields["description"] = textDoc(*patch.Description)
	}

	if len(fields) > 0 {
		path := "/rest/api/3/issue/" + url.PathEscape(key)
		op := fmt.Sprintf("update issue %s", key)
		if err := c.do(ctx, op, http.MethodPut, path, map[string]any{"fields": fields}, nil); err != nil {
			return nil, nil, err
		}
		outcome.FieldsApplied = true
		c.log.Info("issue fields updated", "key", key)
	}

	if patch.Status != nil {
		applied, reason := c.transitionStatus(ctx, key, *patch.Status)
		outcome.TransitionApplied = applied
		outcome.TransitionSkipped = reason
	}

	issue, err := c.GetIssue(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	return issue, outcome, nil
}
