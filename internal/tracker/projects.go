package tracker

import (
	"context"
	"net/http"

	"github.com/hS71Ru/Jira-AI-Analyzer/internal/types"
)

// ListProjects returns every project visible to the account. A fetch
// failure degrades to an empty list with a warning: callers cannot
// distinguish "no projects" from "fetch failed", which matches the
// non-fatal contract of this endpoint.
func (c *Client) ListProjects(ctx context.Context) []types.Project {
	var raw []struct {
		ID   string `json:"id"`
		Key  string `json:"key"`
		Name string `json:"name"`
	}
	if err := c.do(ctx, "list projects", http.MethodGet, "/rest/api/3/project", nil, &raw); err != nil {
		c.log.Warn("project list failed, returning empty list", "error", err)
		return []types.Project{}
	}

	projects := make([]types.Project, 0, len(raw))
	for _, p := range raw {
		projects = append(projects, types.Project{Key: p.Key, Name: p.Name, ID: p.ID})
	}
	return projects
}

// formatIssue converts a raw tracker issue into the domain snapshot,
// flattening the ADF description and normalizing an empty description
// to absent rather than empty string.
func formatIssue(raw rawIssue) types.Issue {
	issue := types.Issue{
		Key:     raw.Key,
		Summary: raw.Fields.Summary,
		Status:  "Unknown",
		Created: raw.Fields.Created,
		Updated: raw.Fields.Updated,
	}
	if raw.Fields.Status != nil {
		issue.Status = raw.Fields.Status.Name
	}
	if raw.Fields.Assignee != nil {
		issue.Assignee = types.StrPtr(raw.Fields.Assignee.DisplayName)
	}
	if raw.Fields.Priority != nil {
		issue.Priority = types.StrPtr(raw.Fields.Priority.Name)
	}
	if text := flattenDoc(raw.Fields.Description); text != "" {
		issue.Description = types.StrPtr(text)
	}
	return issue
}
