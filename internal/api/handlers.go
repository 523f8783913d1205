// Package api exposes the tracker and analyzer over a small JSON
// HTTP surface. Handlers validate query constraints, delegate to the
// injected clients, and map domain errors to status codes; no
// business logic lives here.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hS71Ru/Jira-AI-Analyzer/internal/types"
)

const (
	defaultMaxResults = 50

	// analyzeBatchSize is the fixed fetch size backing both analyze
	// routes: analysis always runs against a fresh batch of up to 100
	// issues, and "not found" is relative to that batch.
	analyzeBatchSize = 100
)

// Tracker is the issue-tracker surface the handlers depend on.
type Tracker interface {
	ListProjects(ctx context.Context) []types.Project
	SearchIssues(ctx context.Context, maxResults int, pageToken string) (*types.SearchPage, error)
	GetIssue(ctx context.Context, key string) (*types.Issue, error)
	CreateIssue(ctx context.Context, req *types.IssueCreateRequest) (*types.Issue, error)
	UpdateIssue(ctx context.Context, key string, patch *types.IssueUpdateRequest) (*types.Issue, *types.UpdateOutcome, error)
}

// Analyzer is the AI analysis surface the handlers depend on.
type Analyzer interface {
	AnalyzeIssue(ctx context.Context, issue types.Issue, allIssues []types.Issue) types.AnalysisResult
	AnalyzeIssues(ctx context.Context, issues []types.Issue) []types.AnalysisResult
}

// Handlers holds the injected dependencies for all routes.
type Handlers struct {
	Tracker  Tracker
	Analyzer Analyzer
	Log      *slog.Logger
}

func (h *Handlers) logger() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}

// GET /
func (h *Handlers) banner(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Jira AI Analyzer API",
		"status":  "running",
	})
}

// GET /api/health
func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// GET /api/projects
func (h *Handlers) listProjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Tracker.ListProjects(r.Context()))
}

// GET /api/issues?max_results=1..100&next_page_token=
func (h *Handlers) listIssues(w http.ResponseWriter, r *http.Request) {
	maxResults := defaultMaxResults
	if raw := r.URL.Query().Get("max_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "max_results must be an integer between 1 and 100")
			return
		}
		maxResults = n
	}

	page, err := h.Tracker.SearchIssues(r.Context(), maxResults, r.URL.Query().Get("next_page_token"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GET /api/issues/{key}
//
// Any failure here maps to 404: the caller asked for one specific
// issue and did not get it, whether because the tracker reported
// absence or because the fetch itself failed.
func (h *Handlers) getIssue(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	issue, err := h.Tracker.GetIssue(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// POST /api/issues
func (h *Handlers) createIssue(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[types.IssueCreateRequest](w, r)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	issue, err := h.Tracker.CreateIssue(r.Context(), &req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// PUT /api/issues/{key}
func (h *Handlers) updateIssue(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	patch, ok := readJSON[types.IssueUpdateRequest](w, r)
	if !ok {
		return
	}

	issue, outcome, err := h.Tracker.UpdateIssue(r.Context(), key, &patch)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if outcome.TransitionSkipped != "" {
		h.logger().Warn("status change skipped during update",
			"key", key, "reason", outcome.TransitionSkipped)
	}
	writeJSON(w, http.StatusOK, issue)
}

// POST /api/analyze
func (h *Handlers) analyzeBatch(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[types.AnalysisRequest](w, r)
	if !ok {
		return
	}

	all, ok := h.fetchAnalysisBatch(w, r)
	if !ok {
		return
	}

	toAnalyze := all
	if len(req.IssueKeys) > 0 {
		toAnalyze = make([]types.Issue, 0, len(req.IssueKeys))
		for _, issue := range all {
			if slices.Contains(req.IssueKeys, issue.Key) {
				toAnalyze = append(toAnalyze, issue)
			}
		}
	}

	writeJSON(w, http.StatusOK, h.Analyzer.AnalyzeIssues(r.Context(), toAnalyze))
}

// POST /api/analyze/{key}
func (h *Handlers) analyzeOne(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	all, ok := h.fetchAnalysisBatch(w, r)
	if !ok {
		return
	}

	for _, issue := range all {
		if issue.Key == key {
			writeJSON(w, http.StatusOK, h.Analyzer.AnalyzeIssue(r.Context(), issue, all))
			return
		}
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("Issue %s not found", key))
}

// fetchAnalysisBatch fetches the fresh issue batch both analyze
// routes operate on. Writes the error response and returns ok=false
// when the batch cannot be fetched or is empty.
func (h *Handlers) fetchAnalysisBatch(w http.ResponseWriter, r *http.Request) ([]types.Issue, bool) {
	page, err := h.Tracker.SearchIssues(r.Context(), analyzeBatchSize, "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	if len(page.Issues) == 0 {
		writeError(w, http.StatusNotFound, "No issues found")
		return nil, false
	}
	return page.Issues, true
}
