// Package ai produces quality, duplicate, and priority suggestions
// for tracker issues by delegating to a chat-completion model. The
// package never returns an error to callers: every failure mode
// degrades into a low-confidence AnalysisResult instead.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hS71Ru/Jira-AI-Analyzer/internal/types"
)

// DefaultModel is used when no model override is configured.
const DefaultModel = "claude-sonnet-4-5-20250929"

const (
	// maxContextIssues bounds the sibling-issue block in the prompt.
	// Naive truncation in input order, no relevance ranking.
	maxContextIssues = 20

	maxTokens   = 1024
	temperature = 0.7

	systemPrompt = "You are an expert project manager and software analyst. " +
		"Analyze Jira tickets and provide actionable insights."
)

// completeFunc is the transport seam: one synchronous chat completion
// per call. Tests install a stub; production wiring goes through the
// Anthropic client.
type completeFunc func(ctx context.Context, prompt string) (string, error)

// Analyzer analyzes issues one at a time. It holds no mutable state
// and is safe for concurrent use.
type Analyzer struct {
	model    string
	log      *slog.Logger
	complete completeFunc
}

// Config holds analyzer construction settings.
type Config struct {
	APIKey string // API key for the model endpoint (required)
	Model  string // model override; DefaultModel when empty
	Logger *slog.Logger
}

// NewAnalyzer builds an analyzer backed by the Anthropic Messages API.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai: API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	a := &Analyzer{model: model, log: logger}
	a.complete = func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:       anthropic.Model(a.model),
			MaxTokens:   maxTokens,
			Temperature: anthropic.Float(temperature),
			System: []anthropic.TextBlockParam{
				{Text: systemPrompt},
			},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if err != nil {
			return "", err
		}
		var text strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				text.WriteString(block.Text)
			}
		}
		return text.String(), nil
	}
	return a, nil
}

// AnalyzeIssue analyzes one issue against the rest of the batch. The
// batch supplies duplicate-detection context only; the target itself
// is excluded from it. This never fails: a model-call error yields a
// zero-confidence result and a parse failure yields the raw reply as
// a single suggestion at confidence 0.5.
func (a *Analyzer) AnalyzeIssue(ctx context.Context, issue types.Issue, allIssues []types.Issue) types.AnalysisResult {
	start := time.Now()
	prompt := buildPrompt(issue, allIssues)

	raw, err := a.complete(ctx, prompt)
	if err != nil {
		a.log.Warn("model call failed, returning degraded analysis",
			"key", issue.Key, "error", err)
		return types.AnalysisResult{
			IssueKey:               issue.Key,
			Summary:                issue.Summary,
			Suggestions:            []string{fmt.Sprintf("Error analyzing ticket: %v", err)},
			PriorityRecommendation: types.StrPtr("Medium"),
			ConfidenceScore:        types.FloatPtr(0.0),
		}
	}

	reply, ok := parseReply(raw)
	if !ok {
		a.log.Warn("model reply unparseable, degrading to text suggestion", "key", issue.Key)
		return types.AnalysisResult{
			IssueKey:               issue.Key,
			Summary:                issue.Summary,
			Suggestions:            []string{raw},
			PriorityRecommendation: types.StrPtr("Medium"),
			ConfidenceScore:        types.FloatPtr(0.5),
		}
	}

	suggestions := reply.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}

	a.log.Info("issue analyzed",
		"key", issue.Key, "suggestions", len(suggestions), "duration", time.Since(start))

	return types.AnalysisResult{
		IssueKey:               issue.Key,
		Summary:                issue.Summary,
		Suggestions:            suggestions,
		PriorityRecommendation: reply.PriorityRecommendation,
		ConfidenceScore:        reply.ConfidenceScore,
	}
}

// AnalyzeIssues analyzes each issue in order, strictly sequentially,
// with the full batch as shared context. Always returns exactly one
// result per input issue; per-issue failure isolation is handled
// inside AnalyzeIssue.
func (a *Analyzer) AnalyzeIssues(ctx context.Context, issues []types.Issue) []types.AnalysisResult {
	results := make([]types.AnalysisResult, 0, len(issues))
	for _, issue := range issues {
		results = append(results, a.AnalyzeIssue(ctx, issue, issues))
	}
	return results
}

// buildPrompt assembles the analysis prompt: the target issue's
// fields plus a key/summary line for up to maxContextIssues siblings,
// in whatever order the batch was supplied.
func buildPrompt(issue types.Issue, allIssues []types.Issue) string {
	var siblings strings.Builder
	listed := 0
	for _, other := range allIssues {
		if other.Key == issue.Key {
			continue
		}
		if listed == maxContextIssues {
			break
		}
		fmt.Fprintf(&siblings, "- %s: %s\n", other.Key, other.Summary)
		listed++
	}

	description := "No description provided"
	if issue.Description != nil {
		description = *issue.Description
	}
	priority := "Not set"
	if issue.Priority != nil {
		priority = *issue.Priority
	}

	return fmt.Sprintf(`Analyze the following Jira ticket and provide insights:

Issue Key: %s
Summary: %s
Description: %s
Status: %s
Priority: %s

Other tickets in the system:
%s
Please provide:
1. Potential duplicate tickets (check if similar issues exist)
2. Quality assessment (check for missing information like acceptance criteria, steps to reproduce, etc.)
3. Suggested next steps or improvements
4. Priority recommendation (High/Medium/Low) based on the description

Format your response as JSON with the following structure:
{
    "suggestions": ["suggestion1", "suggestion2", ...],
    "priority_recommendation": "High/Medium/Low",
    "confidence_score": 0.0-1.0
}

Be specific and actionable in your suggestions.`,
		issue.Key, issue.Summary, description, issue.Status, priority, siblings.String())
}
