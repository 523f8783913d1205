package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hS71Ru/Jira-AI-Analyzer/internal/types"
)

func stubAnalyzer(complete completeFunc) *Analyzer {
	return &Analyzer{
		model:    "test-model",
		log:      slog.Default(),
		complete: complete,
	}
}

func testIssue(key, summary string) types.Issue {
	return types.Issue{Key: key, Summary: summary, Status: "To Do"}
}

func TestAnalyzeIssue_ParsesModelJSON(t *testing.T) {
	a := stubAnalyzer(func(ctx context.Context, prompt string) (string, error) {
		return `Here is JSON: {"suggestions":["Add AC"],"priority_recommendation":"High","confidence_score":0.9}`, nil
	})

	result := a.AnalyzeIssue(context.Background(), testIssue("PROJ-1", "Fix login"), nil)

	assert.Equal(t, "PROJ-1", result.IssueKey)
	assert.Equal(t, "Fix login", result.Summary)
	assert.Equal(t, []string{"Add AC"}, result.Suggestions)
	require.NotNil(t, result.PriorityRecommendation)
	assert.Equal(t, "High", *result.PriorityRecommendation)
	require.NotNil(t, result.ConfidenceScore)
	assert.Equal(t, 0.9, *result.ConfidenceScore)
}

func TestAnalyzeIssue_TextReplyDegrades(t *testing.T) {
	raw := "The ticket is missing steps to reproduce and has no acceptance criteria."
	a := stubAnalyzer(func(ctx context.Context, prompt string) (string, error) {
		return raw, nil
	})

	result := a.AnalyzeIssue(context.Background(), testIssue("PROJ-2", "Vague bug"), nil)

	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, raw, result.Suggestions[0], "raw reply becomes the single suggestion")
	require.NotNil(t, result.PriorityRecommendation)
	assert.Equal(t, "Medium", *result.PriorityRecommendation)
	require.NotNil(t, result.ConfidenceScore)
	assert.Equal(t, 0.5, *result.ConfidenceScore)
}

func TestAnalyzeIssue_ModelFailureDegrades(t *testing.T) {
	a := stubAnalyzer(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("rate limited")
	})

	result := a.AnalyzeIssue(context.Background(), testIssue("PROJ-3", "Slow page"), nil)

	require.Len(t, result.Suggestions, 1)
	assert.Contains(t, result.Suggestions[0], "rate limited")
	require.NotNil(t, result.PriorityRecommendation)
	assert.Equal(t, "Medium", *result.PriorityRecommendation)
	require.NotNil(t, result.ConfidenceScore)
	assert.Equal(t, 0.0, *result.ConfidenceScore)
}

func TestAnalyzeIssue_NilSuggestionsNormalized(t *testing.T) {
	a := stubAnalyzer(func(ctx context.Context, prompt string) (string, error) {
		return `{"priority_recommendation": "Low"}`, nil
	})

	result := a.AnalyzeIssue(context.Background(), testIssue("PROJ-4", "x"), nil)
	assert.NotNil(t, result.Suggestions)
	assert.Empty(t, result.Suggestions)
}

func TestAnalyzeIssues_OneResultPerIssueInOrder(t *testing.T) {
	// Every other call fails; the batch must still produce a result
	// per issue, in input order.
	var calls int
	a := stubAnalyzer(func(ctx context.Context, prompt string) (string, error) {
		calls++
		if calls%2 == 0 {
			return "", errors.New("intermittent failure")
		}
		return `{"suggestions": ["ok"], "confidence_score": 0.8}`, nil
	})

	issues := []types.Issue{
		testIssue("PROJ-1", "a"),
		testIssue("PROJ-2", "b"),
		testIssue("PROJ-3", "c"),
		testIssue("PROJ-4", "d"),
	}
	results := a.AnalyzeIssues(context.Background(), issues)

	require.Len(t, results, len(issues))
	for i, result := range results {
		assert.Equal(t, issues[i].Key, result.IssueKey)
	}
	assert.Equal(t, len(issues), calls, "analysis is one sequential call per issue")
}

func TestBuildPrompt_ContextBlock(t *testing.T) {
	desc := "Steps:\n1. open page"
	target := types.Issue{
		Key:         "PROJ-1",
		Summary:     "Fix login",
		Description: &desc,
		Status:      "To Do",
		Priority:    types.StrPtr("High"),
	}

	all := []types.Issue{target}
	for i := 2; i <= 30; i++ {
		all = append(all, testIssue(fmt.Sprintf("PROJ-%d", i), fmt.Sprintf("issue %d", i)))
	}

	prompt := buildPrompt(target, all)

	assert.Contains(t, prompt, "Issue Key: PROJ-1")
	assert.Contains(t, prompt, "Description: Steps:\n1. open page")
	assert.Contains(t, prompt, "Priority: High")
	assert.NotContains(t, prompt, "- PROJ-1:", "target issue is excluded from context")

	// Context is capped at 20 siblings, taken in input order.
	assert.Contains(t, prompt, "- PROJ-2: issue 2")
	assert.Contains(t, prompt, "- PROJ-21: issue 21")
	assert.NotContains(t, prompt, "- PROJ-22:")
	assert.Equal(t, maxContextIssues, strings.Count(prompt, "\n- PROJ-"))
}

func TestBuildPrompt_Defaults(t *testing.T) {
	prompt := buildPrompt(testIssue("PROJ-9", "bare"), nil)

	assert.Contains(t, prompt, "Description: No description provided")
	assert.Contains(t, prompt, "Priority: Not set")
}
