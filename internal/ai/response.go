package ai

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
)

// Pre-compiled patterns. Models wrap JSON in markdown fences or prose
// often enough that parsing needs fallback strategies.
var (
	codeFenceRegex = regexp.MustCompile(`(?s)` + "`" + `{3}(?:json)?\s*\n?([\s\S]*?)\n?` + "`" + `{3}`)

	trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)

	// Greedy first-to-last brace span. Best effort, not a balanced
	// parser; anything it misses falls through to text degradation.
	objectRegex = regexp.MustCompile(`(?s)\{.*\}`)
)

// analysisReply mirrors the JSON object the model is instructed to
// return. All fields are optional on the wire; absent ones stay nil.
type analysisReply struct {
	Suggestions            []string `json:"suggestions"`
	PriorityRecommendation *string  `json:"priority_recommendation"`
	ConfidenceScore        *float64 `json:"confidence_score"`
}

// parseReply extracts the analysis object from a raw model reply.
//
// Strategy sequence:
//  1. Direct JSON parse
//  2. Strip markdown code fences and retry
//  3. Scrub trailing commas and retry
//  4. Extract the first {...} span from mixed content and retry
//
// ok is false when every strategy fails; the caller then degrades to
// treating the whole reply as a single suggestion.
func parseReply(raw string) (reply analysisReply, ok bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return analysisReply{}, false
	}

	if r, err := tryParse(trimmed); err == nil {
		return r, true
	}

	unfenced := strings.TrimSpace(codeFenceRegex.ReplaceAllString(trimmed, "$1"))
	if unfenced != trimmed {
		if r, err := tryParse(unfenced); err == nil {
			return r, true
		}
	}

	cleaned := trailingCommaRegex.ReplaceAllString(unfenced, "$1")
	if cleaned != unfenced {
		if r, err := tryParse(cleaned); err == nil {
			return r, true
		}
	}

	if span := objectRegex.FindString(cleaned); span != "" {
		if r, err := tryParse(span); err == nil {
			return r, true
		}
	}

	slog.Debug("model reply is not parseable JSON, degrading to text",
		"reply_preview", preview(raw, 100))
	return analysisReply{}, false
}

func tryParse(text string) (analysisReply, error) {
	var r analysisReply
	err := json.Unmarshal([]byte(text), &r)
	return r, err
}

func preview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
