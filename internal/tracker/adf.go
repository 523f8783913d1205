package tracker

import "strings"

// Jira Cloud stores issue descriptions as Atlassian Document Format:
// a doc node containing paragraph nodes, which contain text and
// hardBreak leaves. We only ever read and write this one shape.

type docNode struct {
	Type    string    `json:"type"`
	Version int       `json:"version,omitempty"`
	Text    string    `json:"text,omitempty"`
	Content []docNode `json:"content,omitempty"`
}

// flattenDoc collapses an ADF document into plain text: text nodes
// are concatenated, hardBreak becomes a newline, and each paragraph
// contributes a trailing newline before the final trim. Nodes other
// than paragraph/text/hardBreak are ignored.
func flattenDoc(doc *docNode) string {
	if doc == nil {
		return ""
	}
	var b strings.Builder
	for _, block := range doc.Content {
		if block.Type != "paragraph" {
			continue
		}
		for _, leaf := range block.Content {
			switch leaf.Type {
			case "text":
				b.WriteString(leaf.Text)
			case "hardBreak":
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// textDoc wraps plain text in a single-paragraph ADF document, the
// shape Jira expects for description fields on create and update.
func textDoc(text string) *docNode {
	return &docNode{
		Type:    "doc",
		Version: 1,
		Content: []docNode{
			{
				Type: "paragraph",
				Content: []docNode{
					{Type: "text", Text: text},
				},
			},
		},
	}
}
