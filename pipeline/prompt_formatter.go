package pipeline

import (
	"fmt"
	"strings"
)

// maxPromptMessageChars caps a single message inside the formatted prompt.
// The sampler budgets on aggregates, so one pathologically long message
// could otherwise slip past it.
const maxPromptMessageChars = 2000

// truncationMarker is appended to message content cut at the cap.
const truncationMarker = "... [truncated]"

// FormatForPrompt renders sampled conversations into a single text block
// for an LLM prompt. Conversations appear in input order (the sampler
// already ordered them); empty input yields exactly "" so callers can skip
// the LLM call entirely.
func FormatForPrompt(convs []ParsedConversation) string {
	if len(convs) == 0 {
		return ""
	}

	blocks := make([]string, 0, len(convs))
	for _, c := range convs {
		var b strings.Builder
		fmt.Fprintf(&b, "=== Conversation: %q (%s) ===", c.Title, formatDate(c.CreatedAt))
		for _, m := range c.Messages {
			content := m.Content
			if len(content) > maxPromptMessageChars {
				content = content[:maxPromptMessageChars] + truncationMarker
			}
			b.WriteString("\n\n")
			b.WriteString(capitalizeRole(m.Role))
			b.WriteString(": ")
			b.WriteString(content)
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

func capitalizeRole(role string) string {
	if role == "" {
		return role
	}
	return strings.ToUpper(role[:1]) + role[1:]
}
