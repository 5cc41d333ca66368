package pipeline

import (
	"strings"
	"testing"
	"time"
)

func TestFormatForPrompt_EmptyInput(t *testing.T) {
	t.Parallel()

	if got := FormatForPrompt(nil); got != "" {
		t.Fatalf("FormatForPrompt(nil)=%q, want empty string", got)
	}
	if got := FormatForPrompt([]ParsedConversation{}); got != "" {
		t.Fatalf("FormatForPrompt([])=%q, want empty string", got)
	}
}

func TestFormatForPrompt_HeaderAndRoles(t *testing.T) {
	t.Parallel()

	conv := ParsedConversation{
		ID:        "c1",
		Title:     "Trip Planning",
		CreatedAt: time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC),
		Messages: []ParsedMessage{
			{ID: "m1", Role: "user", Content: "where should I go"},
			{ID: "m2", Role: "assistant", Content: "Portugal in spring"},
		},
	}

	got := FormatForPrompt([]ParsedConversation{conv})
	want := "=== Conversation: \"Trip Planning\" (2024-05-17) ===\n\n" +
		"User: where should I go\n\n" +
		"Assistant: Portugal in spring"
	if got != want {
		t.Fatalf("formatted output mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestFormatForPrompt_ConversationSeparation(t *testing.T) {
	t.Parallel()

	mk := func(id, title string) ParsedConversation {
		return ParsedConversation{
			ID:        id,
			Title:     title,
			CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			Messages:  []ParsedMessage{{ID: id + "-m", Role: "user", Content: "hi"}},
		}
	}

	got := FormatForPrompt([]ParsedConversation{mk("a", "First"), mk("b", "Second")})
	if !strings.Contains(got, "hi\n\n=== Conversation: \"Second\"") {
		t.Fatalf("conversations not blank-line separated:\n%s", got)
	}
}

func TestFormatForPrompt_TruncatesLongMessages(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 2500)
	conv := ParsedConversation{
		ID:        "c1",
		Title:     "Long",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Messages:  []ParsedMessage{{ID: "m1", Role: "user", Content: long}},
	}

	got := FormatForPrompt([]ParsedConversation{conv})
	want := "User: " + strings.Repeat("a", 2000) + "... [truncated]"
	if !strings.HasSuffix(got, want) {
		t.Fatalf("expected exactly 2000 chars plus truncation marker")
	}
	if strings.Contains(got, strings.Repeat("a", 2001)) {
		t.Fatalf("more than 2000 content chars survived truncation")
	}
}

func TestFormatForPrompt_ShortMessageUntouched(t *testing.T) {
	t.Parallel()

	exact := strings.Repeat("b", 2000)
	conv := ParsedConversation{
		ID:        "c1",
		Title:     "Edge",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Messages:  []ParsedMessage{{ID: "m1", Role: "user", Content: exact}},
	}

	got := FormatForPrompt([]ParsedConversation{conv})
	if strings.Contains(got, "[truncated]") {
		t.Fatalf("message at exactly the cap must not be truncated")
	}
}
