package pipeline

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"
)

// testConversation builds a conversation with alternating user/assistant
// messages of the given per-message length.
func testConversation(id string, msgCount, msgLen int, createdAt time.Time) ParsedConversation {
	msgs := make([]ParsedMessage, 0, msgCount)
	for i := 0; i < msgCount; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		msgs = append(msgs, ParsedMessage{
			ID:      fmt.Sprintf("%s-m%d", id, i),
			Role:    role,
			Content: strings.Repeat("x", msgLen),
		})
	}
	return ParsedConversation{
		ID:        id,
		Title:     id,
		CreatedAt: createdAt,
		Messages:  msgs,
	}
}

func TestSampleConversations_RespectsHardCap(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var convs []ParsedConversation
	for i := 0; i < 100; i++ {
		convs = append(convs, testConversation(fmt.Sprintf("c%03d", i), 6, 10, base.AddDate(0, 0, i)))
	}

	got := SampleConversations(convs, SampleOptions{HardCap: 10})
	if len(got) != 10 {
		t.Fatalf("len=%d, want hard cap 10", len(got))
	}
}

func TestSampleConversations_GuaranteesMinimumOverBudget(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var convs []ParsedConversation
	for i := 0; i < 8; i++ {
		// Each conversation alone dwarfs the budget.
		convs = append(convs, testConversation(fmt.Sprintf("big%d", i), 6, 5000, base.AddDate(0, 0, i)))
	}

	got := SampleConversations(convs, SampleOptions{TargetTokenBudget: 100, MinSelected: 5})
	if len(got) < 5 {
		t.Fatalf("len=%d, want at least MinSelected=5 even over budget", len(got))
	}
}

func TestSampleConversations_ShortConversationFallback(t *testing.T) {
	t.Parallel()

	// All below the 4-message signal filter: the original list (capped)
	// must come back rather than nothing.
	var convs []ParsedConversation
	for i := 0; i < 3; i++ {
		convs = append(convs, testConversation(fmt.Sprintf("short%d", i), 3, 20, time.Time{}))
	}

	got := SampleConversations(convs, SampleOptions{})
	if len(got) != 3 {
		t.Fatalf("len=%d, want all 3 short conversations via fallback", len(got))
	}
}

func TestSampleConversations_ShortFallbackStillCapped(t *testing.T) {
	t.Parallel()

	var convs []ParsedConversation
	for i := 0; i < 20; i++ {
		convs = append(convs, testConversation(fmt.Sprintf("short%02d", i), 2, 20, time.Time{}))
	}

	got := SampleConversations(convs, SampleOptions{HardCap: 7})
	if len(got) != 7 {
		t.Fatalf("len=%d, want fallback capped at 7", len(got))
	}
}

func TestSampleConversations_RicherConversationWins(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	thin := testConversation("thin", 4, 100, created)
	rich := testConversation("rich", 12, 100, created)

	// Budget fits only one; MinSelected=1 so the greedy pass stops after
	// the first pick.
	got := SampleConversations([]ParsedConversation{thin, rich}, SampleOptions{
		TargetTokenBudget: (12*100 + 100) / charsPerToken,
		MinSelected:       1,
	})
	if len(got) == 0 {
		t.Fatalf("empty sample")
	}
	if got[0].ID != "rich" {
		t.Fatalf("got[0].ID=%q, want the richer conversation first", got[0].ID)
	}
}

func TestSampleConversations_RecencyBreaksTies(t *testing.T) {
	t.Parallel()

	old := testConversation("old", 6, 50, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
	recent := testConversation("recent", 6, 50, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	got := SampleConversations([]ParsedConversation{old, recent}, SampleOptions{MinSelected: 1})
	if got[0].ID != "recent" {
		t.Fatalf("got[0].ID=%q, want the more recent conversation first", got[0].ID)
	}
}

func TestSampleConversations_Deterministic(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var convs []ParsedConversation
	for i := 0; i < 40; i++ {
		convs = append(convs, testConversation(fmt.Sprintf("c%02d", i), 4+i%6, 30+i, base.AddDate(0, 0, i%10)))
	}

	first := SampleConversations(convs, SampleOptions{})
	second := SampleConversations(convs, SampleOptions{})
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("sampling is not deterministic")
	}
}
