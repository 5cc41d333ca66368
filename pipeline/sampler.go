package pipeline

import "sort"

// SampleOptions controls how many conversations the sampler may select and
// under what budget. Zero values take the defaults.
type SampleOptions struct {
	// TargetTokenBudget is the approximate token budget for the selected
	// set (converted to characters at charsPerToken). Default 50_000.
	TargetTokenBudget int

	// HardCap is the absolute maximum number of conversations returned
	// regardless of remaining budget. Default 50.
	HardCap int

	// MinSelected is the minimum number of conversations returned when
	// that many exist, even if the budget is exceeded. Default 5.
	MinSelected int
}

func (o *SampleOptions) setDefaults() {
	if o.TargetTokenBudget <= 0 {
		o.TargetTokenBudget = 50_000
	}
	if o.HardCap <= 0 {
		o.HardCap = 50
	}
	if o.MinSelected <= 0 {
		o.MinSelected = 5
	}
}

// minSignalMessages is the message count below which a conversation is
// considered too thin to carry personality signal.
const minSignalMessages = 4

// userCharCapPerMessage bounds how much one giant user message can
// contribute to a conversation's richness score.
const userCharCapPerMessage = 2000

type scoredConversation struct {
	conv       ParsedConversation
	score      float64
	totalChars int
}

// SampleConversations selects a bounded, information-dense subset of
// conversations under a token budget. Selection is deterministic: the same
// input and options always produce the same output, in score order.
//
// Conversations with fewer than four messages are filtered out first; if
// that empties the set, the original list capped at HardCap is returned so
// a user with exclusively short conversations still gets output.
func SampleConversations(convs []ParsedConversation, opts SampleOptions) []ParsedConversation {
	opts.setDefaults()
	if len(convs) == 0 {
		return nil
	}

	filtered := make([]ParsedConversation, 0, len(convs))
	for _, c := range convs {
		if len(c.Messages) >= minSignalMessages {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		n := len(convs)
		if n > opts.HardCap {
			n = opts.HardCap
		}
		return append([]ParsedConversation(nil), convs[:n]...)
	}

	scored := scoreConversations(filtered)
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	charBudget := opts.TargetTokenBudget * charsPerToken
	running := 0
	selected := make([]ParsedConversation, 0, opts.HardCap)
	for _, sc := range scored {
		if len(selected) >= opts.HardCap {
			break
		}
		if running+sc.totalChars > charBudget && len(selected) >= opts.MinSelected {
			break
		}
		selected = append(selected, sc.conv)
		running += sc.totalChars
	}
	return selected
}

// scoreConversations ranks conversations by how much personality signal
// they likely contain. Each factor is monotonic: more messages, more
// (capped) user text, better user/assistant balance, and more recent
// creation all raise the score. Recency is normalized against the min/max
// creation time within the input set, never the wall clock, so scoring is
// reproducible.
func scoreConversations(convs []ParsedConversation) []scoredConversation {
	var minCreated, maxCreated int64
	first := true
	for _, c := range convs {
		if c.CreatedAt.IsZero() {
			continue
		}
		u := c.CreatedAt.Unix()
		if first {
			minCreated, maxCreated = u, u
			first = false
			continue
		}
		if u < minCreated {
			minCreated = u
		}
		if u > maxCreated {
			maxCreated = u
		}
	}
	createdSpan := float64(maxCreated - minCreated)

	scored := make([]scoredConversation, 0, len(convs))
	for _, c := range convs {
		var userChars, totalChars int
		var userCount, assistantCount int
		for _, m := range c.Messages {
			totalChars += len(m.Content)
			switch m.Role {
			case RoleUser:
				userCount++
				n := len(m.Content)
				if n > userCharCapPerMessage {
					n = userCharCapPerMessage
				}
				userChars += n
			case RoleAssistant:
				assistantCount++
			}
		}

		score := float64(len(c.Messages)) * 2.0
		score += float64(userChars) / 100.0

		// Reward genuinely two-sided exchanges over monologues.
		if userCount > 0 && assistantCount > 0 {
			lo, hi := userCount, assistantCount
			if lo > hi {
				lo, hi = hi, lo
			}
			score += 20.0 * float64(lo) / float64(hi)
		}

		if !c.CreatedAt.IsZero() && createdSpan > 0 {
			score += 10.0 * float64(c.CreatedAt.Unix()-minCreated) / createdSpan
		}

		scored = append(scored, scoredConversation{
			conv:       c,
			score:      score,
			totalChars: totalChars,
		})
	}
	return scored
}
