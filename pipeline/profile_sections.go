package pipeline

import (
	"fmt"
	"sort"
	"strings"
)

// placeholderValue is the sentinel the model uses for "insufficient
// evidence". It must never survive into rendered output.
const placeholderValue = "not enough data"

// Section is the generic form of one profile section: a flat object of
// string and string-array fields, as decoded from model JSON.
type Section map[string]any

// CleanSection strips placeholder and empty values from a section. String
// fields that are empty, whitespace-only, or case-insensitively equal to
// the placeholder are dropped; array fields are filtered the same way and
// dropped entirely when nothing survives; other value types pass through
// unchanged. Returns nil when no keys survive.
func CleanSection(raw Section) Section {
	if raw == nil {
		return nil
	}
	out := make(Section, len(raw))
	for key, val := range raw {
		switch v := val.(type) {
		case nil:
			// JSON null: nothing to keep.
		case string:
			if isUsableValue(v) {
				out[key] = v
			}
		case []any:
			kept := filterUsableStrings(v)
			if len(kept) > 0 {
				out[key] = kept
			}
		case []string:
			var kept []any
			for _, s := range v {
				if isUsableValue(s) {
					kept = append(kept, s)
				}
			}
			if len(kept) > 0 {
				out[key] = kept
			}
		default:
			out[key] = val
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// FormatSection renders one section as markdown: a `## heading` line, then
// one line per key in alphabetical order (snake_case keys shown as Title
// Case), string fields as `**Label:** value` and array fields as a label
// line followed by a bulleted list. Defensive: the placeholder/empty
// filter is re-applied even when CleanSection already ran, so this is safe
// to call standalone. Returns "" for nil/empty input or when every field
// filters away — a bare heading is never emitted.
func FormatSection(heading string, data Section) string {
	if len(data) == 0 {
		return ""
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lines []string
	for _, key := range keys {
		label := titleCaseKey(key)
		switch v := data[key].(type) {
		case string:
			if isUsableValue(v) {
				lines = append(lines, fmt.Sprintf("**%s:** %s", label, strings.TrimSpace(v)))
			}
		case []any:
			kept := filterUsableStrings(v)
			if len(kept) == 0 {
				continue
			}
			var b strings.Builder
			fmt.Fprintf(&b, "**%s:**", label)
			for _, item := range kept {
				fmt.Fprintf(&b, "\n- %s", strings.TrimSpace(item.(string)))
			}
			lines = append(lines, b.String())
		case []string:
			items := make([]any, 0, len(v))
			for _, s := range v {
				items = append(items, s)
			}
			kept := filterUsableStrings(items)
			if len(kept) == 0 {
				continue
			}
			var b strings.Builder
			fmt.Fprintf(&b, "**%s:**", label)
			for _, item := range kept {
				fmt.Fprintf(&b, "\n- %s", strings.TrimSpace(item.(string)))
			}
			lines = append(lines, b.String())
		}
	}
	if len(lines) == 0 {
		return ""
	}

	return "## " + heading + "\n" + strings.Join(lines, "\n")
}

// RenderProfileText builds the flat profile rendering by concatenating the
// five sections in fixed order, cleaning each first and omitting sections
// that end up empty. Output is byte-reproducible for identical input; a
// second service renders the same text independently and the two must
// agree exactly.
func RenderProfileText(p *Profile) string {
	if p == nil {
		return ""
	}
	var blocks []string
	for _, s := range p.orderedSections() {
		if rendered := FormatSection(s.heading, CleanSection(s.data)); rendered != "" {
			blocks = append(blocks, rendered)
		}
	}
	return strings.Join(blocks, "\n\n")
}

func isUsableValue(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return !strings.EqualFold(s, placeholderValue)
}

func filterUsableStrings(items []any) []any {
	var kept []any
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if isUsableValue(s) {
			kept = append(kept, s)
		}
	}
	return kept
}

// titleCaseKey converts a snake_case field key to its display label
// ("humor_style" -> "Humor Style").
func titleCaseKey(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
