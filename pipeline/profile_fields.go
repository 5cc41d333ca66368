package pipeline

import (
	"context"
	"encoding/json"
)

// ProfileStore is the persistence capability the surrounding system
// provides. The pipeline builds the fields map but never calls Save
// itself; persistence failures are the caller's concern and must not
// block the import.
type ProfileStore interface {
	Save(ctx context.Context, userID string, fields map[string]string) error
}

// ProfileFields flattens a profile into the upsert fields map: the
// rendered profile text plus one JSON blob per section, keyed by section
// name. Returns nil for a nil profile so callers can pass the result
// straight through their placeholder fallback.
func ProfileFields(p *Profile) map[string]string {
	if p == nil {
		return nil
	}
	fields := map[string]string{
		"profile_text": p.ProfileText,
		"generated_at": p.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	sections := map[string]any{
		"communication_style": p.CommunicationStyle,
		"identity":            p.Identity,
		"user_facts":          p.UserFacts,
		"behavioral_rules":    p.BehavioralRules,
		"tool_usage":          p.ToolUsage,
	}
	for key, section := range sections {
		b, err := json.Marshal(section)
		if err != nil {
			continue
		}
		fields[key] = string(b)
	}
	return fields
}
