package pipeline

import (
	"encoding/json"
	"time"
)

// The five profile sections. Field shapes are fixed: the structured-output
// schema is generated from these structs, and their zero values are the
// permissive defaults filled in when the model omits a section.

// CommunicationStyle describes how the user writes and likes to be
// written to.
type CommunicationStyle struct {
	Tone       string `json:"tone"`
	Formality  string `json:"formality"`
	Verbosity  string `json:"verbosity"`
	HumorStyle string `json:"humor_style"`
	EmojiUsage string `json:"emoji_usage"`
}

// Identity captures who the user is: work, interests, values, goals.
type Identity struct {
	Name       string   `json:"name"`
	Profession string   `json:"profession"`
	Interests  []string `json:"interests"`
	Values     []string `json:"values"`
	Goals      []string `json:"goals"`
}

// UserFacts holds concrete, durable facts stated across conversations.
type UserFacts struct {
	Facts         []string `json:"facts"`
	Relationships []string `json:"relationships"`
	Projects      []string `json:"projects"`
	Preferences   []string `json:"preferences"`
}

// BehavioralRules are standing instructions the assistant should honor.
type BehavioralRules struct {
	Rules      []string `json:"rules"`
	Boundaries []string `json:"boundaries"`
}

// ToolUsage describes how the user likes tools and output formatted.
type ToolUsage struct {
	PreferredTools        []string `json:"preferred_tools"`
	FormattingPreferences []string `json:"formatting_preferences"`
	WorkflowNotes         string   `json:"workflow_notes"`
}

// profileResponse is the exact shape requested from the model. Decoding a
// partial response into it leaves omitted sections at their defaults, which
// is the permissive-validation behavior the synthesizer relies on.
type profileResponse struct {
	CommunicationStyle CommunicationStyle `json:"communication_style"`
	Identity           Identity           `json:"identity"`
	UserFacts          UserFacts          `json:"user_facts"`
	BehavioralRules    BehavioralRules    `json:"behavioral_rules"`
	ToolUsage          ToolUsage          `json:"tool_usage"`
}

// Profile is the full synthesized result: the five structured sections
// plus the flat rendering consumed by legacy readers. It is created once
// per import run and never partially populated; failed synthesis yields no
// Profile at all.
type Profile struct {
	CommunicationStyle CommunicationStyle `json:"communication_style"`
	Identity           Identity           `json:"identity"`
	UserFacts          UserFacts          `json:"user_facts"`
	BehavioralRules    BehavioralRules    `json:"behavioral_rules"`
	ToolUsage          ToolUsage          `json:"tool_usage"`
	ProfileText        string             `json:"profile_text"`
	GeneratedAt        time.Time          `json:"generated_at"`
}

// sectionHeading pairs a section's display heading with its map form, in
// the fixed render order.
type sectionHeading struct {
	heading string
	data    Section
}

func (p *Profile) orderedSections() []sectionHeading {
	return []sectionHeading{
		{"Communication Style", sectionToMap(p.CommunicationStyle)},
		{"Identity", sectionToMap(p.Identity)},
		{"User Facts", sectionToMap(p.UserFacts)},
		{"Behavioral Rules", sectionToMap(p.BehavioralRules)},
		{"Tool Usage Preferences", sectionToMap(p.ToolUsage)},
	}
}

// sectionToMap converts a typed section to its generic map form via a JSON
// round trip, so cleaning and formatting operate on one representation.
func sectionToMap(v any) Section {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m Section
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}
