package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/soulprintlabs/soulprint-pipeline/pipeline/fileutils"
)

// GenerateRequest is one structured-output generation request handed to
// the LLM capability.
type GenerateRequest struct {
	SystemPrompt    string
	UserContent     string
	SchemaName      string
	Schema          map[string]interface{}
	MaxOutputTokens int64
}

// StructuredGenerator is the LLM capability the synthesizer consumes. It
// returns the raw model output text, which should be a single JSON object
// matching the request schema. Implementations must respect ctx
// cancellation; they should not retry internally.
type StructuredGenerator interface {
	GenerateStructuredJSON(ctx context.Context, req GenerateRequest) (string, error)
}

// SynthesizerOption configures a Synthesizer.
type SynthesizerOption func(*Synthesizer)

// WithSampleOptions overrides the sampling parameters.
func WithSampleOptions(opts SampleOptions) SynthesizerOption {
	return func(s *Synthesizer) { s.sample = opts }
}

// WithTimeout overrides the hard timeout on the LLM call. The surrounding
// system targets sub-60-second synthesis, so keep this well under that.
func WithTimeout(d time.Duration) SynthesizerOption {
	return func(s *Synthesizer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock injects the time source used for GeneratedAt. Rendering never
// reads the wall clock directly, so equivalence tests can pin it.
func WithClock(now func() time.Time) SynthesizerOption {
	return func(s *Synthesizer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger attaches a logger for degradation events. Defaults to a nop
// logger.
func WithLogger(log *zap.Logger) SynthesizerOption {
	return func(s *Synthesizer) {
		if log != nil {
			s.log = log
		}
	}
}

// Synthesizer turns parsed conversations into a structured personality
// profile via a single LLM call. It holds no per-user state; one instance
// is safe for concurrent imports.
type Synthesizer struct {
	gen             StructuredGenerator
	sample          SampleOptions
	timeout         time.Duration
	maxOutputTokens int64
	now             func() time.Time
	log             *zap.Logger
}

// NewSynthesizer builds a Synthesizer around the given LLM capability.
func NewSynthesizer(gen StructuredGenerator, opts ...SynthesizerOption) *Synthesizer {
	s := &Synthesizer{
		gen:             gen,
		timeout:         45 * time.Second,
		maxOutputTokens: 4000,
		now:             time.Now,
		log:             zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize samples and formats the conversations, issues exactly one
// structured-output LLM call, and returns the validated profile.
//
// It never fails upward: empty input, provider errors, and malformed model
// output all degrade to a nil return. Personalization is a nice-to-have on
// top of a successful import; the caller substitutes a placeholder profile
// and the import proceeds either way.
func (s *Synthesizer) Synthesize(ctx context.Context, convs []ParsedConversation) *Profile {
	if s == nil || s.gen == nil {
		return nil
	}

	sampled := SampleConversations(convs, s.sample)
	formatted := FormatForPrompt(sampled)
	if formatted == "" {
		s.log.Info("profile synthesis skipped: no conversations to analyze")
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	output, err := s.gen.GenerateStructuredJSON(callCtx, GenerateRequest{
		SystemPrompt:    profileSystemPrompt,
		UserContent:     formatted,
		SchemaName:      "PersonalityProfile",
		Schema:          profileSchema,
		MaxOutputTokens: s.maxOutputTokens,
	})
	if err != nil {
		s.log.Warn("profile synthesis failed: provider error",
			zap.Error(err),
			zap.Int("sampled_conversations", len(sampled)))
		return nil
	}

	// Permissive by design: sections the model omitted stay at their
	// defaults. Only a gross shape violation (non-object root) rejects.
	var resp profileResponse
	if err := fileutils.DecodeModelJSON(output, &resp); err != nil {
		s.log.Warn("profile synthesis failed: malformed model output",
			zap.Error(err),
			zap.Int("output_len", len(output)))
		return nil
	}
	if !hasObjectRoot(output) {
		s.log.Warn("profile synthesis failed: model output root is not an object")
		return nil
	}

	p := &Profile{
		CommunicationStyle: resp.CommunicationStyle,
		Identity:           resp.Identity,
		UserFacts:          resp.UserFacts,
		BehavioralRules:    resp.BehavioralRules,
		ToolUsage:          resp.ToolUsage,
		GeneratedAt:        s.now().UTC(),
	}
	p.ProfileText = RenderProfileText(p)
	return p
}

// hasObjectRoot reports whether the model output, after the tolerant
// extraction DecodeModelJSON applies, is rooted in a JSON object.
func hasObjectRoot(output string) bool {
	var probe map[string]json.RawMessage
	return fileutils.DecodeModelJSON(output, &probe) == nil
}
