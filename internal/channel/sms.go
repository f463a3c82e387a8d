// File path: internal/channel/sms.go
package channel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/commsforge/commsforge/internal/backend"
	"github.com/commsforge/commsforge/internal/brain"
	"github.com/commsforge/commsforge/internal/common"
	"github.com/commsforge/commsforge/internal/config"
	"github.com/commsforge/commsforge/internal/facts"
)

// SMS renders the short-message channel. The character budget includes the
// mandatory facts and any regulatory footer.
type SMS struct {
	cfg      config.SMSConfig
	backendC config.BackendConfig
	gate     config.GateConfig
	gen      backend.Generator
}

func NewSMS(cfg config.Config, gen backend.Generator) *SMS {
	return &SMS{cfg: cfg.SMS, backendC: cfg.Backend, gate: cfg.Gate, gen: gen}
}

func (s *SMS) Channel() string { return "sms" }

func (s *SMS) Generate(ctx context.Context, sc brain.SharedContext, restate []facts.MandatoryFact) Result {
	start := time.Now()
	if !sc.Enabled("sms") {
		return disabledResult("sms", sc.Decisions["sms"].Reason, sc)
	}
	r := Result{Channel: "sms", State: StateGenerating, Method: MethodAI, Language: sc.Profile.PreferredLanguage}

	raw, err := callBackend(ctx, s.gen, "sms", backend.Request{
		System:      systemPrompt,
		Prompt:      s.prompt(sc, restate),
		MaxTokens:   200,
		Temperature: s.backendC.Temperature,
	})
	if err != nil {
		if !fallbackErr(err) {
			common.Logger().Warn("channel: sms unexpected backend error: " + err.Error())
		}
		r.State = StateFallback
		r.Method = MethodSimulated
		r.Content = s.simulate(sc)
		r.Reason = err.Error()
	} else {
		r.State = StateScored
		r.Content = strings.TrimSpace(raw)
	}
	if sc.Classification.ComplianceRequired && !strings.Contains(strings.ToUpper(r.Content), "STOP") {
		r.Content += s.cfg.OptOutFooter
	}

	r = finishResult(r, sc, start)
	r.Segments = s.segments(r.Characters)
	r.Score = score(r.Coverage, s.structural(r), len(r.FactsMissing), s.gate.PassThreshold)
	return r
}

func (s *SMS) prompt(sc brain.SharedContext, restate []facts.MandatoryFact) string {
	var builder strings.Builder
	builder.WriteString(promptHeader(sc, restate))
	builder.WriteString("\nTASK: condense the source letter into one SMS.\n")
	builder.WriteString(fmt.Sprintf("- HARD LIMIT %d characters total, including every mandatory fact.\n", s.cfg.MaxLength))
	builder.WriteString("- Plain text only, no JSON, no links, no emoji.\n")
	builder.WriteString("- Start with the customer's first name.\n")
	if sc.Classification.ComplianceRequired {
		builder.WriteString("- End with: \"" + strings.TrimSpace(s.cfg.OptOutFooter) + "\"\n")
	}
	return builder.String()
}

// simulate packs the facts into a deterministic message. It prefers fact
// completeness over the character budget; an oversized fallback scores lower
// structurally rather than dropping a fact.
func (s *SMS) simulate(sc brain.SharedContext) string {
	var builder strings.Builder
	builder.WriteString(sc.Profile.FirstName() + ": ")
	if line := factLine(sc.Facts); line != "" {
		builder.WriteString(line)
		builder.WriteString(".")
	} else {
		builder.WriteString("important account update, please check your messages.")
	}
	return builder.String()
}

func (s *SMS) segments(chars int) int {
	if chars <= s.cfg.SegmentSize {
		return 1
	}
	per := s.cfg.MultiSegmentSize
	if per <= 0 {
		per = s.cfg.SegmentSize
	}
	return (chars + per - 1) / per
}

func (s *SMS) structural(r Result) float64 {
	if r.Characters <= s.cfg.MaxLength {
		return 1
	}
	return 0
}
