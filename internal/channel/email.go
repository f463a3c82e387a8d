// File path: internal/channel/email.go
package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/commsforge/commsforge/internal/backend"
	"github.com/commsforge/commsforge/internal/brain"
	"github.com/commsforge/commsforge/internal/common"
	"github.com/commsforge/commsforge/internal/config"
	"github.com/commsforge/commsforge/internal/facts"
)

// Email renders the personalized email channel.
type Email struct {
	cfg       config.EmailConfig
	backendC  config.BackendConfig
	gate      config.GateConfig
	greetings map[string]string
	gen       backend.Generator
}

func NewEmail(cfg config.Config, gen backend.Generator) *Email {
	return &Email{
		cfg:       cfg.Email,
		backendC:  cfg.Backend,
		gate:      cfg.Gate,
		greetings: cfg.Greetings,
		gen:       gen,
	}
}

func (e *Email) Channel() string { return "email" }

type emailPayload struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (e *Email) Generate(ctx context.Context, sc brain.SharedContext, restate []facts.MandatoryFact) Result {
	start := time.Now()
	if !sc.Enabled("email") {
		return disabledResult("email", sc.Decisions["email"].Reason, sc)
	}
	r := Result{Channel: "email", State: StateGenerating, Method: MethodAI, Language: sc.Profile.PreferredLanguage}

	raw, err := callBackend(ctx, e.gen, "email", backend.Request{
		System:      systemPrompt,
		Prompt:      e.prompt(sc, restate),
		MaxTokens:   e.backendC.MaxTokens,
		Temperature: e.backendC.Temperature,
	})
	if err != nil {
		if !fallbackErr(err) {
			common.Logger().Warn("channel: email unexpected backend error: " + err.Error())
		}
		r.State = StateFallback
		r.Method = MethodSimulated
		r.Subject, r.Content = e.simulate(sc)
		r.Reason = err.Error()
	} else {
		r.State = StateScored
		r.Subject, r.Content = e.parse(raw, sc)
	}

	r = finishResult(r, sc, start)
	r.Score = score(r.Coverage, e.structural(r), len(r.FactsMissing), e.gate.PassThreshold)
	return r
}

func (e *Email) prompt(sc brain.SharedContext, restate []facts.MandatoryFact) string {
	var builder strings.Builder
	builder.WriteString(promptHeader(sc, restate))
	builder.WriteString("\nTASK: write a personalized email version of the source letter.\n")
	builder.WriteString(fmt.Sprintf("- Subject line at most %d characters.\n", e.cfg.MaxSubjectLength))
	builder.WriteString(fmt.Sprintf("- Body at least %d characters, greeting through sign-off.\n", e.cfg.MinBodyLength))
	builder.WriteString("- Greet the customer by name; never use Mr/Ms when gender is unknown.\n")
	builder.WriteString("\nRespond with JSON only:\n")
	builder.WriteString(`{"subject": "...", "body": "..."}`)
	builder.WriteString("\n")
	return builder.String()
}

// parse reads the structured response. Malformed output is not discarded:
// the raw text becomes the body and scoring runs against it.
func (e *Email) parse(raw string, sc brain.SharedContext) (subject, body string) {
	var payload emailPayload
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	if err := json.Unmarshal([]byte(strings.TrimSpace(trimmed)), &payload); err == nil &&
		strings.TrimSpace(payload.Body) != "" {
		return strings.TrimSpace(payload.Subject), strings.TrimSpace(payload.Body)
	}
	common.Logger().Warn("channel: email response not parseable as JSON; using raw text")
	return "Important update for " + sc.Profile.FirstName(), strings.TrimSpace(raw)
}

// simulate renders the deterministic email used when the backend is down.
// Every mandatory fact is embedded verbatim so coverage still scores.
func (e *Email) simulate(sc brain.SharedContext) (subject, body string) {
	greeting := greetingFor(e.greetings, sc.Profile.PreferredLanguage)
	var builder strings.Builder
	builder.WriteString(greeting + " " + sc.Profile.FirstName() + ",\n\n")
	builder.WriteString("We are writing with an important update about your account.\n\n")
	if line := factLine(sc.Facts); line != "" {
		builder.WriteString("Key details: " + line + ".\n\n")
	}
	builder.WriteString(sc.Letter)
	builder.WriteString("\n\n")
	if sc.Strategy.MentionLoyalty {
		builder.WriteString(fmt.Sprintf("Thank you for being with us for %d years.\n", sc.Profile.TenureYears))
	}
	if sc.Strategy.EmphasizeSupport {
		builder.WriteString("If anything here is unclear, our team is ready to help.\n")
	}
	builder.WriteString("\nKind regards,\nCustomer Communications Team")
	return "Important update for " + sc.Profile.FirstName(), builder.String()
}

// structural scores subject and body thresholds at half weight each.
func (e *Email) structural(r Result) float64 {
	s := 0.0
	if r.Subject != "" && len([]rune(r.Subject)) <= e.cfg.MaxSubjectLength {
		s += 0.5
	}
	if r.Characters >= e.cfg.MinBodyLength {
		s += 0.5
	}
	return s
}
