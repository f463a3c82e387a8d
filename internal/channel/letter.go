// File path: internal/channel/letter.go
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

// Letter renders the formal printed letter: letterhead, body, footer, and
// enclosures keyed by document class.
type Letter struct {
	cfg      config.LetterConfig
	backendC config.BackendConfig
	gate     config.GateConfig
	gen      backend.Generator
}

func NewLetter(cfg config.Config, gen backend.Generator) *Letter {
	return &Letter{cfg: cfg.Letter, backendC: cfg.Backend, gate: cfg.Gate, gen: gen}
}

func (l *Letter) Channel() string { return "letter" }

func (l *Letter) Generate(ctx context.Context, sc brain.SharedContext, restate []facts.MandatoryFact) Result {
	start := time.Now()
	if !sc.Enabled("letter") {
		return disabledResult("letter", sc.Decisions["letter"].Reason, sc)
	}
	r := Result{Channel: "letter", State: StateGenerating, Method: MethodAI, Language: sc.Profile.PreferredLanguage}

	var body string
	raw, err := callBackend(ctx, l.gen, "letter", backend.Request{
		System:      systemPrompt,
		Prompt:      l.prompt(sc, restate),
		MaxTokens:   l.backendC.MaxTokens,
		Temperature: l.backendC.Temperature,
	})
	if err != nil {
		if !fallbackErr(err) {
			common.Logger().Warn("channel: letter unexpected backend error: " + err.Error())
		}
		r.State = StateFallback
		r.Method = MethodSimulated
		body = l.simulateBody(sc)
		r.Reason = err.Error()
	} else {
		r.State = StateScored
		body = strings.TrimSpace(raw)
	}
	r.Content = l.compose(sc, body)

	r = finishResult(r, sc, start)
	r.Paragraphs = countParagraphs(body)
	r.PageCount = l.pageCount(r.Words)
	r.Score = score(r.Coverage, l.structural(r), len(r.FactsMissing), l.gate.PassThreshold)
	return r
}

func (l *Letter) prompt(sc brain.SharedContext, restate []facts.MandatoryFact) string {
	var builder strings.Builder
	builder.WriteString(promptHeader(sc, restate))
	builder.WriteString("\nTASK: write the body of a formal printed letter.\n")
	builder.WriteString("- Start with the salutation; do not include letterhead, date, or address blocks.\n")
	builder.WriteString(fmt.Sprintf("- Between %d and %d paragraphs separated by blank lines.\n",
		l.cfg.MinParagraphs, l.cfg.MaxParagraphs))
	builder.WriteString("- Formal register throughout; close with a sign-off.\n")
	if enclosures := l.enclosures(sc); len(enclosures) > 0 {
		builder.WriteString("- Mention the enclosed documents: " + strings.Join(enclosures, ", ") + ".\n")
	}
	builder.WriteString("- Plain text only, no JSON.\n")
	return builder.String()
}

// simulateBody expands the source letter into a formal deterministic body
// that satisfies the paragraph and length bounds while carrying every fact.
func (l *Letter) simulateBody(sc brain.SharedContext) string {
	paragraphs := []string{
		"Dear " + sc.Profile.Name + ",",
		"We are writing to inform you of an important update regarding your account with us. " +
			"Please read this letter carefully and retain it for your records.",
		sc.Letter,
	}
	if line := factLine(sc.Facts); line != "" {
		paragraphs = append(paragraphs,
			"For clarity, the key details of this notice are: "+line+". "+
				"These details apply to your account from the dates stated above.")
	}
	closing := "If you have any questions about this notice, please contact us using the details below. " +
		"We appreciate your continued custom."
	if sc.Strategy.MentionLoyalty {
		closing = fmt.Sprintf("We value the %d years you have banked with us. ", sc.Profile.TenureYears) + closing
	}
	paragraphs = append(paragraphs, closing, "Yours sincerely,\nCustomer Communications Team")
	return strings.Join(paragraphs, "\n\n")
}

// compose wraps a body with letterhead, footer, and enclosure list.
func (l *Letter) compose(sc brain.SharedContext, body string) string {
	replacer := strings.NewReplacer(
		"{date}", time.Now().Format("2 January 2006"),
		"{customer_name}", sc.Profile.Name,
		"{customer_address}", sc.Profile.PostalAddress,
		"{reference}", sc.RequestID,
	)
	var builder strings.Builder
	builder.WriteString(replacer.Replace(l.cfg.Letterhead))
	builder.WriteString("\n\n")
	builder.WriteString(body)
	if enclosures := l.enclosures(sc); len(enclosures) > 0 {
		builder.WriteString("\n\nEnclosures:\n")
		for _, enc := range enclosures {
			builder.WriteString("- " + enc + "\n")
		}
	}
	builder.WriteString("\n")
	if sc.Strategy.EmphasizeSupport {
		builder.WriteString(l.cfg.SupportFooter)
	} else {
		builder.WriteString(l.cfg.Footer)
	}
	return builder.String()
}

func (l *Letter) enclosures(sc brain.SharedContext) []string {
	return l.cfg.Enclosures[string(sc.Classification.Class)]
}

func (l *Letter) pageCount(words int) int {
	per := l.cfg.WordsPerPage
	if per <= 0 {
		per = 500
	}
	if words == 0 {
		return 1
	}
	return (words + per - 1) / per
}

// structural: length bounds carry most of the weight, paragraph bounds and
// the presence of letterhead and footer the rest.
func (l *Letter) structural(r Result) float64 {
	s := 0.0
	if r.Characters >= l.cfg.MinLength && r.Characters <= l.cfg.MaxLength {
		s += 0.4
	}
	if r.Paragraphs >= l.cfg.MinParagraphs && r.Paragraphs <= l.cfg.MaxParagraphs {
		s += 0.3
	}
	if strings.Contains(r.Content, "Reference:") && strings.Contains(r.Content, "---") {
		s += 0.3
	}
	return s
}

func countParagraphs(body string) int {
	count := 0
	for _, block := range strings.Split(body, "\n\n") {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count
}
