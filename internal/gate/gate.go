// File path: internal/gate/gate.go
package gate

import (
	"fmt"
	"strings"

	"github.com/commsforge/commsforge/internal/channel"
	"github.com/commsforge/commsforge/internal/common"
	"github.com/commsforge/commsforge/internal/config"
	"github.com/commsforge/commsforge/internal/customer"
	"github.com/commsforge/commsforge/internal/facts"
)

// Report is the gate's verdict on one channel result. A failing report asks
// the orchestrator for one retry with the missing facts restated; it never
// blocks the channel outright.
type Report struct {
	Pass    bool                  `json:"pass"`
	Missing []facts.MandatoryFact `json:"missing,omitempty"`
	Reasons []string              `json:"reasons,omitempty"`
}

// Gate validates channel results against coverage, structural, and language
// expectations.
type Gate struct {
	cfg config.Config
}

func New(cfg config.Config) *Gate { return &Gate{cfg: cfg} }

// Validate inspects one result. Disabled results pass trivially; fallback
// results are held to coverage but not to structural budgets, since the
// deterministic templates prefer fact completeness over length.
func (g *Gate) Validate(r channel.Result, fs []facts.MandatoryFact, profile customer.Profile) Report {
	if r.State == channel.StateDisabled {
		return Report{Pass: true}
	}
	rep := Report{Pass: true}

	rep.Missing = facts.Missing(r.Content, fs)
	if required := g.cfg.Gate.MinCoverage; facts.Coverage(r.Content, fs) < required {
		rep.Pass = false
		rep.Reasons = append(rep.Reasons, fmt.Sprintf("fact coverage below %.2f", required))
	}

	if r.State != channel.StateFallback {
		for _, reason := range g.structuralFailures(r) {
			rep.Pass = false
			rep.Reasons = append(rep.Reasons, reason)
		}
	}

	if reason, ok := g.languageFailure(r, profile); !ok {
		rep.Pass = false
		rep.Reasons = append(rep.Reasons, reason)
	}

	if !rep.Pass {
		common.Logger().Warn(fmt.Sprintf("gate: %s failed validation: %s",
			r.Channel, strings.Join(rep.Reasons, "; ")))
	}
	return rep
}

func (g *Gate) structuralFailures(r channel.Result) []string {
	var reasons []string
	switch r.Channel {
	case "email":
		if len([]rune(r.Subject)) > g.cfg.Email.MaxSubjectLength {
			reasons = append(reasons, fmt.Sprintf("subject exceeds %d characters", g.cfg.Email.MaxSubjectLength))
		}
		if r.Characters < g.cfg.Email.MinBodyLength {
			reasons = append(reasons, fmt.Sprintf("body shorter than %d characters", g.cfg.Email.MinBodyLength))
		}
	case "sms":
		if r.Characters > g.cfg.SMS.MaxLength {
			reasons = append(reasons, fmt.Sprintf("message exceeds %d characters", g.cfg.SMS.MaxLength))
		}
	case "app":
		if r.Characters > g.cfg.App.MaxLength {
			reasons = append(reasons, fmt.Sprintf("notification exceeds %d characters", g.cfg.App.MaxLength))
		}
	case "letter":
		if r.Characters < g.cfg.Letter.MinLength || r.Characters > g.cfg.Letter.MaxLength {
			reasons = append(reasons, fmt.Sprintf("length %d outside [%d, %d]",
				r.Characters, g.cfg.Letter.MinLength, g.cfg.Letter.MaxLength))
		}
		if r.Paragraphs < g.cfg.Letter.MinParagraphs || r.Paragraphs > g.cfg.Letter.MaxParagraphs {
			reasons = append(reasons, fmt.Sprintf("paragraph count %d outside [%d, %d]",
				r.Paragraphs, g.cfg.Letter.MinParagraphs, g.cfg.Letter.MaxParagraphs))
		}
	}
	return reasons
}

// englishStopwords drive the language-presence heuristic: when the customer
// asked for another language, output saturated with English function words
// has defaulted back to the source language.
var englishStopwords = []string{
	"the", "and", "your", "you", "will", "with", "this", "that",
	"have", "from", "please", "our", "are", "for",
}

func (g *Gate) languageFailure(r channel.Result, profile customer.Profile) (string, bool) {
	lang := profile.PreferredLanguage
	if lang == "" || strings.EqualFold(lang, "English") {
		return "", true
	}
	words := strings.Fields(strings.ToLower(r.Content))
	if len(words) == 0 {
		return "", true
	}
	hits := 0
	for _, w := range words {
		w = strings.Trim(w, ".,;:!?\"'()")
		for _, stop := range englishStopwords {
			if w == stop {
				hits++
				break
			}
		}
	}
	if float64(hits)/float64(len(words)) > 0.2 {
		return fmt.Sprintf("content appears to be English but %s was requested", lang), false
	}
	return "", true
}
