// File path: internal/channel/prompt.go
package channel

import (
	"fmt"
	"strings"

	"github.com/commsforge/commsforge/internal/brain"
	"github.com/commsforge/commsforge/internal/facts"
)

const systemPrompt = "You are a banking communications writer. You rewrite one institutional " +
	"letter for a specific customer and channel. Every mandatory fact must appear " +
	"verbatim in the output. Never invent account details, figures, or dates that " +
	"are not in the source letter."

// promptHeader renders the sections every channel prompt shares: the source
// letter, the mandatory-fact list with the verbatim instruction, and the
// profile-driven directives.
func promptHeader(sc brain.SharedContext, restate []facts.MandatoryFact) string {
	var builder strings.Builder
	builder.WriteString("SOURCE LETTER (preserve all information):\n")
	builder.WriteString(sc.Letter)
	builder.WriteString("\n\nMANDATORY FACTS (each must appear verbatim in your output):\n")
	for _, f := range sc.Facts {
		builder.WriteString(fmt.Sprintf("- [%s] %s\n", f.Kind, f.Text))
	}
	if len(sc.Facts) == 0 {
		builder.WriteString("- none detected\n")
	}
	if len(restate) > 0 {
		builder.WriteString("\nYOUR PREVIOUS ATTEMPT OMITTED THESE FACTS. Include each one verbatim this time:\n")
		for _, f := range restate {
			builder.WriteString(fmt.Sprintf("- %s\n", f.Text))
		}
	}
	builder.WriteString("\nCUSTOMER:\n")
	builder.WriteString("- Name: " + sc.Profile.Name + "\n")
	builder.WriteString("- Preferred language: " + sc.Profile.PreferredLanguage + "\n")
	builder.WriteString("- Age band: " + sc.Profile.AgeBand + "\n")
	builder.WriteString(fmt.Sprintf("- Tenure: %d years\n", sc.Profile.TenureYears))
	builder.WriteString("\nSTYLE DIRECTIVES:\n")
	builder.WriteString("- Tone: " + sc.Strategy.Tone + "\n")
	builder.WriteString("- Verbosity: " + sc.Strategy.Verbosity + "\n")
	for _, mention := range strategyMentions(sc.Strategy) {
		builder.WriteString("- " + mention + "\n")
	}
	builder.WriteString("\nWrite in " + sc.Profile.PreferredLanguage + ".\n")
	return builder.String()
}

// strategyMentions renders the inclusion flags as prompt directives.
func strategyMentions(s brain.Strategy) []string {
	var mentions []string
	if s.MentionWealthTier {
		mentions = append(mentions, "Acknowledge their premier relationship with us")
	}
	if s.MentionBudgeting {
		mentions = append(mentions, "Mention our budgeting support tools are available")
	}
	if s.MentionLoyalty {
		mentions = append(mentions, "Thank them for their years as a customer")
	}
	if s.MentionLifeEvent {
		mentions = append(mentions, "Acknowledge their recent life event with care")
	}
	if s.EmphasizeSupport {
		mentions = append(mentions, "Use plain, extra-clear language and point to support options")
	}
	if s.MentionBusinessBanking {
		mentions = append(mentions, "Note that business banking services are available")
	}
	if s.MentionFamilyPlanning {
		mentions = append(mentions, "Where natural, reference family financial planning")
	}
	return mentions
}

// factLine renders the facts as one compact clause for short-form channels
// and deterministic templates.
func factLine(fs []facts.MandatoryFact) string {
	if len(fs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(fs))
	for _, f := range fs {
		parts = append(parts, f.Text)
	}
	return strings.Join(parts, "; ")
}

// greetingFor picks a preferred-language salutation, falling back to "Dear".
func greetingFor(greetings map[string]string, language string) string {
	if g, ok := greetings[language]; ok {
		return g
	}
	return "Dear"
}
