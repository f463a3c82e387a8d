// File path: internal/channel/app.go
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

// App renders the in-app notification channel.
type App struct {
	cfg      config.AppConfig
	backendC config.BackendConfig
	gate     config.GateConfig
	gen      backend.Generator
}

func NewApp(cfg config.Config, gen backend.Generator) *App {
	return &App{cfg: cfg.App, backendC: cfg.Backend, gate: cfg.Gate, gen: gen}
}

func (a *App) Channel() string { return "app" }

func (a *App) Generate(ctx context.Context, sc brain.SharedContext, restate []facts.MandatoryFact) Result {
	start := time.Now()
	if !sc.Enabled("app") {
		return disabledResult("app", sc.Decisions["app"].Reason, sc)
	}
	r := Result{Channel: "app", State: StateGenerating, Method: MethodAI, Language: sc.Profile.PreferredLanguage}

	raw, err := callBackend(ctx, a.gen, "app", backend.Request{
		System:      systemPrompt,
		Prompt:      a.prompt(sc, restate),
		MaxTokens:   120,
		Temperature: a.backendC.Temperature,
	})
	if err != nil {
		if !fallbackErr(err) {
			common.Logger().Warn("channel: app unexpected backend error: " + err.Error())
		}
		r.State = StateFallback
		r.Method = MethodSimulated
		r.Content = a.simulate(sc)
		r.Reason = err.Error()
	} else {
		r.State = StateScored
		r.Content = strings.TrimSpace(raw)
	}

	r = finishResult(r, sc, start)
	r.Score = score(r.Coverage, a.structural(r), len(r.FactsMissing), a.gate.PassThreshold)
	return r
}

func (a *App) prompt(sc brain.SharedContext, restate []facts.MandatoryFact) string {
	var builder strings.Builder
	builder.WriteString(promptHeader(sc, restate))
	builder.WriteString("\nTASK: write one in-app notification about the source letter.\n")
	builder.WriteString(fmt.Sprintf("- HARD LIMIT %d characters.\n", a.cfg.MaxLength))
	builder.WriteString("- Plain text only. Lead with the most important change.\n")
	builder.WriteString("- Point the customer to the full letter in their document inbox.\n")
	return builder.String()
}

// simulate favours fact completeness over the character budget, the same
// trade the SMS fallback makes.
func (a *App) simulate(sc brain.SharedContext) string {
	if line := factLine(sc.Facts); line != "" {
		return "Account update: " + line + ". See your document inbox."
	}
	return "Account update: a new letter is in your document inbox."
}

func (a *App) structural(r Result) float64 {
	if r.Characters <= a.cfg.MaxLength {
		return 1
	}
	return 0
}
