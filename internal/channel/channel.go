// File path: internal/channel/channel.go
package channel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/commsforge/commsforge/internal/backend"
	"github.com/commsforge/commsforge/internal/brain"
	"github.com/commsforge/commsforge/internal/common"
	"github.com/commsforge/commsforge/internal/facts"
)

// State of a single generation call.
type State string

const (
	StatePending    State = "PENDING"
	StateGenerating State = "GENERATING"
	StateScored     State = "SCORED"
	StateDisabled   State = "DISABLED"
	StateFallback   State = "FALLBACK"
)

// Method records who authored the content.
type Method string

const (
	MethodAI        Method = "ai"
	MethodSimulated Method = "simulated"
)

// Result is the outcome of one channel generation. Created fresh per call,
// never reused across requests.
type Result struct {
	Channel      string                `json:"channel"`
	State        State                 `json:"state"`
	Method       Method                `json:"method"`
	Content      string                `json:"content"`
	Subject      string                `json:"subject,omitempty"`
	Score        float64               `json:"score"`
	Coverage     float64               `json:"coverage"`
	FactsPresent []facts.MandatoryFact `json:"facts_present,omitempty"`
	FactsMissing []facts.MandatoryFact `json:"facts_missing,omitempty"`
	Degraded     bool                  `json:"degraded"`
	Reason       string                `json:"reason,omitempty"`
	Language     string                `json:"language"`
	Latency      time.Duration         `json:"latency_ns"`
	Characters   int                   `json:"characters"`
	Words        int                   `json:"words"`
	Segments     int                   `json:"segments,omitempty"`
	Paragraphs   int                   `json:"paragraphs,omitempty"`
	PageCount    int                   `json:"page_count,omitempty"`
}

// Generator turns a shared context into one channel's output. The context is
// read-only: generators never re-derive facts, profile, or strategy. The
// restate list carries facts a previous attempt missed; nil on the first
// attempt.
type Generator interface {
	Channel() string
	Generate(ctx context.Context, sc brain.SharedContext, restate []facts.MandatoryFact) Result
}

// disabledResult is returned without touching the backend when policy has
// switched the channel off.
func disabledResult(name, reason string, sc brain.SharedContext) Result {
	return Result{
		Channel:  name,
		State:    StateDisabled,
		Content:  "",
		Score:    0,
		Reason:   reason,
		Language: sc.Profile.PreferredLanguage,
	}
}

// fallbackErr reports whether a backend failure should route to the
// deterministic simulation path.
func fallbackErr(err error) bool {
	return errors.Is(err, backend.ErrUnavailable) ||
		errors.Is(err, backend.ErrTimeout) ||
		errors.Is(err, backend.ErrRateLimited)
}

// callBackend runs one generation request and logs the outcome.
func callBackend(ctx context.Context, gen backend.Generator, name string, req backend.Request) (string, error) {
	start := time.Now()
	text, err := gen.Generate(ctx, req)
	logger := common.Logger()
	if err != nil {
		logger.Warn(fmt.Sprintf("channel: %s backend call failed after %s: %v", name, time.Since(start).Round(time.Millisecond), err))
		return "", err
	}
	logger.Debug(fmt.Sprintf("channel: %s backend call completed in %s", name, time.Since(start).Round(time.Millisecond)))
	return text, nil
}

// finishResult fills the audit fields shared by every channel: coverage,
// present/missing facts, word and character counts.
func finishResult(r Result, sc brain.SharedContext, start time.Time) Result {
	r.Coverage = facts.Coverage(r.Content, sc.Facts)
	r.FactsMissing = facts.Missing(r.Content, sc.Facts)
	present := make([]facts.MandatoryFact, 0, len(sc.Facts))
	for _, f := range sc.Facts {
		if facts.Covered(r.Content, f) {
			present = append(present, f)
		}
	}
	r.FactsPresent = present
	r.Characters = len([]rune(r.Content))
	r.Words = len(strings.Fields(r.Content))
	r.Latency = time.Since(start)
	return r
}
