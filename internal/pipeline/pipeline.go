// File path: internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/commsforge/commsforge/internal/backend"
	"github.com/commsforge/commsforge/internal/brain"
	"github.com/commsforge/commsforge/internal/channel"
	"github.com/commsforge/commsforge/internal/common"
	"github.com/commsforge/commsforge/internal/config"
	"github.com/commsforge/commsforge/internal/customer"
	"github.com/commsforge/commsforge/internal/facts"
	"github.com/commsforge/commsforge/internal/gate"
	"github.com/commsforge/commsforge/internal/policy"
)

// Bundle is the final multi-channel output for one letter and customer.
type Bundle struct {
	RequestID      string                    `json:"request_id"`
	Results        map[string]channel.Result `json:"results"`
	Facts          []facts.MandatoryFact     `json:"facts"`
	Classification facts.Classification      `json:"classification"`
	Profile        customer.Profile          `json:"profile"`
	Strategy       brain.Strategy            `json:"strategy"`
	Degraded       []string                  `json:"degraded,omitempty"`
	Elapsed        time.Duration             `json:"elapsed_ns"`
}

// Pipeline wires extraction, profiling, assembly, the four channel
// generators, and the quality gate into one request flow. Channel generation
// fans out concurrently; the semaphore bounds backend calls FIFO so quota is
// respected without rejecting work.
type Pipeline struct {
	cfg        config.Config
	policy     *policy.Policy
	gate       *gate.Gate
	generators []channel.Generator
	sem        *semaphore.Weighted
}

// New builds a pipeline from configuration and a generation backend.
func New(cfg config.Config, gen backend.Generator) (*Pipeline, error) {
	pol, err := policy.New(cfg.Policy)
	if err != nil {
		return nil, fmt.Errorf("pipeline: compile channel policy: %w", err)
	}
	limit := cfg.Backend.MaxConcurrent
	if limit <= 0 {
		limit = 1
	}
	return &Pipeline{
		cfg:    cfg,
		policy: pol,
		gate:   gate.New(cfg),
		generators: []channel.Generator{
			channel.NewEmail(cfg, gen),
			channel.NewSMS(cfg, gen),
			channel.NewApp(cfg, gen),
			channel.NewLetter(cfg, gen),
		},
		sem: semaphore.NewWeighted(int64(limit)),
	}, nil
}

// Personalize runs the full flow for one letter and customer record. No
// backend or validation failure is fatal: every enabled channel returns a
// result, flagged degraded when it could not be fully validated.
func (p *Pipeline) Personalize(ctx context.Context, letter string, record map[string]any) (Bundle, error) {
	start := time.Now()
	logger := common.Logger()

	cleaned := facts.Clean(letter)
	fs, err := facts.Extract(cleaned)
	if err != nil {
		return Bundle{}, fmt.Errorf("pipeline: %w", err)
	}
	cls := facts.Classify(cleaned, fs)
	profile := customer.BuildProfile(record)

	sc, err := brain.Assemble(cleaned, profile, fs, cls, p.policy)
	if err != nil {
		return Bundle{}, fmt.Errorf("pipeline: %w", err)
	}

	results := make([]channel.Result, len(p.generators))
	var group errgroup.Group
	for i, gen := range p.generators {
		group.Go(func() error {
			results[i] = p.run(ctx, gen, sc)
			return nil
		})
	}
	// generator failures never propagate as errors
	_ = group.Wait()

	bundle := Bundle{
		RequestID:      sc.RequestID,
		Results:        make(map[string]channel.Result, len(results)),
		Facts:          fs,
		Classification: cls,
		Profile:        profile,
		Strategy:       sc.Strategy,
		Elapsed:        time.Since(start),
	}
	for _, r := range results {
		bundle.Results[r.Channel] = r
		if r.Degraded {
			bundle.Degraded = append(bundle.Degraded, r.Channel)
		}
	}
	sort.Strings(bundle.Degraded)
	logger.Info(fmt.Sprintf("pipeline: request %s completed in %s degraded=%d",
		sc.RequestID, bundle.Elapsed.Round(time.Millisecond), len(bundle.Degraded)))
	return bundle, nil
}

// run generates one channel, validates it, and performs the single bounded
// retry with missing facts restated. A failing retry yields a degraded
// result rather than no result.
func (p *Pipeline) run(ctx context.Context, gen channel.Generator, sc brain.SharedContext) channel.Result {
	r := p.generate(ctx, gen, sc, nil)
	rep := p.gate.Validate(r, sc.Facts, sc.Profile)
	if rep.Pass {
		return r
	}
	if r.State == channel.StateScored {
		retry := p.generate(ctx, gen, sc, rep.Missing)
		if retryRep := p.gate.Validate(retry, sc.Facts, sc.Profile); retryRep.Pass {
			return retry
		}
		if retry.Score >= r.Score {
			r = retry
		}
	}
	r.Degraded = true
	if r.Reason == "" {
		r.Reason = strings.Join(rep.Reasons, "; ")
	}
	common.Logger().Warn(fmt.Sprintf("pipeline: %s accepted degraded: %s", r.Channel, r.Reason))
	return r
}

// generate applies the backend concurrency bound and per-call timeout around
// one generator invocation. Disabled channels skip the semaphore entirely:
// they never touch the backend.
func (p *Pipeline) generate(ctx context.Context, gen channel.Generator, sc brain.SharedContext, restate []facts.MandatoryFact) channel.Result {
	if !sc.Enabled(gen.Channel()) {
		return gen.Generate(ctx, sc, nil)
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		// request cancelled while queued; the generator sees the dead
		// context and falls back deterministically
		return gen.Generate(ctx, sc, restate)
	}
	defer p.sem.Release(1)

	callCtx := ctx
	if timeout := p.cfg.Backend.CallTimeout.Std(); timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return gen.Generate(callCtx, sc, restate)
}
