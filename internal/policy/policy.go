// File path: internal/policy/policy.go
package policy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/commsforge/commsforge/internal/common"
	"github.com/commsforge/commsforge/internal/customer"
)

// Decision records whether a channel may be generated and why. A channel is
// disabled only by an explicit rule evaluating false; absence of a rule, or
// a rule that fails to evaluate, leaves the channel enabled.
type Decision struct {
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason"`
}

// Policy holds compiled eligibility expressions keyed by channel name.
// Expressions are CEL programs over a read-only `profile` map; they are
// compiled once at construction and never mutated afterwards.
type Policy struct {
	programs map[string]cel.Program
	sources  map[string]string
}

// New compiles the channel eligibility rules. Every expression must be a
// boolean CEL program over the `profile` variable.
func New(rules map[string]string) (*Policy, error) {
	env, err := cel.NewEnv(
		cel.Variable("profile", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("policy environment: %w", err)
	}
	p := &Policy{
		programs: make(map[string]cel.Program, len(rules)),
		sources:  make(map[string]string, len(rules)),
	}
	for chName, expr := range rules {
		expr = strings.TrimSpace(expr)
		if expr == "" {
			continue
		}
		ast, issues := env.Compile(expr)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("compile %s rule %q: %w", chName, expr, issues.Err())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return nil, fmt.Errorf("%s rule %q must evaluate to bool, got %s", chName, expr, ast.OutputType())
		}
		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("program %s rule: %w", chName, err)
		}
		p.programs[chName] = program
		p.sources[chName] = expr
	}
	return p, nil
}

// Evaluate resolves eligibility for each requested channel against the
// profile. Rule evaluation errors are logged and resolve to enabled, keeping
// disablement strictly explicit.
func (p *Policy) Evaluate(profile customer.Profile, channels []string) map[string]Decision {
	logger := common.Logger()
	input := map[string]any{"profile": profile.AsMap()}
	decisions := make(map[string]Decision, len(channels))
	for _, name := range channels {
		program, ok := p.programs[name]
		if !ok {
			decisions[name] = Decision{Enabled: true, Reason: "no eligibility rule configured"}
			continue
		}
		out, _, err := program.Eval(input)
		if err != nil {
			logger.Warn("policy: rule evaluation failed, channel stays enabled",
				"channel", name, "rule", p.sources[name], "error", err)
			decisions[name] = Decision{Enabled: true, Reason: "rule evaluation failed"}
			continue
		}
		enabled, ok := out.Value().(bool)
		if !ok {
			logger.Warn("policy: rule returned non-bool, channel stays enabled",
				"channel", name, "rule", p.sources[name])
			decisions[name] = Decision{Enabled: true, Reason: "rule returned non-bool"}
			continue
		}
		if enabled {
			decisions[name] = Decision{Enabled: true, Reason: "rule " + p.sources[name]}
		} else {
			decisions[name] = Decision{Enabled: false, Reason: "disabled by rule " + p.sources[name]}
		}
	}
	return decisions
}

// Rules returns the configured rule sources in channel order, for status
// reporting.
func (p *Policy) Rules() map[string]string {
	out := make(map[string]string, len(p.sources))
	for name, src := range p.sources {
		out[name] = src
	}
	return out
}

// Channels returns the channel names that carry an explicit rule, sorted.
func (p *Policy) Channels() []string {
	names := make([]string, 0, len(p.programs))
	for name := range p.programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
