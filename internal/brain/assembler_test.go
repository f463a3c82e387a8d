// File path: internal/brain/assembler_test.go
package brain

import (
	"testing"

	"github.com/commsforge/commsforge/internal/customer"
	"github.com/commsforge/commsforge/internal/facts"
	"github.com/commsforge/commsforge/internal/policy"
)

func TestAssembleRejectsEmptyLetter(t *testing.T) {
	if _, err := Assemble("   ", customer.Profile{}, nil, facts.Classification{}, nil); err == nil {
		t.Fatalf("expected error for empty letter")
	}
}

func TestAssembleWithoutPolicyEnablesAllChannels(t *testing.T) {
	ctx, err := Assemble("Your monthly fee will change.", customer.Profile{}, nil, facts.Classification{}, nil)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if ctx.RequestID == "" {
		t.Fatalf("expected a request id")
	}
	for _, name := range ChannelNames {
		if !ctx.Enabled(name) {
			t.Fatalf("channel %s should be enabled when no policy is configured", name)
		}
	}
}

func TestAssembleAppliesPolicyDecisions(t *testing.T) {
	pol, err := policy.New(map[string]string{
		"letter": `profile.postal_address != ""`,
	})
	if err != nil {
		t.Fatalf("policy compile failed: %v", err)
	}
	profile := customer.BuildProfile(map[string]any{"name": "James Patterson"})
	ctx, err := Assemble("Your monthly fee will change.", profile, nil, facts.Classification{}, pol)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if ctx.Enabled("letter") {
		t.Fatalf("letter channel should be disabled without a postal address")
	}
	if !ctx.Enabled("email") {
		t.Fatalf("email has no rule and should stay enabled")
	}
}

func TestAssembleStrategyMatchesProfile(t *testing.T) {
	profile := customer.BuildProfile(map[string]any{
		"name":            "Margaret Hughes",
		"account_balance": 32000.0,
		"years_with_bank": 12,
	})
	ctx, err := Assemble("Your monthly fee will change.", profile, nil, facts.Classification{}, nil)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if ctx.Strategy != DeriveStrategy(profile) {
		t.Fatalf("assembled strategy diverges from DeriveStrategy")
	}
}

func TestAssembleRequestIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		ctx, err := Assemble("Your monthly fee will change.", customer.Profile{}, nil, facts.Classification{}, nil)
		if err != nil {
			t.Fatalf("assemble failed: %v", err)
		}
		if seen[ctx.RequestID] {
			t.Fatalf("duplicate request id %s", ctx.RequestID)
		}
		seen[ctx.RequestID] = true
	}
}
