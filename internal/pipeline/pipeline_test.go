// File path: internal/pipeline/pipeline_test.go
package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/commsforge/commsforge/internal/backend"
	"github.com/commsforge/commsforge/internal/channel"
	"github.com/commsforge/commsforge/internal/config"
)

const feeLetter = "Dear Customer,\n\n" +
	"Your monthly account fee will increase from £5 to £7.50 on 1 March, " +
	"effective 11:59pm. No action is required from you.\n\n" +
	"If you have questions call us on 0345 300 0000."

var wealthyCustomer = map[string]any{
	"name":                     "Margaret Hughes",
	"account_balance":          25000.0,
	"years_with_bank":          8,
	"digital_logins_per_month": 30,
	"postal_address":           "14 Elm Grove, Bristol BS6 6AB",
	"mobile_app_usage":         "Yes",
}

// scriptedBackend replies per channel, recognized from the task line of each
// prompt, and records calls for concurrency-safe assertions.
type scriptedBackend struct {
	mu      sync.Mutex
	calls   int
	replies map[string]string
	err     error
}

func (s *scriptedBackend) Name() string { return "scripted" }

func (s *scriptedBackend) Generate(ctx context.Context, req backend.Request) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	for key, reply := range s.replies {
		if strings.Contains(req.Prompt, key) {
			return reply, nil
		}
	}
	return "hello", nil
}

func (s *scriptedBackend) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// passingReplies covers every mandatory fact of feeLetter within each
// channel's structural budget.
func passingReplies() map[string]string {
	return map[string]string{
		"personalized email version": `{"subject": "Your account fee is changing", "body": "Dear Margaret, your monthly fee will increase from £5 to £7.50 on 1 March, effective 11:59pm. No action is required from you. If you have questions, call us on 0345 300 0000. Kind regards, the team."}`,
		"one SMS":                    "Margaret: fee £5 to £7.50 from 1 March, 11:59pm. No action required. Call 0345 300 0000.",
		"in-app notification":        "Fee £5 to £7.50, 1 March 11:59pm. No action required. Call 0345 300 0000.",
		"formal printed letter": "Dear Margaret Hughes,\n\n" +
			"We are writing to confirm that your monthly account fee will increase from £5 to £7.50 on 1 March, effective 11:59pm. " +
			"This change reflects an update to our published tariff and applies to your account automatically.\n\n" +
			"No action is required from you. The revised fee will be collected by the usual method from the effective date, " +
			"and all other features of your account remain unchanged.\n\n" +
			"If you have any questions about this change, please call us on 0345 300 0000 and one of our advisers will be glad to help.\n\n" +
			"Yours sincerely,\nCustomer Communications Team",
	}
}

func newPipeline(t *testing.T, gen backend.Generator) *Pipeline {
	t.Helper()
	p, err := New(config.Default(), gen)
	if err != nil {
		t.Fatalf("pipeline construction failed: %v", err)
	}
	return p
}

func TestPersonalizePreservesFactsAcrossChannels(t *testing.T) {
	stub := &scriptedBackend{replies: passingReplies()}
	bundle, err := newPipeline(t, stub).Personalize(context.Background(), feeLetter, wealthyCustomer)
	if err != nil {
		t.Fatalf("personalize failed: %v", err)
	}
	if len(bundle.Results) != 4 {
		t.Fatalf("expected 4 channel results, got %d", len(bundle.Results))
	}
	for _, name := range []string{"email", "letter"} {
		r := bundle.Results[name]
		for _, token := range []string{"£5", "£7.50", "1 March", "11:59pm"} {
			if !strings.Contains(r.Content, token) {
				t.Fatalf("%s output missing %q", name, token)
			}
		}
	}
	sms := bundle.Results["sms"]
	if !strings.Contains(sms.Content, "£5") || !strings.Contains(sms.Content, "£7.50") {
		t.Fatalf("sms output missing fee amounts: %q", sms.Content)
	}
	if len(bundle.Degraded) != 0 {
		t.Fatalf("unexpected degraded channels: %v", bundle.Degraded)
	}
	if !bundle.Strategy.MentionWealthTier || !bundle.Strategy.MentionLoyalty {
		t.Fatalf("strategy should mention wealth tier and loyalty for this customer: %+v", bundle.Strategy)
	}
}

func TestPersonalizeBackendUnavailableAllSimulated(t *testing.T) {
	bundle, err := newPipeline(t, backend.Offline{}).Personalize(context.Background(), feeLetter, wealthyCustomer)
	if err != nil {
		t.Fatalf("backend outage must not fail the request: %v", err)
	}
	for name, r := range bundle.Results {
		if r.State == channel.StateDisabled {
			continue
		}
		if r.Method != channel.MethodSimulated {
			t.Fatalf("%s method = %s, want simulated", name, r.Method)
		}
		if r.Coverage != 1.0 {
			t.Fatalf("%s simulated coverage = %v, missing %v", name, r.Coverage, r.FactsMissing)
		}
		if r.Score <= 0 {
			t.Fatalf("%s simulated score should still be computed, got %v", name, r.Score)
		}
	}
}

func TestPersonalizeDisabledLetterSkipsBackend(t *testing.T) {
	noAddress := map[string]any{
		"name":             "James Patterson",
		"mobile_app_usage": "Yes",
	}
	stub := &scriptedBackend{replies: passingReplies()}
	bundle, err := newPipeline(t, stub).Personalize(context.Background(), feeLetter, noAddress)
	if err != nil {
		t.Fatalf("personalize failed: %v", err)
	}
	letter := bundle.Results["letter"]
	if letter.State != channel.StateDisabled {
		t.Fatalf("letter state = %s, want DISABLED without a postal address", letter.State)
	}
	// email, sms, and app each call once; the disabled letter never does
	if got := stub.callCount(); got != 3 {
		t.Fatalf("backend called %d times, want 3", got)
	}
}

func TestPersonalizeRetriesOnceThenDegrades(t *testing.T) {
	stub := &scriptedBackend{} // every reply is "hello": no facts covered
	bundle, err := newPipeline(t, stub).Personalize(context.Background(), feeLetter, wealthyCustomer)
	if err != nil {
		t.Fatalf("personalize failed: %v", err)
	}
	if got := stub.callCount(); got != 8 {
		t.Fatalf("backend called %d times, want 4 first attempts + 4 retries", got)
	}
	if len(bundle.Degraded) != 4 {
		t.Fatalf("all four channels should be degraded, got %v", bundle.Degraded)
	}
	for name, r := range bundle.Results {
		if !r.Degraded {
			t.Fatalf("%s not flagged degraded", name)
		}
		if r.Content == "" {
			t.Fatalf("%s degraded result must still carry content", name)
		}
	}
}

func TestPersonalizeEmptyLetterFails(t *testing.T) {
	if _, err := newPipeline(t, backend.Offline{}).Personalize(context.Background(), "   \n", wealthyCustomer); err == nil {
		t.Fatalf("expected error for empty letter")
	}
}

func TestPersonalizeDeterministicAnalysis(t *testing.T) {
	stub := &scriptedBackend{replies: passingReplies()}
	p := newPipeline(t, stub)
	first, err := p.Personalize(context.Background(), feeLetter, wealthyCustomer)
	if err != nil {
		t.Fatalf("personalize failed: %v", err)
	}
	second, err := p.Personalize(context.Background(), feeLetter, wealthyCustomer)
	if err != nil {
		t.Fatalf("personalize failed: %v", err)
	}
	if first.RequestID == second.RequestID {
		t.Fatalf("request ids must be unique per call")
	}
	if len(first.Facts) != len(second.Facts) {
		t.Fatalf("fact extraction not deterministic: %d vs %d", len(first.Facts), len(second.Facts))
	}
	if first.Strategy != second.Strategy {
		t.Fatalf("strategy not deterministic")
	}
	if first.Profile != second.Profile {
		t.Fatalf("profile not deterministic")
	}
}
