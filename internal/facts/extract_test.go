// File path: internal/facts/extract_test.go
package facts

import (
	"strings"
	"testing"
)

const feeLetter = "Dear Customer,\n\n" +
	"Your monthly account fee will increase from £5 to £7.50 on 1 March, " +
	"effective 11:59pm. No action is required from you. If you have questions, " +
	"call us on 0345 300 0000.\n\nYours sincerely,\nThe Bank"

func TestExtractFeeChangeLetter(t *testing.T) {
	fs, err := Extract(feeLetter)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	byKind := make(map[Kind][]MandatoryFact)
	for _, f := range fs {
		byKind[f.Kind] = append(byKind[f.Kind], f)
	}

	changes := byKind[KindAmountChange]
	if len(changes) != 1 {
		t.Fatalf("expected one amount-change fact, got %d (%+v)", len(changes), fs)
	}
	if changes[0].Normalized != "5.00->7.50" {
		t.Fatalf("unexpected amount-change normalization %q", changes[0].Normalized)
	}
	if len(changes[0].Parts) != 2 {
		t.Fatalf("amount-change must record both halves, got %v", changes[0].Parts)
	}

	if got := byKind[KindAmount]; len(got) != 0 {
		t.Fatalf("paired amounts must not also appear as standalone facts: %+v", got)
	}

	dates := byKind[KindDate]
	if len(dates) != 1 || dates[0].Normalized != "1 march" {
		t.Fatalf("expected date fact for 1 March, got %+v", dates)
	}

	times := byKind[KindDeadlineTime]
	if len(times) != 1 || times[0].Normalized != "11:59pm" {
		t.Fatalf("expected deadline-time 11:59pm, got %+v", times)
	}

	phones := byKind[KindPhoneNumber]
	if len(phones) != 1 || phones[0].Normalized != "03453000000" {
		t.Fatalf("expected phone fact, got %+v", phones)
	}

	actions := byKind[KindActionFlag]
	if len(actions) != 1 || actions[0].Normalized != "no-action" {
		t.Fatalf("expected no-action flag, got %+v", actions)
	}
}

func TestExtractOrderedBySourcePosition(t *testing.T) {
	fs, err := Extract(feeLetter)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	for i := 1; i < len(fs); i++ {
		if fs[i].Start < fs[i-1].Start {
			t.Fatalf("facts out of source order: %+v", fs)
		}
	}
}

func TestExtractUnpairedAmountsStaySeparate(t *testing.T) {
	fs, err := Extract("Your balance is £120.50 and your savings hold £9.99.")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	amounts := 0
	for _, f := range fs {
		if f.Kind == KindAmountChange {
			t.Fatalf("no fee vocabulary present, pair should not form: %+v", f)
		}
		if f.Kind == KindAmount {
			amounts++
		}
	}
	if amounts != 2 {
		t.Fatalf("expected two amount facts, got %d", amounts)
	}
}

func TestExtractEmptyLetter(t *testing.T) {
	if _, err := Extract("   \n  "); err == nil {
		t.Fatalf("expected error for empty letter")
	}
}

func TestAmountNormalizationCurrencyForms(t *testing.T) {
	cases := map[string]string{
		"£5":        "5.00",
		"GBP 5.00":  "5.00",
		"£1,250.75": "1250.75",
		"$40":       "40.00",
	}
	for text, want := range cases {
		got, err := normalizeAmount(text)
		if err != nil {
			t.Fatalf("normalize %q: %v", text, err)
		}
		if got != want {
			t.Fatalf("normalize %q = %q, want %q", text, got, want)
		}
	}
}

func TestCoveredAmountIgnoresFormatting(t *testing.T) {
	fs, err := Extract("A fee of £5 applies.")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(fs) != 1 || fs[0].Kind != KindAmount {
		t.Fatalf("unexpected facts: %+v", fs)
	}
	if !Covered("The charge is GBP 5.00 per month.", fs[0]) {
		t.Fatalf("GBP 5.00 should cover £5")
	}
	if Covered("The charge is £6.00 per month.", fs[0]) {
		t.Fatalf("different amount must not count as coverage")
	}
}

func TestCoverageAndMissing(t *testing.T) {
	fs, err := Extract(feeLetter)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	content := "Fee change: £5 becomes £7.50 from 1 March at 11:59pm. " +
		"No action required. Call 0345 300 0000."
	if got := Coverage(content, fs); got != 1.0 {
		t.Fatalf("expected full coverage, got %f (missing %+v)", got, Missing(content, fs))
	}

	partial := "Fee change: £5 becomes £7.50."
	missing := Missing(partial, fs)
	if len(missing) == 0 {
		t.Fatalf("expected missing facts for partial content")
	}
	for _, f := range missing {
		if f.Kind == KindAmountChange {
			t.Fatalf("amount pair should be covered: %+v", f)
		}
	}
}

func TestCoveredAmountChangeNeedsBothHalves(t *testing.T) {
	fs, err := Extract("The fee moves from £5 to £7.50 next month.")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	var change *MandatoryFact
	for i := range fs {
		if fs[i].Kind == KindAmountChange {
			change = &fs[i]
		}
	}
	if change == nil {
		t.Fatalf("expected amount-change fact, got %+v", fs)
	}
	if Covered("Your fee is now £7.50.", *change) {
		t.Fatalf("losing the old amount is a coverage failure, not partial success")
	}
	if !Covered("Was £5.00, now £7.50.", *change) {
		t.Fatalf("both halves present should count as covered")
	}
}

func TestCleanNormalizesWhitespace(t *testing.T) {
	raw := "Dear\tCustomer,\r\n\r\n\r\n\r\nHello   world.\n"
	got := Clean(raw)
	if strings.Contains(got, "\r") || strings.Contains(got, "\t") {
		t.Fatalf("control characters left in cleaned text: %q", got)
	}
	if strings.Contains(got, "\n\n\n") {
		t.Fatalf("newline runs not collapsed: %q", got)
	}
	if strings.Contains(got, "  ") {
		t.Fatalf("space runs not collapsed: %q", got)
	}
}

func TestClassify(t *testing.T) {
	fs, err := Extract(feeLetter)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	cls := Classify(feeLetter, fs)
	if cls.Class != ClassRegulatory {
		t.Fatalf("fee letter should classify regulatory, got %s", cls.Class)
	}
	if !cls.ComplianceRequired {
		t.Fatalf("regulatory letters require compliance handling")
	}
	if cls.ActionRequired {
		t.Fatalf("letter says no action required")
	}

	promo := "Introducing our exclusive cashback offer for app users."
	if got := Classify(promo, nil); got.Class != ClassPromotional {
		t.Fatalf("expected promotional, got %s", got.Class)
	}
	if got := Classify("We have updated our branch opening hours.", nil); got.Class != ClassInformational {
		t.Fatalf("expected informational, got %s", got.Class)
	}
}
