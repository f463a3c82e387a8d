// File path: internal/facts/classify.go
package facts

import "strings"

var (
	regulatoryTerms = []string{
		"terms and conditions", "regulation", "regulatory", "compliance",
		"required by law", "fee", "charge", "tariff", "interest rate",
	}
	promotionalTerms = []string{
		"offer", "exclusive", "reward", "upgrade", "introducing", "new feature",
		"free", "cashback",
	}
	urgentTerms = []string{
		"immediately", "urgent", "as soon as possible", "deadline", "final notice",
	}
)

// Classify grades the letter by keyword rules. The result steers channel
// emphasis and letter enclosures; it deliberately avoids the generation
// backend so classification stays reproducible.
func Classify(letter string, fs []MandatoryFact) Classification {
	lower := strings.ToLower(letter)

	cls := Classification{Class: ClassInformational, Urgency: UrgencyLow}
	if containsAny(lower, regulatoryTerms) {
		cls.Class = ClassRegulatory
		cls.ComplianceRequired = true
	} else if containsAny(lower, promotionalTerms) {
		cls.Class = ClassPromotional
	}

	for _, f := range fs {
		switch f.Kind {
		case KindActionFlag:
			if f.Normalized == "action-required" {
				cls.ActionRequired = true
			}
		case KindDate, KindDeadlineTime:
			if cls.Urgency == UrgencyLow {
				cls.Urgency = UrgencyMedium
			}
		}
	}
	if containsAny(lower, urgentTerms) || (cls.ActionRequired && cls.Class == ClassRegulatory) {
		cls.Urgency = UrgencyHigh
	}
	return cls
}

func containsAny(lower string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
