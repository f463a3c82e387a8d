// File path: internal/facts/coverage.go
package facts

import "strings"

// Covered reports whether the generated content contains a normalized-equal
// representation of the fact. Amounts match irrespective of formatting,
// dates match with or without a year, and action flags match any phrase of
// the same polarity.
func Covered(content string, f MandatoryFact) bool {
	switch f.Kind {
	case KindAmount:
		return containsAmount(content, f.Normalized)
	case KindAmountChange:
		for _, half := range strings.Split(f.Normalized, "->") {
			if !containsAmount(content, half) {
				return false
			}
		}
		return true
	case KindDate:
		return containsDate(content, f.Normalized)
	case KindDeadlineTime:
		return containsTime(content, f.Normalized)
	case KindPhoneNumber:
		return strings.Contains(digitsOnly(content), f.Normalized)
	case KindActionFlag:
		return containsActionFlag(content, f.Normalized)
	default:
		return strings.Contains(strings.ToLower(content), strings.ToLower(f.Text))
	}
}

// Missing returns the normalized identifiers of facts absent from content,
// preserving extraction order.
func Missing(content string, fs []MandatoryFact) []MandatoryFact {
	var missing []MandatoryFact
	for _, f := range fs {
		if !Covered(content, f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// Coverage returns the fraction of facts present in content, in [0,1]. An
// empty fact list yields full coverage.
func Coverage(content string, fs []MandatoryFact) float64 {
	if len(fs) == 0 {
		return 1.0
	}
	found := 0
	for _, f := range fs {
		if Covered(content, f) {
			found++
		}
	}
	return float64(found) / float64(len(fs))
}

func containsAmount(content, normalized string) bool {
	for _, match := range amountRe.FindAllString(content, -1) {
		norm, err := normalizeAmount(match)
		if err != nil {
			continue
		}
		if norm == normalized {
			return true
		}
	}
	return false
}

func containsDate(content, normalized string) bool {
	for _, idx := range dayMonthRe.FindAllStringSubmatchIndex(content, -1) {
		day := content[idx[2]:idx[3]]
		month := content[idx[4]:idx[5]]
		year := submatch(content, idx, 3)
		if !validDay(day) {
			continue
		}
		if dateEquivalent(normalizeDayMonth(day, month, year), normalized) {
			return true
		}
	}
	for _, idx := range monthDayRe.FindAllStringSubmatchIndex(content, -1) {
		month := content[idx[2]:idx[3]]
		day := content[idx[4]:idx[5]]
		year := submatch(content, idx, 3)
		if !validDay(day) {
			continue
		}
		if dateEquivalent(normalizeDayMonth(day, month, year), normalized) {
			return true
		}
	}
	for _, match := range numericDateRe.FindAllString(content, -1) {
		norm, err := normalizeNumericDate(match)
		if err != nil {
			continue
		}
		if norm == normalized {
			return true
		}
	}
	return false
}

// dateEquivalent treats "1 march" and "1 march 2026" as the same day; the
// year is supplementary context, not a distinct fact.
func dateEquivalent(a, b string) bool {
	return a == b || strings.HasPrefix(a, b+" ") || strings.HasPrefix(b, a+" ")
}

func containsTime(content, normalized string) bool {
	for _, match := range ampmRe.FindAllString(content, -1) {
		if normalizeTime(match) == normalized {
			return true
		}
	}
	for _, match := range clockRe.FindAllString(content, -1) {
		if normalizeTime(match) == normalized {
			return true
		}
	}
	return false
}

func containsActionFlag(content, normalized string) bool {
	lower := strings.ToLower(content)
	for _, action := range actionPhrases {
		if action.normalized != normalized {
			continue
		}
		if strings.Contains(lower, action.phrase) {
			return true
		}
	}
	return false
}
