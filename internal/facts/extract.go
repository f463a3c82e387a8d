// File path: internal/facts/extract.go
package facts

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/commsforge/commsforge/internal/common"
)

const (
	amountPattern = `(?:£|\$|€|(?:GBP|USD|EUR)\s?)\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?`
	monthPattern  = `(?:january|february|march|april|may|june|july|august|september|october|november|december)`
)

var (
	amountRe      = regexp.MustCompile(amountPattern)
	changeRe      = regexp.MustCompile(`(?i)from\s+(` + amountPattern + `)\s+to\s+(` + amountPattern + `)`)
	ampmRe        = regexp.MustCompile(`(?i)\b\d{1,2}(?::\d{2})?\s?(?:am|pm)\b`)
	clockRe       = regexp.MustCompile(`\b(?:[01]?\d|2[0-3]):[0-5]\d\b`)
	numericDateRe = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
	dayMonthRe    = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(` + monthPattern + `)(?:\s+(\d{4}))?`)
	monthDayRe    = regexp.MustCompile(`(?i)\b(` + monthPattern + `)\s+(\d{1,2})(?:st|nd|rd|th)?(?:,\s*(\d{4}))?`)
	phoneRe       = regexp.MustCompile(`\b0\d{3}[ ]?\d{3}[ ]?\d{3,4}\b`)
)

var feeVocabulary = []string{"fee", "charge", "cost", "price", "tariff", "rate"}

// Action phrases are matched in order; the first polarity found at a given
// position wins.
var actionPhrases = []struct {
	phrase     string
	normalized string
}{
	{"no action is required", "no-action"},
	{"no action required", "no-action"},
	{"no action needed", "no-action"},
	{"you do not need to do anything", "no-action"},
	{"action required by", "action-required"},
	{"action is required", "action-required"},
	{"action required", "action-required"},
}

// Extract parses the source letter and returns the ordered sequence of
// mandatory facts. Extraction is pattern based so downstream coverage checks
// stay independently verifiable. Patterns that partially match but cannot be
// normalized are logged and excluded, never fabricated.
func Extract(letter string) ([]MandatoryFact, error) {
	if strings.TrimSpace(letter) == "" {
		return nil, fmt.Errorf("empty letter text")
	}
	logger := common.Logger()
	lower := strings.ToLower(letter)

	var out []MandatoryFact
	var taken [][2]int

	claim := func(start, end int) bool {
		for _, span := range taken {
			if start < span[1] && end > span[0] {
				return false
			}
		}
		taken = append(taken, [2]int{start, end})
		return true
	}

	// Old/new amount pairs near fee vocabulary become a single fact; both
	// halves must survive into every channel.
	for _, idx := range changeRe.FindAllStringSubmatchIndex(letter, -1) {
		start, end := idx[0], idx[1]
		oldText := letter[idx[2]:idx[3]]
		newText := letter[idx[4]:idx[5]]
		if !nearVocabulary(lower, start, feeVocabulary) {
			continue
		}
		oldNorm, errOld := normalizeAmount(oldText)
		newNorm, errNew := normalizeAmount(newText)
		if errOld != nil || errNew != nil {
			logger.Warn("facts: ambiguous amount pair skipped", "old", oldText, "new", newText)
			continue
		}
		if !claim(start, end) {
			continue
		}
		out = append(out, MandatoryFact{
			Kind:       KindAmountChange,
			Text:       fmt.Sprintf("%s to %s", oldText, newText),
			Normalized: oldNorm + "->" + newNorm,
			Parts:      []string{oldText, newText},
			Start:      start,
			End:        end,
		})
	}

	for _, idx := range amountRe.FindAllStringIndex(letter, -1) {
		text := letter[idx[0]:idx[1]]
		norm, err := normalizeAmount(text)
		if err != nil {
			logger.Warn("facts: ambiguous amount skipped", "text", text, "error", err)
			continue
		}
		if !claim(idx[0], idx[1]) {
			continue
		}
		out = append(out, MandatoryFact{Kind: KindAmount, Text: text, Normalized: norm, Start: idx[0], End: idx[1]})
	}

	for _, idx := range ampmRe.FindAllStringIndex(letter, -1) {
		text := letter[idx[0]:idx[1]]
		if !claim(idx[0], idx[1]) {
			continue
		}
		out = append(out, MandatoryFact{Kind: KindDeadlineTime, Text: text, Normalized: normalizeTime(text), Start: idx[0], End: idx[1]})
	}
	for _, idx := range clockRe.FindAllStringIndex(letter, -1) {
		text := letter[idx[0]:idx[1]]
		if !claim(idx[0], idx[1]) {
			continue
		}
		out = append(out, MandatoryFact{Kind: KindDeadlineTime, Text: text, Normalized: normalizeTime(text), Start: idx[0], End: idx[1]})
	}

	for _, idx := range dayMonthRe.FindAllStringSubmatchIndex(letter, -1) {
		text := letter[idx[0]:idx[1]]
		day := letter[idx[2]:idx[3]]
		month := letter[idx[4]:idx[5]]
		year := submatch(letter, idx, 3)
		if !validDay(day) {
			logger.Warn("facts: ambiguous date skipped", "text", text)
			continue
		}
		if !claim(idx[0], idx[1]) {
			continue
		}
		out = append(out, MandatoryFact{Kind: KindDate, Text: text, Normalized: normalizeDayMonth(day, month, year), Start: idx[0], End: idx[1]})
	}
	for _, idx := range monthDayRe.FindAllStringSubmatchIndex(letter, -1) {
		text := letter[idx[0]:idx[1]]
		month := letter[idx[2]:idx[3]]
		day := letter[idx[4]:idx[5]]
		year := submatch(letter, idx, 3)
		if !validDay(day) {
			logger.Warn("facts: ambiguous date skipped", "text", text)
			continue
		}
		if !claim(idx[0], idx[1]) {
			continue
		}
		out = append(out, MandatoryFact{Kind: KindDate, Text: text, Normalized: normalizeDayMonth(day, month, year), Start: idx[0], End: idx[1]})
	}
	for _, idx := range numericDateRe.FindAllStringIndex(letter, -1) {
		text := letter[idx[0]:idx[1]]
		norm, err := normalizeNumericDate(text)
		if err != nil {
			logger.Warn("facts: ambiguous date skipped", "text", text, "error", err)
			continue
		}
		if !claim(idx[0], idx[1]) {
			continue
		}
		out = append(out, MandatoryFact{Kind: KindDate, Text: text, Normalized: norm, Start: idx[0], End: idx[1]})
	}

	for _, idx := range phoneRe.FindAllStringIndex(letter, -1) {
		text := letter[idx[0]:idx[1]]
		if !claim(idx[0], idx[1]) {
			continue
		}
		out = append(out, MandatoryFact{Kind: KindPhoneNumber, Text: text, Normalized: digitsOnly(text), Start: idx[0], End: idx[1]})
	}

	for _, action := range actionPhrases {
		offset := 0
		for {
			pos := strings.Index(lower[offset:], action.phrase)
			if pos < 0 {
				break
			}
			start := offset + pos
			end := start + len(action.phrase)
			offset = end
			if !claim(start, end) {
				continue
			}
			out = append(out, MandatoryFact{
				Kind:       KindActionFlag,
				Text:       letter[start:end],
				Normalized: action.normalized,
				Start:      start,
				End:        end,
			})
		}
	}

	out = dedupe(out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	logger.Debug("facts: extraction complete", "count", len(out))
	return out, nil
}

func nearVocabulary(lower string, pos int, vocabulary []string) bool {
	start := pos - 120
	if start < 0 {
		start = 0
	}
	end := pos + 120
	if end > len(lower) {
		end = len(lower)
	}
	window := lower[start:end]
	for _, word := range vocabulary {
		if strings.Contains(window, word) {
			return true
		}
	}
	return false
}

func validDay(day string) bool {
	n, err := strconv.Atoi(day)
	return err == nil && n >= 1 && n <= 31
}

func submatch(s string, idx []int, group int) string {
	lo, hi := idx[2*group], idx[2*group+1]
	if lo < 0 || hi < 0 {
		return ""
	}
	return s[lo:hi]
}

func dedupe(fs []MandatoryFact) []MandatoryFact {
	seen := make(map[string]struct{}, len(fs))
	out := fs[:0]
	for _, f := range fs {
		key := string(f.Kind) + "|" + f.Normalized
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}

func normalizeAmount(text string) (string, error) {
	cleaned := strings.NewReplacer("£", "", "$", "", "€", "", "GBP", "", "USD", "", "EUR", "", ",", "", " ", "").Replace(text)
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return "", fmt.Errorf("parse amount %q: %w", text, err)
	}
	return value.StringFixed(2), nil
}

func normalizeTime(text string) string {
	return strings.ReplaceAll(strings.ToLower(text), " ", "")
}

func normalizeDayMonth(day, month, year string) string {
	day = strings.TrimLeft(day, "0")
	norm := day + " " + strings.ToLower(month)
	if year != "" {
		norm += " " + year
	}
	return norm
}

func normalizeNumericDate(text string) (string, error) {
	parts := strings.FieldsFunc(text, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) != 3 {
		return "", fmt.Errorf("unexpected date shape %q", text)
	}
	nums := make([]string, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return "", fmt.Errorf("parse date %q: %w", text, err)
		}
		nums[i] = strconv.Itoa(n)
	}
	return strings.Join(nums, "/"), nil
}

func digitsOnly(text string) string {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
