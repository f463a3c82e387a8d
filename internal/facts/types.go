// File path: internal/facts/types.go
package facts

// Kind identifies the category of a mandatory fact. Coverage checks compare
// facts of matching kind by normalized value, so two renderings of the same
// datum ("£5" and "GBP 5.00") are treated as equal.
type Kind string

const (
	KindDate         Kind = "date"
	KindAmount       Kind = "amount"
	KindAmountChange Kind = "amount-change"
	KindDeadlineTime Kind = "deadline-time"
	KindPhoneNumber  Kind = "phone-number"
	KindActionFlag   Kind = "action-flag"
)

// MandatoryFact is a regulated or operationally critical datum lifted from
// the source letter. Immutable once extracted: every derived channel output
// must contain a normalized-equal representation.
type MandatoryFact struct {
	Kind       Kind   `json:"kind"`
	Text       string `json:"text"`       // canonical text as it appears in the letter
	Normalized string `json:"normalized"` // formatting-independent value
	// Parts holds both halves of an amount-change pair. Losing either half
	// downstream is a coverage failure, not a partial success.
	Parts []string `json:"parts,omitempty"`
	Start int      `json:"start"`
	End   int      `json:"end"`
}

// DocumentClass is the coarse purpose of the source letter.
type DocumentClass string

const (
	ClassRegulatory    DocumentClass = "REGULATORY"
	ClassPromotional   DocumentClass = "PROMOTIONAL"
	ClassInformational DocumentClass = "INFORMATIONAL"
)

// Urgency grades how quickly the customer is expected to act.
type Urgency string

const (
	UrgencyHigh   Urgency = "HIGH"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyLow    Urgency = "LOW"
)

// Classification summarises the letter for downstream content emphasis and
// enclosure selection. Derived by keyword rules so it stays verifiable.
type Classification struct {
	Class              DocumentClass `json:"class"`
	Urgency            Urgency       `json:"urgency"`
	ActionRequired     bool          `json:"action_required"`
	ComplianceRequired bool          `json:"compliance_required"`
}
