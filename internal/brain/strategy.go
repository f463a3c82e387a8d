// File path: internal/brain/strategy.go
package brain

import (
	"strings"

	"github.com/commsforge/commsforge/internal/customer"
)

// Verbosity directives handed to generators.
const (
	VerbosityBrief    = "brief"
	VerbosityDetailed = "detailed"
)

// Strategy is the personalization plan derived from the customer profile.
// Pure function of the profile, no hidden state: the same customer always
// yields the same plan in every channel.
type Strategy struct {
	Tone            string `json:"tone"`
	ChannelEmphasis string `json:"channel_emphasis"`
	Verbosity       string `json:"verbosity"`

	MentionLoyalty         bool `json:"mention_loyalty"`
	MentionLifeEvent       bool `json:"mention_life_event"`
	EmphasizeSupport       bool `json:"emphasize_support"`
	MentionWealthTier      bool `json:"mention_wealth_tier"`
	MentionBudgeting       bool `json:"mention_budgeting"`
	MentionFamilyPlanning  bool `json:"mention_family_planning"`
	MentionBusinessBanking bool `json:"mention_business_banking"`
}

// DeriveStrategy applies the profile-driven rule table.
func DeriveStrategy(p customer.Profile) Strategy {
	s := Strategy{
		Tone:            p.Tone,
		ChannelEmphasis: p.ChannelAffinity,
		Verbosity:       VerbosityDetailed,
	}
	if p.ChannelAffinity == customer.AffinityDigitalFirst {
		s.Verbosity = VerbosityBrief
	}
	if p.AccountBalance > 20000 {
		s.MentionWealthTier = true
	}
	if p.AccountBalance < 1000 {
		s.MentionBudgeting = true
	}
	if p.TenureYears > 5 {
		s.MentionLoyalty = true
	}
	if p.LifeEvent != "None" && p.LifeEvent != customer.Unknown {
		s.MentionLifeEvent = true
	}
	if p.NeedsSupport || (p.AccessibilityNeed != "None" && p.AccessibilityNeed != customer.Unknown) {
		s.EmphasizeSupport = true
	}
	if strings.Contains(strings.ToLower(p.Employment), "self-employed") {
		s.MentionBusinessBanking = true
	}
	if strings.Contains(strings.ToLower(p.FamilyStatus), "children") {
		s.MentionFamilyPlanning = true
	}
	return s
}
