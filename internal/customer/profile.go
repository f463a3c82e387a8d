// File path: internal/customer/profile.go
package customer

import (
	"fmt"
	"strconv"
	"strings"
)

// Unknown is the sentinel for absent string attributes. Downstream code can
// rely on every Profile field holding a defined value.
const Unknown = "unknown"

// Affinity values derived from digital engagement.
const (
	AffinityDigitalFirst     = "digital-first"
	AffinityTraditionalFirst = "traditional-first"
	AffinityBalanced         = "balanced"
)

// Tone values derived from the customer's age band.
const (
	ToneFormal       = "formal"
	ToneModern       = "modern"
	ToneProfessional = "professional"
)

// Profile is the canonical customer snapshot consumed by every generator.
// Built once per request and never mutated afterwards.
type Profile struct {
	Name              string  `json:"name"`
	PreferredLanguage string  `json:"preferred_language"`
	Age               int     `json:"age"` // 0 when unknown
	AgeBand           string  `json:"age_band"`
	AccountBalance    float64 `json:"account_balance"`
	IncomeTier        string  `json:"income_tier"`
	TenureYears       int     `json:"tenure_years"`
	DigitalLogins     int     `json:"digital_logins"`
	MobileAppUsage    string  `json:"mobile_app_usage"`
	EmailOpens        int     `json:"email_opens"`
	BranchVisits      int     `json:"branch_visits"`
	PhoneCalls        int     `json:"phone_calls"`
	EngagementScore   float64 `json:"engagement_score"`
	ChannelAffinity   string  `json:"channel_affinity"`
	Tone              string  `json:"tone"`
	NeedsSupport      bool    `json:"needs_support"`
	LifeEvent         string  `json:"life_event"`
	FamilyStatus      string  `json:"family_status"`
	AccessibilityNeed string  `json:"accessibility_needs"`
	Employment        string  `json:"employment_status"`
	PostalAddress     string  `json:"postal_address"`
}

// BuildProfile normalizes a raw customer record into a Profile. Pure and
// total: absent fields resolve to defaults (ProfileFieldMissing is not an
// error) and identical input always yields an identical profile.
func BuildProfile(raw map[string]any) Profile {
	p := Profile{
		Name:              stringField(raw, "name", Unknown),
		PreferredLanguage: stringField(raw, "preferred_language", "English"),
		Age:               intField(raw, "age", 0),
		AccountBalance:    floatField(raw, "account_balance", 0),
		IncomeTier:        stringField(raw, "income_tier", Unknown),
		TenureYears:       intField(raw, "years_with_bank", 0),
		DigitalLogins:     intField(raw, "digital_logins_per_month", 0),
		MobileAppUsage:    stringField(raw, "mobile_app_usage", Unknown),
		EmailOpens:        intField(raw, "email_opens_per_month", 0),
		BranchVisits:      intField(raw, "branch_visits_per_month", 0),
		PhoneCalls:        intField(raw, "phone_calls_per_month", 0),
		NeedsSupport:      boolField(raw, "needs_support", false),
		LifeEvent:         stringField(raw, "recent_life_events", "None"),
		FamilyStatus:      stringField(raw, "family_status", Unknown),
		AccessibilityNeed: stringField(raw, "accessibility_needs", "None"),
		Employment:        stringField(raw, "employment_status", Unknown),
		PostalAddress:     stringField(raw, "postal_address", ""),
	}
	p.AgeBand = ageBand(p.Age)
	p.Tone = toneForAge(p.Age)
	p.EngagementScore = engagementScore(p.DigitalLogins, p.MobileAppUsage, p.EmailOpens)
	p.ChannelAffinity = affinityForLogins(p.DigitalLogins)
	return p
}

// AsMap flattens the profile for policy evaluation. Keys mirror the raw
// record names so eligibility expressions read naturally.
func (p Profile) AsMap() map[string]any {
	return map[string]any{
		"name":                p.Name,
		"preferred_language":  p.PreferredLanguage,
		"age":                 p.Age,
		"age_band":            p.AgeBand,
		"account_balance":     p.AccountBalance,
		"income_tier":         p.IncomeTier,
		"years_with_bank":     p.TenureYears,
		"digital_logins":      p.DigitalLogins,
		"mobile_app_usage":    p.MobileAppUsage,
		"email_opens":         p.EmailOpens,
		"branch_visits":       p.BranchVisits,
		"phone_calls":         p.PhoneCalls,
		"engagement_score":    p.EngagementScore,
		"channel_affinity":    p.ChannelAffinity,
		"tone":                p.Tone,
		"needs_support":       p.NeedsSupport,
		"life_event":          p.LifeEvent,
		"family_status":       p.FamilyStatus,
		"accessibility_needs": p.AccessibilityNeed,
		"employment_status":   p.Employment,
		"postal_address":      p.PostalAddress,
	}
}

// FirstName returns the leading name token for informal channels.
func (p Profile) FirstName() string {
	if p.Name == Unknown || strings.TrimSpace(p.Name) == "" {
		return "Customer"
	}
	return strings.Fields(p.Name)[0]
}

func ageBand(age int) string {
	switch {
	case age <= 0:
		return Unknown
	case age < 35:
		return "under-35"
	case age <= 60:
		return "35-60"
	default:
		return "over-60"
	}
}

func toneForAge(age int) string {
	switch {
	case age <= 0:
		return ToneProfessional
	case age > 60:
		return ToneFormal
	case age < 35:
		return ToneModern
	default:
		return ToneProfessional
	}
}

// engagementScore weights monthly logins, the app usage flag, and email
// opens into [0,1]. The components are clamped so one hyperactive metric
// cannot mask disengagement elsewhere.
func engagementScore(logins int, appUsage string, emailOpens int) float64 {
	score := 0.5*clamp01(float64(logins)/30) + 0.3*clamp01(float64(emailOpens)/30)
	if strings.EqualFold(appUsage, "yes") {
		score += 0.2
	}
	return clamp01(score)
}

func affinityForLogins(logins int) string {
	switch {
	case logins >= 20:
		return AffinityDigitalFirst
	case logins < 5:
		return AffinityTraditionalFirst
	default:
		return AffinityBalanced
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func stringField(raw map[string]any, key, fallback string) string {
	v, ok := raw[key]
	if !ok || v == nil {
		return fallback
	}
	switch value := v.(type) {
	case string:
		if strings.TrimSpace(value) == "" {
			return fallback
		}
		return strings.TrimSpace(value)
	default:
		return fmt.Sprint(value)
	}
}

func intField(raw map[string]any, key string, fallback int) int {
	v, ok := raw[key]
	if !ok || v == nil {
		return fallback
	}
	switch value := v.(type) {
	case int:
		return value
	case int64:
		return int(value)
	case float64:
		return int(value)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return fallback
}

func floatField(raw map[string]any, key string, fallback float64) float64 {
	v, ok := raw[key]
	if !ok || v == nil {
		return fallback
	}
	switch value := v.(type) {
	case float64:
		return value
	case int:
		return float64(value)
	case int64:
		return float64(value)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return fallback
}

func boolField(raw map[string]any, key string, fallback bool) bool {
	v, ok := raw[key]
	if !ok || v == nil {
		return fallback
	}
	switch value := v.(type) {
	case bool:
		return value
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return fallback
}
