// File path: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "30s" parse directly.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// BackendConfig bounds the outbound generation calls.
type BackendConfig struct {
	Model         string   `yaml:"model"`
	MaxConcurrent int      `yaml:"max_concurrent"`
	CallTimeout   Duration `yaml:"call_timeout"`
	MaxTokens     int      `yaml:"max_tokens"`
	Temperature   float64  `yaml:"temperature"`
}

// EmailConfig holds the email channel's structural thresholds.
type EmailConfig struct {
	MaxSubjectLength int `yaml:"max_subject_length"`
	MinBodyLength    int `yaml:"min_body_length"`
}

// SMSConfig holds the SMS channel's structural thresholds. MaxLength covers
// the whole message including facts and any regulatory footer.
type SMSConfig struct {
	MaxLength        int    `yaml:"max_length"`
	SegmentSize      int    `yaml:"segment_size"`
	MultiSegmentSize int    `yaml:"multi_segment_size"`
	OptOutFooter     string `yaml:"opt_out_footer"`
}

// AppConfig holds the in-app notification thresholds.
type AppConfig struct {
	MaxLength int `yaml:"max_length"`
}

// LetterConfig holds the formal letter's structural kit: length bounds,
// paragraph bounds, page math, letterhead/footer templates, and enclosures
// keyed by document class.
type LetterConfig struct {
	MinLength     int                 `yaml:"min_length"`
	MaxLength     int                 `yaml:"max_length"`
	MinParagraphs int                 `yaml:"min_paragraphs"`
	MaxParagraphs int                 `yaml:"max_paragraphs"`
	WordsPerPage  int                 `yaml:"words_per_page"`
	Letterhead    string              `yaml:"letterhead"`
	Footer        string              `yaml:"footer"`
	SupportFooter string              `yaml:"support_footer"`
	Enclosures    map[string][]string `yaml:"enclosures"`
}

// GateConfig holds the quality gate thresholds.
type GateConfig struct {
	MinCoverage   float64 `yaml:"min_coverage"`
	PassThreshold float64 `yaml:"pass_threshold"`
}

// Config is the read-only runtime configuration for the personalization
// core: structural thresholds per channel, eligibility policy expressions,
// and addressing tables. The core never mutates it.
type Config struct {
	Backend   BackendConfig     `yaml:"backend"`
	Email     EmailConfig       `yaml:"email"`
	SMS       SMSConfig         `yaml:"sms"`
	App       AppConfig         `yaml:"app"`
	Letter    LetterConfig      `yaml:"letter"`
	Gate      GateConfig        `yaml:"gate"`
	Policy    map[string]string `yaml:"policy"`
	Greetings map[string]string `yaml:"greetings"`
}

const defaultLetterhead = `Commonwealth Banking Group
1 Lombard Street
London EC3V 9AA

{date}

{customer_name}
{customer_address}

Reference: {reference}`

const defaultFooter = `---
Commonwealth Bank plc. Registered Office: 1 Lombard Street, London EC3V 9AA.
Registered in England and Wales no. 104022. Authorised by the Prudential Regulation Authority.`

const defaultSupportFooter = defaultFooter + `

We're here to support you. If you need assistance, please call us on 0345 300 0000.
Our specially trained team is available to help.`

// Default returns the standard configuration used when no overrides are
// provided.
func Default() Config {
	return Config{
		Backend: BackendConfig{
			Model:         "gpt-4o-mini",
			MaxConcurrent: 2,
			CallTimeout:   Duration(30 * time.Second),
			MaxTokens:     1500,
			Temperature:   0.4,
		},
		Email: EmailConfig{
			MaxSubjectLength: 78,
			MinBodyLength:    120,
		},
		SMS: SMSConfig{
			MaxLength:        160,
			SegmentSize:      160,
			MultiSegmentSize: 153,
			OptOutFooter:     " Reply STOP to opt out.",
		},
		App: AppConfig{
			MaxLength: 100,
		},
		Letter: LetterConfig{
			MinLength:     500,
			MaxLength:     10000,
			MinParagraphs: 3,
			MaxParagraphs: 8,
			WordsPerPage:  500,
			Letterhead:    defaultLetterhead,
			Footer:        defaultFooter,
			SupportFooter: defaultSupportFooter,
			Enclosures: map[string][]string{
				"REGULATORY":  {"Terms and Conditions", "Privacy Notice"},
				"PROMOTIONAL": {"Product Brochure", "Reply Form"},
			},
		},
		Gate: GateConfig{
			MinCoverage:   1.0,
			PassThreshold: 0.8,
		},
		Policy: map[string]string{
			"letter": `profile["postal_address"] != ""`,
			"app":    `profile["mobile_app_usage"] != "No"`,
		},
		Greetings: map[string]string{
			"Welsh":   "Annwyl",
			"Spanish": "Estimado/a",
			"French":  "Cher/Chère",
			"Polish":  "Szanowny/Szanowna",
		},
	}
}

// Load reads a YAML configuration file and overlays it on the defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
