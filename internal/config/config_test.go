// File path: internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultThresholds(t *testing.T) {
	cfg := Default()
	if cfg.SMS.MaxLength != 160 {
		t.Fatalf("sms max length = %d", cfg.SMS.MaxLength)
	}
	if cfg.App.MaxLength != 100 {
		t.Fatalf("app max length = %d", cfg.App.MaxLength)
	}
	if cfg.Letter.MinLength != 500 || cfg.Letter.MaxLength != 10000 {
		t.Fatalf("letter bounds = [%d,%d]", cfg.Letter.MinLength, cfg.Letter.MaxLength)
	}
	if cfg.Backend.CallTimeout.Std() != 30*time.Second {
		t.Fatalf("call timeout = %s", cfg.Backend.CallTimeout.Std())
	}
	if cfg.Gate.MinCoverage != 1.0 {
		t.Fatalf("default gate requires all facts, got %f", cfg.Gate.MinCoverage)
	}
	if _, ok := cfg.Policy["letter"]; !ok {
		t.Fatalf("letter eligibility rule missing from defaults")
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commsforge.yaml")
	body := "backend:\n  call_timeout: 5s\n  max_concurrent: 4\nsms:\n  max_length: 140\npolicy:\n  sms: 'profile[\"phone_calls\"] >= 0'\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.CallTimeout.Std() != 5*time.Second {
		t.Fatalf("timeout override not applied: %s", cfg.Backend.CallTimeout.Std())
	}
	if cfg.Backend.MaxConcurrent != 4 {
		t.Fatalf("concurrency override not applied: %d", cfg.Backend.MaxConcurrent)
	}
	if cfg.SMS.MaxLength != 140 {
		t.Fatalf("sms override not applied: %d", cfg.SMS.MaxLength)
	}
	if cfg.SMS.OptOutFooter == "" {
		t.Fatalf("unset fields must keep defaults")
	}
	if _, ok := cfg.Policy["letter"]; !ok {
		t.Fatalf("default policy entries must survive overlay")
	}
	if _, ok := cfg.Policy["sms"]; !ok {
		t.Fatalf("new policy entry missing")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("backend:\n  call_timeout: soon\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected duration parse error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := Load(""); err != nil {
		t.Fatalf("empty path should return defaults: %v", err)
	}
}
