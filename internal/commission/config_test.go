package commission

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "commission.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigReadsRate(t *testing.T) {
	path := writeConfig(t, "rate_bps = 150\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.RateBps != 150 {
		t.Fatalf("rate = %d, want 150", cfg.RateBps)
	}
}

func TestLoadConfigKeepsDefaultWhenAbsent(t *testing.T) {
	path := writeConfig(t, "# no overrides\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.RateBps != DefaultRateBps {
		t.Fatalf("rate = %d, want default %d", cfg.RateBps, DefaultRateBps)
	}
}

func TestLoadConfigRejectsRateAboveDenominator(t *testing.T) {
	path := writeConfig(t, "rate_bps = 10001\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for rate above 10000")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	if err := (Config{RateBps: 10_000}).Validate(); err != nil {
		t.Fatalf("100%% rate should validate: %v", err)
	}
	if err := (Config{RateBps: 10_001}).Validate(); err == nil {
		t.Fatalf("rate above 10000 should fail validation")
	}
}
