package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/mothvane/bridgectl/internal/bridge"
	"github.com/mothvane/bridgectl/internal/commission"
	"github.com/mothvane/bridgectl/internal/upgrade"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bridgectl.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppConfigDefaults(t *testing.T) {
	cfg, err := loadAppConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.BridgeProgram.Equals(bridge.DefaultProgramID) {
		t.Fatalf("bridge program = %s", cfg.BridgeProgram)
	}
	if !cfg.CommissionProgram.Equals(commission.DefaultProgramID) {
		t.Fatalf("commission program = %s", cfg.CommissionProgram)
	}
	if !cfg.UpgradeProgram.Equals(upgrade.DefaultProgramID) {
		t.Fatalf("upgrade program = %s", cfg.UpgradeProgram)
	}
	if cfg.Commission.RateBps != commission.DefaultRateBps {
		t.Fatalf("rate = %d, want %d", cfg.Commission.RateBps, commission.DefaultRateBps)
	}
}

func TestLoadAppConfigOverrides(t *testing.T) {
	custom := solana.NewWallet().PublicKey()
	path := writeConfig(t, `
bridge_program = "`+custom.String()+`"

[commission]
rate_bps = 75
`)
	cfg, err := loadAppConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.BridgeProgram.Equals(custom) {
		t.Fatalf("bridge program = %s, want %s", cfg.BridgeProgram, custom)
	}
	// Untouched keys keep defaults.
	if !cfg.CommissionProgram.Equals(commission.DefaultProgramID) {
		t.Fatalf("commission program = %s", cfg.CommissionProgram)
	}
	if cfg.Commission.RateBps != 75 {
		t.Fatalf("rate = %d, want 75", cfg.Commission.RateBps)
	}
}

func TestLoadAppConfigRejectsBadKey(t *testing.T) {
	path := writeConfig(t, "bridge_program = \"not-base58!\"\n")
	if _, err := loadAppConfig(path); err == nil {
		t.Fatalf("expected error for malformed program id")
	}
}

func TestLoadAppConfigRejectsBadRate(t *testing.T) {
	path := writeConfig(t, "[commission]\nrate_bps = 20000\n")
	if _, err := loadAppConfig(path); err == nil {
		t.Fatalf("expected error for rate above 10000")
	}
}
