package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/gagliardetto/solana-go"

	"github.com/mothvane/bridgectl/internal/bridge"
	"github.com/mothvane/bridgectl/internal/commission"
	"github.com/mothvane/bridgectl/internal/upgrade"
)

type appConfig struct {
	BridgeProgram     solana.PublicKey
	CommissionProgram solana.PublicKey
	UpgradeProgram    solana.PublicKey
	Commission        commission.Config
}

func defaultAppConfig() appConfig {
	return appConfig{
		BridgeProgram:     bridge.DefaultProgramID,
		CommissionProgram: commission.DefaultProgramID,
		UpgradeProgram:    upgrade.DefaultProgramID,
		Commission:        commission.DefaultConfig(),
	}
}

type fileConfig struct {
	BridgeProgram     string `toml:"bridge_program"`
	CommissionProgram string `toml:"commission_program"`
	UpgradeProgram    string `toml:"upgrade_program"`
	Commission        struct {
		RateBps uint16 `toml:"rate_bps"`
	} `toml:"commission"`
}

// loadAppConfig reads the optional toml config. A missing file keeps
// every default.
func loadAppConfig(path string) (appConfig, error) {
	cfg := defaultAppConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return appConfig{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("bridge_program") {
		cfg.BridgeProgram, err = solana.PublicKeyFromBase58(raw.BridgeProgram)
		if err != nil {
			return appConfig{}, fmt.Errorf("parse bridge_program: %w", err)
		}
	}
	if meta.IsDefined("commission_program") {
		cfg.CommissionProgram, err = solana.PublicKeyFromBase58(raw.CommissionProgram)
		if err != nil {
			return appConfig{}, fmt.Errorf("parse commission_program: %w", err)
		}
	}
	if meta.IsDefined("upgrade_program") {
		cfg.UpgradeProgram, err = solana.PublicKeyFromBase58(raw.UpgradeProgram)
		if err != nil {
			return appConfig{}, fmt.Errorf("parse upgrade_program: %w", err)
		}
	}
	if meta.IsDefined("commission", "rate_bps") {
		cfg.Commission.RateBps = raw.Commission.RateBps
	}

	if err := cfg.Commission.Validate(); err != nil {
		return appConfig{}, err
	}
	return cfg, nil
}
