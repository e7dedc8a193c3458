package commission

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// DefaultRateBps is used when a deployment ships no rate override.
const DefaultRateBps = 25

// Config is the commission-specific configuration. The rate lives
// outside the admin record: the record anchors trust, the deployment
// decides pricing.
type Config struct {
	RateBps uint16
}

func DefaultConfig() Config {
	return Config{RateBps: DefaultRateBps}
}

func (c Config) Validate() error {
	if c.RateBps > basisPointsDenominator {
		return fmt.Errorf("commission: rate %d bps exceeds %d", c.RateBps, basisPointsDenominator)
	}
	return nil
}

type fileConfig struct {
	RateBps uint16 `toml:"rate_bps"`
}

// LoadConfig reads the commission configuration from a toml file.
// Absent keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load commission config: %w", err)
	}

	if meta.IsDefined("rate_bps") {
		cfg.RateBps = raw.RateBps
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
