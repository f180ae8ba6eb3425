package broker

import "fmt"

// Config holds broker tuning options.
type Config struct {
	// Strategy selects the utility strategy: "payout_rate" or
	// "account_growth".
	Strategy string `json:"strategy"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Strategy == "" {
		c.Strategy = StrategyPayoutRate
	}
}

// Validate checks the strategy name.
func (c Config) Validate() error {
	switch c.Strategy {
	case StrategyPayoutRate, StrategyAccountGrowth:
		return nil
	default:
		return fmt.Errorf("unknown utility strategy %q", c.Strategy)
	}
}
