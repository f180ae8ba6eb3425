package simulator

import "fmt"

// Config holds simulation parameters.
type Config struct {
	// GridWidth and GridHeight size the street grid.
	GridWidth  int `json:"grid_width"`
	GridHeight int `json:"grid_height"`
	// Taxis is the fleet size.
	Taxis int `json:"taxis"`
	// Ticks is the number of simulated steps to run.
	Ticks int `json:"ticks"`
	// FareRate is the per-tick probability that a new fare appears.
	FareRate float64 `json:"fare_rate"`
	// FarePatience is how many ticks an unallocated fare waits before
	// abandoning its request.
	FarePatience int64 `json:"fare_patience"`
	// Seed makes runs reproducible.
	Seed int64 `json:"seed"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.GridWidth == 0 {
		c.GridWidth = 10
	}
	if c.GridHeight == 0 {
		c.GridHeight = 10
	}
	if c.Taxis == 0 {
		c.Taxis = 5
	}
	if c.Ticks == 0 {
		c.Ticks = 500
	}
	if c.FareRate == 0 {
		c.FareRate = 0.3
	}
	if c.FarePatience == 0 {
		c.FarePatience = 25
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.GridWidth < 2 || c.GridHeight < 2 {
		return fmt.Errorf("grid must be at least 2x2")
	}
	if c.Taxis < 0 {
		return fmt.Errorf("taxis must not be negative")
	}
	if c.FareRate < 0 || c.FareRate > 1 {
		return fmt.Errorf("fare_rate must be within [0,1]")
	}
	return nil
}
