package roster

import "fmt"

// Config defines engine-related settings. All bounds participate in the
// termination guarantee of the reallocation search and must stay finite.
type Config struct {
	// MaxPasses bounds the gap-repair sweeps per (program, session).
	MaxPasses int `json:"max_passes"`
	// ChainDepth bounds the recursive replacement search.
	ChainDepth int `json:"chain_depth"`
	// ReshuffleLimit bounds the cyclic retry loop over residual gaps.
	ReshuffleLimit int `json:"reshuffle_limit"`
	// PMJitter is the bounded random offset added to hierarchy scores in
	// the PM session. It must stay below 1.0, the gap between adjacent
	// role tiers, so it can reorder staff within a tier but never across
	// tiers.
	PMJitter float64 `json:"pm_jitter"`
	// Seed fixes the jitter source. Zero derives the seed from the
	// schedule date so repeat runs on the same day stay reproducible
	// while the ordering still varies from one day to the next.
	Seed int64 `json:"seed"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.MaxPasses == 0 {
		c.MaxPasses = 3
	}
	if c.ChainDepth == 0 {
		c.ChainDepth = 4
	}
	if c.ReshuffleLimit == 0 {
		c.ReshuffleLimit = 20
	}
	if c.PMJitter == 0 {
		c.PMJitter = 0.5
	}
}

// Validate checks the bounds.
func (c Config) Validate() error {
	if c.MaxPasses < 1 {
		return fmt.Errorf("max_passes must be at least 1, got %d", c.MaxPasses)
	}
	if c.ChainDepth < 1 || c.ChainDepth > 5 {
		return fmt.Errorf("chain_depth must be within [1,5], got %d", c.ChainDepth)
	}
	if c.ReshuffleLimit < 0 {
		return fmt.Errorf("reshuffle_limit must not be negative, got %d", c.ReshuffleLimit)
	}
	if c.PMJitter < 0 || c.PMJitter >= 1 {
		return fmt.Errorf("pm_jitter must be within [0,1), got %g", c.PMJitter)
	}
	return nil
}
