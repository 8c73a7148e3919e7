package recommend

import "fmt"

// Config holds the engine defaults used by AnywhereLinks.
type Config struct {
	// Threshold is the minimum combined score a candidate needs.
	// Stories usually supply their own through metadata.
	Threshold float64 `json:"threshold"`

	// TopN caps the anywhere links offered per node. Zero keeps all.
	TopN int `json:"top_n"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() *Config {
	return &Config{
		Threshold: 0.3,
		TopN:      3,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be in [0, 1], got %f", c.Threshold)
	}
	if c.TopN < 0 {
		return fmt.Errorf("top_n must be non-negative, got %d", c.TopN)
	}
	return nil
}
