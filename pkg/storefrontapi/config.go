package storefrontapi

import "time"

// Config represents the configuration for the storefront API client
type Config struct {
	// BaseURL is the API root, e.g. https://api.example.com/api
	BaseURL string

	// Timeout bounds a single HTTP round trip
	Timeout time.Duration

	// BreakerFailures is the number of consecutive transport failures that
	// opens the circuit
	BreakerFailures uint32

	// BreakerCooldown is how long the circuit stays open before probing
	BreakerCooldown time.Duration
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrInvalidConfig
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = 5
	}
	if c.BreakerCooldown <= 0 {
		c.BreakerCooldown = 30 * time.Second
	}
	return nil
}
