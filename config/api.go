package config

import "fmt"

// APIConfig defines settings for the run-log HTTP endpoint.
type APIConfig struct {
	// Addr, when non-empty, serves the run-log query endpoint on this
	// address, e.g. ":8880".
	Addr string `json:"addr"`
	// Token, when non-empty, requires a matching bearer token on every
	// request.
	Token string `json:"token"`
}

// Validate checks field consistency.
func (c APIConfig) Validate() error {
	if c.Token != "" && c.Addr == "" {
		return fmt.Errorf("api token set but addr is empty")
	}
	return nil
}
