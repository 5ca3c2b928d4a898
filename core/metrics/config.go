package metrics

import "github.com/mpelletier/rosterd/core/factory"

// Config selects the sinks run outcomes are recorded to.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
	// PrometheusAddr, when non-empty, exposes the default registry over
	// HTTP on this address.
	PrometheusAddr string `json:"prometheus_addr" yaml:"prometheus_addr"`
}
