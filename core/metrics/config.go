package metrics

import "fmt"

// SinkConfig describes one metrics backend.
type SinkConfig struct {
	// Type selects the backend: "prometheus" or "influx".
	Type   string `json:"type"`
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// Config defines settings for metrics sinks.
type Config struct {
	// PrometheusPort exposes /metrics on this port when positive.
	PrometheusPort int          `json:"prometheus_port"`
	Sinks          []SinkConfig `json:"sinks"`
}

// Validate checks the sink declarations.
func (c Config) Validate() error {
	for _, s := range c.Sinks {
		switch s.Type {
		case "prometheus":
		case "influx":
			if s.URL == "" {
				return fmt.Errorf("influx sink requires a url")
			}
		default:
			return fmt.Errorf("unknown metrics sink %q", s.Type)
		}
	}
	return nil
}
