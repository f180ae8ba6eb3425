package metrics

import (
	"fmt"

	coremetrics "taximarket/core/metrics"
)

// New builds the configured metrics sinks. With no sinks configured a
// NopSink is returned.
func New(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var sinks []coremetrics.MetricsSink
	for _, sc := range cfg.Sinks {
		switch sc.Type {
		case "prometheus":
			s, err := NewPromSink()
			if err != nil {
				return nil, fmt.Errorf("prometheus sink: %w", err)
			}
			sinks = append(sinks, s)
		case "influx":
			sinks = append(sinks, NewInfluxSinkWithFallback(sc.URL, sc.Token, sc.Org, sc.Bucket))
		}
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return NewMultiSink(sinks...), nil
	}
}
