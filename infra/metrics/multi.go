package metrics

import (
	"errors"

	coremetrics "taximarket/core/metrics"
)

// MultiSink fans records out to several sinks. Errors are collected and
// joined; one failing sink does not stop the others.
type MultiSink struct {
	sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a sink fanning out to all given sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// RecordAllocations implements coremetrics.MetricsSink.
func (m *MultiSink) RecordAllocations(recs []coremetrics.AllocationRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordAllocations(recs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordBroadcast forwards to sinks implementing BroadcastRecorder.
func (m *MultiSink) RecordBroadcast(rec coremetrics.BroadcastRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if br, ok := s.(coremetrics.BroadcastRecorder); ok {
			if err := br.RecordBroadcast(rec); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecordPayment forwards to sinks implementing PaymentRecorder.
func (m *MultiSink) RecordPayment(rec coremetrics.PaymentRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if pr, ok := s.(coremetrics.PaymentRecorder); ok {
			if err := pr.RecordPayment(rec); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that exposes a Close method.
func (m *MultiSink) Close() {
	for _, s := range m.sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
