package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "taximarket/core/metrics"
)

// PromSink records allocation and payment events in Prometheus metrics.
type PromSink struct {
	allocations *prometheus.CounterVec
	utility     prometheus.Histogram
	payments    prometheus.Counter
}

// NewPromSink registers sink metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	allocations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "allocation_events_total",
		Help: "Total number of committed taxi/fare allocations",
	}, []string{"taxi_id"})
	utility := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "allocation_utility",
		Help:    "Utility of committed allocations",
		Buckets: prometheus.DefBuckets,
	})
	payments := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payment_amount_total",
		Help: "Total fare payments received",
	})

	if err := reg.Register(allocations); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			allocations = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(utility); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			utility = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(payments); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			payments = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	return &PromSink{allocations: allocations, utility: utility, payments: payments}, nil
}

// RecordAllocations implements coremetrics.MetricsSink.
func (s *PromSink) RecordAllocations(recs []coremetrics.AllocationRecord) error {
	for _, r := range recs {
		s.allocations.WithLabelValues(r.TaxiID).Inc()
		s.utility.Observe(r.Utility)
	}
	return nil
}

// RecordPayment implements coremetrics.PaymentRecorder.
func (s *PromSink) RecordPayment(rec coremetrics.PaymentRecord) error {
	s.payments.Add(rec.Amount)
	return nil
}
