package broker

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	faresBroadcast   prometheus.Counter
	faresAllocated   prometheus.Counter
	faresCancelled   prometheus.Counter
	paymentsReceived prometheus.Counter
	revenueTotal     prometheus.Counter
	taxisServicing   prometheus.Gauge
	farePrice        prometheus.Histogram
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Counter, prometheus.Counter, prometheus.Counter, prometheus.Counter, prometheus.Counter, prometheus.Gauge, prometheus.Histogram) {
	broadcast := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fares_broadcast_total",
		Help: "Number of fares priced and broadcast to the fleet",
	})
	allocated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fares_allocated_total",
		Help: "Number of fares committed to a taxi",
	})
	cancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fares_cancelled_total",
		Help: "Number of fares withdrawn before completion",
	})
	payments := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payments_received_total",
		Help: "Number of fare payments received",
	})
	revenue := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "revenue_total",
		Help: "Accumulated fare revenue",
	})
	servicing := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "taxis_servicing_fares",
		Help: "Number of taxis currently servicing an allocated fare",
	})
	price := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fare_price",
		Help:    "Distribution of quoted fare prices",
		Buckets: prometheus.ExponentialBuckets(25, 2, 8),
	})
	return broadcast, allocated, cancelled, payments, revenue, servicing, price
}

func init() {
	faresBroadcast, faresAllocated, faresCancelled, paymentsReceived, revenueTotal, taxisServicing, farePrice = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers broker metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(faresBroadcast, faresAllocated, faresCancelled, paymentsReceived, revenueTotal, taxisServicing, farePrice)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	faresBroadcast, faresAllocated, faresCancelled, paymentsReceived, revenueTotal, taxisServicing, farePrice = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
