package metrics

import "taximarket/core/model"

// AllocationRecord captures one committed taxi/fare assignment.
type AllocationRecord struct {
	TaxiID      string
	Origin      model.Coord
	Destination model.Coord
	Price       float64
	Utility     float64
	Tick        int64
}

// BroadcastRecord captures a priced fare announced to the fleet.
type BroadcastRecord struct {
	Origin      model.Coord
	Destination model.Coord
	Price       float64
	Informed    int
	Tick        int64
}

// PaymentRecord captures a received fare payment. Revenue is the ledger
// total after the payment.
type PaymentRecord struct {
	Amount  float64
	Revenue float64
	Tick    int64
}

// MetricsSink records committed allocations for observability purposes.
type MetricsSink interface {
	RecordAllocations(recs []AllocationRecord) error
}

// BroadcastRecorder is implemented by sinks able to record fare broadcasts.
type BroadcastRecorder interface {
	RecordBroadcast(rec BroadcastRecord) error
}

// PaymentRecorder is implemented by sinks able to record payments.
type PaymentRecorder interface {
	RecordPayment(rec PaymentRecord) error
}

// NopSink implements all recorder interfaces with no-op methods.
type NopSink struct{}

func (NopSink) RecordAllocations([]AllocationRecord) error { return nil }
func (NopSink) RecordBroadcast(BroadcastRecord) error      { return nil }
func (NopSink) RecordPayment(PaymentRecord) error          { return nil }
