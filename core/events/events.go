// Package events defines the domain events published on the internal bus.
package events

import "taximarket/core/model"

// FareBroadcastEvent is emitted when a fare has been priced and announced to
// the fleet. Informed carries the number of taxis that received the offer.
type FareBroadcastEvent struct {
	Origin      model.Coord
	Destination model.Coord
	Price       float64
	Informed    int
	Tick        int64
}

// AllocationEvent is emitted when the matching engine commits a taxi to a
// fare.
type AllocationEvent struct {
	Origin      model.Coord
	Destination model.Coord
	TaxiID      string
	Utility     float64
	Price       float64
	Tick        int64
}

// CancellationEvent is emitted when a fare is withdrawn. TaxiID is empty when
// the fare was never allocated.
type CancellationEvent struct {
	Origin      model.Coord
	Destination model.Coord
	CallTime    int64
	TaxiID      string
}

// PaymentEvent is emitted when a completed fare pays the broker. Revenue is
// the ledger total after the payment.
type PaymentEvent struct {
	Amount  float64
	Revenue float64
}
