package broker

import "taximarket/core/model"

// TravelTimer supplies point-to-point travel times. A negative value means
// the trip cannot be driven.
type TravelTimer interface {
	TravelTime(a, b model.Coord) float64
}

// Pricing model constants: a fixed pickup overhead worth 25 time units,
// marked up by 1/0.9 so roughly a 10% margin is baked into the quote. When
// the map reports the destination unreachable a flat fare applies.
const (
	pickupOverhead = 25.0
	brokerMargin   = 0.9
	gridlockFare   = 150.0
)

// PricingEngine quotes fares. A fare is priced exactly once; callers guard
// on Fare.Priced before invoking Price.
type PricingEngine struct {
	times TravelTimer
}

// NewPricingEngine returns an engine quoting against the given travel-time
// source.
func NewPricingEngine(times TravelTimer) *PricingEngine {
	return &PricingEngine{times: times}
}

// Price computes the quote for the fare's trip.
func (p *PricingEngine) Price(f *model.Fare) float64 {
	tt := p.times.TravelTime(f.Origin, f.Destination)
	if tt < 0 {
		return gridlockFare
	}
	return (pickupOverhead + tt) / brokerMargin
}
