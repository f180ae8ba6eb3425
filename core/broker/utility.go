package broker

import (
	"fmt"
	"math"

	"taximarket/core/model"
)

// UtilityStrategy scores how attractive a (taxi, fare) pairing is. Higher is
// better. The strategy is chosen once at construction; the matching engine
// never inspects which one is active.
type UtilityStrategy interface {
	Score(t model.Taxi, f *model.Fare) float64
}

// Strategy names accepted by NewStrategy.
const (
	StrategyPayoutRate    = "payout_rate"
	StrategyAccountGrowth = "account_growth"
)

// NewStrategy returns the named utility strategy.
func NewStrategy(name string) (UtilityStrategy, error) {
	switch name {
	case StrategyPayoutRate:
		return PayoutRate{}, nil
	case StrategyAccountGrowth:
		return AccountGrowth{}, nil
	default:
		return nil, fmt.Errorf("broker: unknown utility strategy %q", name)
	}
}

// PayoutRate scores a pairing by fare revenue per unit of total commitment:
// price divided by the trip time plus the repositioning time to reach the
// origin. Unreachable legs score 0, so any reachable bidder dominates.
type PayoutRate struct{}

func (PayoutRate) Score(t model.Taxi, f *model.Fare) float64 {
	trip := t.PlanPath(f.Origin, f.Destination)
	reposition := t.PlanPath(t.Location(), f.Origin)
	if !trip.Reachable() || !reposition.Reachable() {
		return 0
	}
	return f.Price / (trip.Time + reposition.Time)
}

// AccountGrowth scores a pairing by the ratio of the taxi's projected
// post-fare balance to its current balance. Travel time is added to the
// monetary balance as-is; the ranking only needs a consistent ordering, not
// dimensional correctness. Unreachable legs score negative infinity so the
// taxi is never selected.
type AccountGrowth struct{}

func (AccountGrowth) Score(t model.Taxi, f *model.Fare) float64 {
	trip := t.PlanPath(f.Origin, f.Destination)
	reposition := t.PlanPath(t.Location(), f.Origin)
	if !trip.Reachable() || !reposition.Reachable() {
		return math.Inf(-1)
	}
	before := t.Account()
	after := before + f.Price + trip.Time + reposition.Time
	return after / before
}
