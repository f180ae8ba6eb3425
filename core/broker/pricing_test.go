package broker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"taximarket/core/model"
)

type stubTimer struct {
	travelTime float64
}

func (s stubTimer) TravelTime(a, b model.Coord) float64 { return s.travelTime }

func TestPricingEngine_MarkupFormula(t *testing.T) {
	p := NewPricingEngine(stubTimer{travelTime: 20})
	f := &model.Fare{Origin: model.Coord{X: 0, Y: 0}, Destination: model.Coord{X: 3, Y: 0}}
	require.InDelta(t, (25.0+20.0)/0.9, p.Price(f), 1e-9)
}

func TestPricingEngine_GridlockFlatFare(t *testing.T) {
	p := NewPricingEngine(stubTimer{travelTime: model.UnreachableTime})
	f := &model.Fare{}
	require.Equal(t, 150.0, p.Price(f))
}
