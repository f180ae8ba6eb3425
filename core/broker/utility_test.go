package broker

import (
	"math"
	"testing"

	"taximarket/core/model"
)

func TestPayoutRate_Score(t *testing.T) {
	origin := model.Coord{X: 2, Y: 2}
	destination := model.Coord{X: 5, Y: 5}
	taxi := newFakeTaxi("t1")
	taxi.loc = model.Coord{X: 0, Y: 0}
	taxi.setLeg(origin, destination, 12)
	taxi.setLeg(taxi.loc, origin, 4)

	f := &model.Fare{Origin: origin, Destination: destination, Price: 80}
	got := PayoutRate{}.Score(taxi, f)
	want := 80.0 / (12.0 + 4.0)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v got %v", want, got)
	}
}

func TestPayoutRate_UnreachableScoresZero(t *testing.T) {
	origin := model.Coord{X: 2, Y: 2}
	destination := model.Coord{X: 5, Y: 5}
	f := &model.Fare{Origin: origin, Destination: destination, Price: 80}

	trip := newFakeTaxi("t1")
	trip.setLeg(origin, destination, -1)
	if got := (PayoutRate{}).Score(trip, f); got != 0 {
		t.Fatalf("unreachable trip leg should score 0, got %v", got)
	}

	repos := newFakeTaxi("t2")
	repos.setLeg(repos.loc, origin, -1)
	if got := (PayoutRate{}).Score(repos, f); got != 0 {
		t.Fatalf("unreachable reposition leg should score 0, got %v", got)
	}
}

func TestAccountGrowth_Score(t *testing.T) {
	origin := model.Coord{X: 2, Y: 2}
	destination := model.Coord{X: 5, Y: 5}
	taxi := newFakeTaxi("t1")
	taxi.account = 200
	taxi.setLeg(origin, destination, 12)
	taxi.setLeg(taxi.loc, origin, 4)

	f := &model.Fare{Origin: origin, Destination: destination, Price: 80}
	got := AccountGrowth{}.Score(taxi, f)
	want := (200.0 + 80.0 + 12.0 + 4.0) / 200.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v got %v", want, got)
	}
}

func TestAccountGrowth_UnreachableScoresNegInf(t *testing.T) {
	origin := model.Coord{X: 2, Y: 2}
	destination := model.Coord{X: 5, Y: 5}
	taxi := newFakeTaxi("t1")
	taxi.setLeg(taxi.loc, origin, -1)

	f := &model.Fare{Origin: origin, Destination: destination, Price: 80}
	if got := (AccountGrowth{}).Score(taxi, f); !math.IsInf(got, -1) {
		t.Fatalf("expected -Inf got %v", got)
	}
}

func TestNewStrategy(t *testing.T) {
	if _, err := NewStrategy(StrategyPayoutRate); err != nil {
		t.Fatalf("payout_rate: %v", err)
	}
	if _, err := NewStrategy(StrategyAccountGrowth); err != nil {
		t.Fatalf("account_growth: %v", err)
	}
	if _, err := NewStrategy("nonsense"); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}
