package broker

import (
	"math"
	"testing"

	"taximarket/core/model"
)

var (
	o1 = model.Coord{X: 1, Y: 1}
	o2 = model.Coord{X: 2, Y: 2}
	d1 = model.Coord{X: 7, Y: 7}
	d2 = model.Coord{X: 8, Y: 8}
)

func TestMatcher_HighestUtilityFirst(t *testing.T) {
	m := NewMatcher()
	m.Add(3.0, o1, d1, "b")
	m.Add(5.0, o1, d1, "a")

	got := m.Resolve(2)
	if len(got) != 1 {
		t.Fatalf("expected 1 assignment got %d", len(got))
	}
	if got[0].Taxi != "a" || got[0].Utility != 5.0 {
		t.Fatalf("expected taxi a at utility 5, got %+v", got[0])
	}
}

func TestMatcher_TaxiClaimedOnce(t *testing.T) {
	m := NewMatcher()
	m.Add(5.0, o1, d1, "a")
	m.Add(4.0, o2, d2, "a")
	m.Add(3.0, o2, d2, "b")

	got := m.Resolve(2)
	if len(got) != 2 {
		t.Fatalf("expected 2 assignments got %d", len(got))
	}
	if got[0].Taxi != "a" || got[0].Origin != o1 {
		t.Fatalf("unexpected first assignment %+v", got[0])
	}
	if got[1].Taxi != "b" || got[1].Origin != o2 {
		t.Fatalf("taxi a claimed twice or wrong fare: %+v", got[1])
	}
}

func TestMatcher_PairClaimedOnce(t *testing.T) {
	m := NewMatcher()
	m.Add(5.0, o1, d1, "a")
	m.Add(4.0, o1, d1, "b")

	got := m.Resolve(2)
	if len(got) != 1 {
		t.Fatalf("expected 1 assignment got %d", len(got))
	}
	if got[0].Taxi != "a" {
		t.Fatalf("expected taxi a, got %+v", got[0])
	}
}

func TestMatcher_StopsAtAvailableTaxis(t *testing.T) {
	m := NewMatcher()
	m.Add(5.0, o1, d1, "a")
	m.Add(4.0, o2, d2, "b")

	got := m.Resolve(1)
	if len(got) != 1 {
		t.Fatalf("expected 1 assignment got %d", len(got))
	}
	if got[0].Taxi != "a" {
		t.Fatalf("expected highest-utility taxi first, got %+v", got[0])
	}
}

func TestMatcher_TieKeepsInsertionOrder(t *testing.T) {
	m := NewMatcher()
	m.Add(5.0, o1, d1, "first")
	m.Add(5.0, o1, d1, "second")

	got := m.Resolve(2)
	if len(got) != 1 || got[0].Taxi != "first" {
		t.Fatalf("expected the earlier bidder to win the tie, got %+v", got)
	}
}

func TestMatcher_NegInfNeverSelected(t *testing.T) {
	m := NewMatcher()
	m.Add(math.Inf(-1), o1, d1, "stranded")

	if got := m.Resolve(1); len(got) != 0 {
		t.Fatalf("stranded taxi must never win, got %+v", got)
	}

	m = NewMatcher()
	m.Add(math.Inf(-1), o1, d1, "stranded")
	m.Add(1.01, o1, d1, "mobile")
	got := m.Resolve(2)
	if len(got) != 1 || got[0].Taxi != "mobile" {
		t.Fatalf("expected mobile taxi, got %+v", got)
	}
}

func TestMatcher_Fares(t *testing.T) {
	m := NewMatcher()
	m.Add(5.0, o1, d1, "a")
	m.Add(4.0, o1, d1, "b")
	m.Add(3.0, o2, d2, "a")
	if m.Fares() != 2 {
		t.Fatalf("expected 2 distinct fare pairs, got %d", m.Fares())
	}
}
