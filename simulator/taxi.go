package simulator

import (
	"fmt"

	"github.com/google/uuid"

	"taximarket/core/model"
	"taximarket/core/worldmap"
)

// Taxi is a simulated cab. It bids on reachable fares while idle and drives
// its planned itinerary one junction per tick. Implements model.Taxi.
type Taxi struct {
	id      string
	loc     model.Coord
	onDuty  bool
	account float64
	graph   *worldmap.Graph

	// itinerary is the remaining junctions to visit; empty means idle
	// unless a fare is still attached (zero-length trips complete on the
	// next advance).
	itinerary []model.Coord
	fare      *activeFare
}

func newTaxi(graph *worldmap.Graph, start model.Coord) *Taxi {
	return &Taxi{
		id:      fmt.Sprintf("taxi-%s", uuid.NewString()[:8]),
		loc:     start,
		onDuty:  true,
		account: 100,
		graph:   graph,
	}
}

func (t *Taxi) ID() string            { return t.id }
func (t *Taxi) OnDuty() bool          { return t.onDuty }
func (t *Taxi) Location() model.Coord { return t.loc }
func (t *Taxi) Account() float64      { return t.account }

// Idle reports whether the taxi has no pending planned path.
func (t *Taxi) Idle() bool { return len(t.itinerary) == 0 && t.fare == nil }

// PlanPath returns the taxi's route between two junctions.
func (t *Taxi) PlanPath(from, to model.Coord) model.Route {
	return t.graph.Route(from, to)
}

// offerFare is the taxi's bidding policy: bid whenever idle and the fare's
// origin is reachable.
func (t *Taxi) offerFare(w *World, origin, destination model.Coord, price float64) {
	if !t.onDuty || !t.Idle() {
		return
	}
	if !t.PlanPath(t.loc, origin).Reachable() {
		return
	}
	w.brk.SubmitBid(origin, t.id)
}

// assign plans the two-leg itinerary to the fare's origin and on to its
// destination.
func (t *Taxi) assign(f *activeFare) {
	reposition := t.PlanPath(t.loc, f.origin)
	trip := t.PlanPath(f.origin, f.destination)
	if !reposition.Reachable() || !trip.Reachable() {
		return
	}
	t.itinerary = nil
	if len(reposition.Nodes) > 1 {
		t.itinerary = append(t.itinerary, reposition.Nodes[1:]...)
	}
	if len(trip.Nodes) > 1 {
		t.itinerary = append(t.itinerary, trip.Nodes[1:]...)
	}
	t.fare = f
}

// abandon drops the current fare and itinerary, e.g. after a cancellation.
func (t *Taxi) abandon() {
	t.itinerary = nil
	t.fare = nil
}

// advance moves one junction per tick and completes the fare on arrival.
func (t *Taxi) advance(w *World) {
	if len(t.itinerary) > 0 {
		t.loc = t.itinerary[0]
		t.itinerary = t.itinerary[1:]
	}
	if len(t.itinerary) == 0 && t.fare != nil {
		f := t.fare
		t.fare = nil
		w.completeFare(f, t)
	}
}

func (t *Taxi) credit(amount float64) {
	t.account += amount
}
