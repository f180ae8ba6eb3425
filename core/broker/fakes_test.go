package broker

import (
	"taximarket/core/model"
)

type broadcastCall struct {
	origin      model.Coord
	destination model.Coord
	price       float64
}

type taxiCall struct {
	origin model.Coord
	taxiID string
}

// fakeWorld records collaborator calls. Travel times default to 10 unless
// overridden in times; nodes default to "everything exists" unless nodes is
// set.
type fakeWorld struct {
	nodes      map[model.Coord]bool
	times      map[[2]model.Coord]float64
	now        int64
	broadcasts []broadcastCall
	allocs     []taxiCall
	cancels    []taxiCall
}

func (w *fakeWorld) HasNode(c model.Coord) bool {
	if w.nodes == nil {
		return true
	}
	return w.nodes[c]
}

func (w *fakeWorld) Distance(a, b model.Coord) float64 { return 1 }

func (w *fakeWorld) TravelTime(a, b model.Coord) float64 {
	if t, ok := w.times[[2]model.Coord{a, b}]; ok {
		return t
	}
	return 10
}

func (w *fakeWorld) BroadcastFare(origin, destination model.Coord, price float64) int {
	w.broadcasts = append(w.broadcasts, broadcastCall{origin: origin, destination: destination, price: price})
	return 1
}

func (w *fakeWorld) AllocateFare(origin model.Coord, taxi model.Taxi) {
	w.allocs = append(w.allocs, taxiCall{origin: origin, taxiID: taxi.ID()})
}

func (w *fakeWorld) CancelFare(origin model.Coord, taxi model.Taxi) {
	w.cancels = append(w.cancels, taxiCall{origin: origin, taxiID: taxi.ID()})
}

func (w *fakeWorld) SimTime() int64 { return w.now }

// fakeTaxi plans legs from a lookup table; unknown legs take 5 time units,
// a negative entry means unreachable.
type fakeTaxi struct {
	id      string
	onDuty  bool
	idle    bool
	loc     model.Coord
	account float64
	legs    map[[2]model.Coord]float64
}

func newFakeTaxi(id string) *fakeTaxi {
	return &fakeTaxi{id: id, onDuty: true, idle: true, account: 100}
}

func (t *fakeTaxi) ID() string            { return t.id }
func (t *fakeTaxi) OnDuty() bool          { return t.onDuty }
func (t *fakeTaxi) Idle() bool            { return t.idle }
func (t *fakeTaxi) Location() model.Coord { return t.loc }
func (t *fakeTaxi) Account() float64      { return t.account }

func (t *fakeTaxi) PlanPath(from, to model.Coord) model.Route {
	if tt, ok := t.legs[[2]model.Coord{from, to}]; ok {
		if tt < 0 {
			return model.Unreachable()
		}
		return model.Route{Nodes: []model.Coord{from, to}, Time: tt}
	}
	return model.Route{Nodes: []model.Coord{from, to}, Time: 5}
}

func (t *fakeTaxi) setLeg(from, to model.Coord, tt float64) {
	if t.legs == nil {
		t.legs = make(map[[2]model.Coord]float64)
	}
	t.legs[[2]model.Coord{from, to}] = tt
}
