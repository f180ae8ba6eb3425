// Package broker implements the fare-allocation engine of the taxi market:
// per tick it prices new fares, broadcasts them, scores bidders against open
// fares and resolves a conflict-free greedy assignment.
package broker

import (
	"fmt"
	"sort"

	"taximarket/core/events"
	"taximarket/core/logger"
	"taximarket/core/metrics"
	"taximarket/core/model"
	"taximarket/core/worldmap"
	"taximarket/internal/eventbus"
)

// World is the simulation the broker serves. All collaborator calls are
// synchronous and complete within the tick.
type World interface {
	// HasNode reports whether the coordinate is a junction of the world.
	HasNode(c model.Coord) bool
	// Distance returns the straight-line distance between two junctions.
	Distance(a, b model.Coord) float64
	// TravelTime returns the travel time between two junctions, negative
	// when unreachable.
	TravelTime(a, b model.Coord) float64
	// BroadcastFare announces a priced fare to the fleet and returns the
	// number of taxis informed.
	BroadcastFare(origin, destination model.Coord, price float64) int
	// AllocateFare informs the winning taxi it now holds the origin's fare.
	AllocateFare(origin model.Coord, taxi model.Taxi)
	// CancelFare informs the taxi that the origin's fare vanished.
	CancelFare(origin model.Coord, taxi model.Taxi)
	// SimTime returns the current simulated time.
	SimTime() int64
}

// Broker prices fares, collects bids and allocates taxis to fares. It owns
// the fare board, the taxi roster and the revenue ledger exclusively; no
// other component writes them. Everything runs synchronously inside Tick.
type Broker struct {
	world    World
	board    *FareBoard
	pricing  *PricingEngine
	strategy UtilityStrategy

	// roster keeps handle insertion order; taxis resolves handles. Handles
	// are opaque strings, so removing a taxi would not invalidate stored
	// references the way positional indices would.
	roster []string
	taxis  map[string]model.Taxi

	serviceMap *worldmap.Graph

	revenue   float64
	servicing int

	log  logger.Logger
	sink metrics.MetricsSink
	bus  *eventbus.Bus
}

// New creates a broker serving the given world. The strategy is fixed for
// the broker's lifetime. sink and bus may be nil.
func New(world World, strategy UtilityStrategy, log logger.Logger, sink metrics.MetricsSink, bus *eventbus.Bus) (*Broker, error) {
	if world == nil || strategy == nil {
		return nil, fmt.Errorf("broker: nil parameter provided to New")
	}
	if log == nil {
		log = logger.Nop{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Broker{
		world:      world,
		board:      NewFareBoard(),
		pricing:    NewPricingEngine(world),
		strategy:   strategy,
		taxis:      make(map[string]model.Taxi),
		serviceMap: worldmap.New(),
		log:        log,
		sink:       sink,
		bus:        bus,
	}, nil
}

// AddTaxi makes a new taxi known to the broker. Duplicate handles are
// ignored.
func (b *Broker) AddTaxi(t model.Taxi) {
	if t == nil {
		return
	}
	if _, ok := b.taxis[t.ID()]; ok {
		return
	}
	b.taxis[t.ID()] = t
	b.roster = append(b.roster, t.ID())
}

// AddMapNode incrementally adds a junction and its edges to the broker's
// service area. Every referenced coordinate must exist in the world; unknown
// references fail loudly with a distinct error.
func (b *Broker) AddMapNode(c model.Coord, neighbours []model.Coord) error {
	if !b.world.HasNode(c) {
		return fmt.Errorf("%w: (%d,%d)", worldmap.ErrUnknownNode, c.X, c.Y)
	}
	b.serviceMap.AddNode(c)
	for _, n := range neighbours {
		if !b.world.HasNode(n) {
			return fmt.Errorf("%w: (%d,%d) expects (%d,%d)", worldmap.ErrUnknownNeighbour, c.X, c.Y, n.X, n.Y)
		}
		b.serviceMap.AddNode(n)
		if err := b.serviceMap.Connect(c, n, b.world.Distance(c, n)); err != nil {
			return err
		}
	}
	return nil
}

// ImportMap brings in the service area in bulk. Nodes are processed in
// stable coordinate order so error reporting is deterministic.
func (b *Broker) ImportMap(nodes map[model.Coord][]model.Coord) error {
	coords := make([]model.Coord, 0, len(nodes))
	for c := range nodes {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })
	for _, c := range coords {
		if err := b.AddMapNode(c, nodes[c]); err != nil {
			return err
		}
	}
	return nil
}

// RequestFare registers a ride request. Requests from a foreign world are
// silently dropped.
func (b *Broker) RequestFare(parent World, origin, destination model.Coord, callTime int64) {
	if parent != b.world {
		return
	}
	b.board.Register(origin, destination, callTime)
}

// CancelFare withdraws the fare if it is known. The assigned taxi, if any,
// is informed through the world exactly once. Cancelling an unknown triplet
// is a no-op.
func (b *Broker) CancelFare(parent World, origin, destination model.Coord, callTime int64) {
	if parent != b.world {
		return
	}
	key := model.FareKey{Origin: origin, Destination: destination, CallTime: callTime}
	f, ok := b.board.Remove(key)
	if !ok {
		return
	}
	if f.Allocated() {
		if t, ok := b.taxis[f.AssignedTaxi]; ok {
			b.world.CancelFare(origin, t)
		}
	}
	faresCancelled.Inc()
	b.publish(events.CancellationEvent{
		Origin:      origin,
		Destination: destination,
		CallTime:    callTime,
		TaxiID:      f.AssignedTaxi,
	})
	b.log.Debugf("fare (%d,%d)->(%d,%d) cancelled", origin.X, origin.Y, destination.X, destination.Y)
}

// SubmitBid records a taxi's interest in the origin's currently open fare.
// Handles not on the roster are silently ignored.
func (b *Broker) SubmitBid(origin model.Coord, taxiID string) {
	if _, ok := b.taxis[taxiID]; !ok {
		return
	}
	b.board.RecordBid(origin, taxiID)
}

// RecvPayment credits a completed fare's payment to the revenue ledger and
// releases the servicing slot. Payments from a foreign world are dropped.
func (b *Broker) RecvPayment(parent World, amount float64) {
	if parent != b.world {
		return
	}
	b.revenue += amount
	b.servicing--
	paymentsReceived.Inc()
	revenueTotal.Add(amount)
	taxisServicing.Set(float64(b.servicing))
	if pr, ok := b.sink.(metrics.PaymentRecorder); ok {
		if err := pr.RecordPayment(metrics.PaymentRecord{Amount: amount, Revenue: b.revenue, Tick: b.world.SimTime()}); err != nil {
			b.log.Errorf("payment metrics error: %v", err)
		}
	}
	b.publish(events.PaymentEvent{Amount: amount, Revenue: b.revenue})
}

// Handover imports a fare and its allocation from a previous broker. The
// taxi is added to the roster if unknown.
func (b *Broker) Handover(parent World, origin, destination model.Coord, callTime int64, t model.Taxi, price float64) {
	if parent != b.world || t == nil {
		return
	}
	b.AddTaxi(t)
	f := b.board.Register(origin, destination, callTime)
	f.Price = price
	f.AssignedTaxi = t.ID()
}

// Revenue returns the accumulated fare revenue.
func (b *Broker) Revenue() float64 { return b.revenue }

// Servicing returns the number of taxis currently servicing a fare.
func (b *Broker) Servicing() int { return b.servicing }

// Fares returns the number of tracked fares.
func (b *Broker) Fares() int { return b.board.Len() }

// Tick drives one step of the market. Availability is counted once at the
// start: pricing and broadcast always run for unpriced fares, but the whole
// matching phase is skipped when no taxi is available, so bids simply wait
// for the next tick.
func (b *Broker) Tick(parent World) {
	if parent != b.world {
		return
	}
	available := b.availableTaxis()
	m := NewMatcher()

	for _, key := range b.board.Keys() {
		f, ok := b.board.Lookup(key)
		if !ok {
			continue
		}
		switch {
		case !f.Priced():
			b.priceAndBroadcast(f)
		case available > 0 && !f.Allocated() && len(f.Bidders) > 0:
			if !b.world.HasNode(f.Origin) {
				continue
			}
			for _, id := range f.Bidders {
				t, ok := b.taxis[id]
				if !ok {
					continue
				}
				m.Add(b.strategy.Score(t, f), f.Origin, f.Destination, id)
			}
		}
	}

	if available == 0 {
		return
	}
	b.commit(m.Resolve(available))
}

// priceAndBroadcast quotes the fare and announces it to the fleet. This is
// the only transition from price 0 to a nonzero price.
func (b *Broker) priceAndBroadcast(f *model.Fare) {
	f.Price = b.pricing.Price(f)
	informed := b.world.BroadcastFare(f.Origin, f.Destination, f.Price)
	faresBroadcast.Inc()
	farePrice.Observe(f.Price)
	now := b.world.SimTime()
	if br, ok := b.sink.(metrics.BroadcastRecorder); ok {
		if err := br.RecordBroadcast(metrics.BroadcastRecord{
			Origin:      f.Origin,
			Destination: f.Destination,
			Price:       f.Price,
			Informed:    informed,
			Tick:        now,
		}); err != nil {
			b.log.Errorf("broadcast metrics error: %v", err)
		}
	}
	b.publish(events.FareBroadcastEvent{
		Origin:      f.Origin,
		Destination: f.Destination,
		Price:       f.Price,
		Informed:    informed,
		Tick:        now,
	})
	b.log.Debugf("fare (%d,%d)->(%d,%d) priced at %.2f, %d taxis informed",
		f.Origin.X, f.Origin.Y, f.Destination.X, f.Destination.Y, f.Price, informed)
}

// commit applies the resolved assignments: marks the fares, notifies the
// world and records metrics. Must stay serialized with respect to the board
// so the at-most-one-taxi/at-most-one-fare invariant holds.
func (b *Broker) commit(assignments []Assignment) {
	if len(assignments) == 0 {
		return
	}
	now := b.world.SimTime()
	recs := make([]metrics.AllocationRecord, 0, len(assignments))
	for _, a := range assignments {
		f, ok := b.board.FirstUnallocated(a.Origin, a.Destination)
		if !ok {
			continue
		}
		t, ok := b.taxis[a.Taxi]
		if !ok {
			continue
		}
		f.AssignedTaxi = a.Taxi
		b.world.AllocateFare(a.Origin, t)
		b.servicing++
		faresAllocated.Inc()
		taxisServicing.Set(float64(b.servicing))
		recs = append(recs, metrics.AllocationRecord{
			TaxiID:      a.Taxi,
			Origin:      a.Origin,
			Destination: a.Destination,
			Price:       f.Price,
			Utility:     a.Utility,
			Tick:        now,
		})
		b.publish(events.AllocationEvent{
			Origin:      a.Origin,
			Destination: a.Destination,
			TaxiID:      a.Taxi,
			Utility:     a.Utility,
			Price:       f.Price,
			Tick:        now,
		})
		b.log.Infof("fare (%d,%d)->(%d,%d) allocated to %s (utility %.3f)",
			a.Origin.X, a.Origin.Y, a.Destination.X, a.Destination.Y, a.Taxi, a.Utility)
	}
	if len(recs) > 0 {
		if err := b.sink.RecordAllocations(recs); err != nil {
			b.log.Errorf("allocation metrics error: %v", err)
		}
	}
}

// availableTaxis counts taxis that are on duty with no pending path.
func (b *Broker) availableTaxis() int {
	n := 0
	for _, id := range b.roster {
		if t := b.taxis[id]; t.OnDuty() && t.Idle() {
			n++
		}
	}
	return n
}

func (b *Broker) publish(e eventbus.Event) {
	if b.bus != nil {
		b.bus.Publish(e)
	}
}
