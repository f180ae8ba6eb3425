// Package simulator provides an in-process city that drives the broker: a
// street grid, a fare spawner and a fleet of simulated taxis.
package simulator

import (
	"context"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"taximarket/core/broker"
	"taximarket/core/logger"
	"taximarket/core/model"
	"taximarket/core/worldmap"
)

// activeFare is the world's view of a ride request.
type activeFare struct {
	origin      model.Coord
	destination model.Coord
	callTime    int64
	price       float64
	taxi        *Taxi
}

// World is the simulated city. It implements broker.World; all calls into
// the broker and back happen synchronously within Step.
type World struct {
	cfg   Config
	graph *worldmap.Graph
	log   logger.Logger
	rng   *rand.Rand

	taxis   []*Taxi
	taxiIdx map[string]*Taxi
	fares   map[model.Coord]*activeFare
	now     int64

	brk *broker.Broker

	requested int
	completed int
	cancelled int
	prices    []float64
}

// NewWorld builds a rectangular street grid with unit travel time per
// segment.
func NewWorld(cfg Config, log logger.Logger) *World {
	if log == nil {
		log = logger.Nop{}
	}
	g := worldmap.New()
	for x := 0; x < cfg.GridWidth; x++ {
		for y := 0; y < cfg.GridHeight; y++ {
			g.AddNode(model.Coord{X: x, Y: y})
		}
	}
	for x := 0; x < cfg.GridWidth; x++ {
		for y := 0; y < cfg.GridHeight; y++ {
			c := model.Coord{X: x, Y: y}
			if x+1 < cfg.GridWidth {
				_ = g.Connect(c, model.Coord{X: x + 1, Y: y}, 1)
			}
			if y+1 < cfg.GridHeight {
				_ = g.Connect(c, model.Coord{X: x, Y: y + 1}, 1)
			}
		}
	}
	return &World{
		cfg:     cfg,
		graph:   g,
		log:     log,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		taxiIdx: make(map[string]*Taxi),
		fares:   make(map[model.Coord]*activeFare),
	}
}

// Attach wires the broker the world drives. Must be called before Run.
func (w *World) Attach(b *broker.Broker) { w.brk = b }

// Graph exposes the street topology.
func (w *World) Graph() *worldmap.Graph { return w.graph }

// MapNodes returns the adjacency of the street grid, suitable for
// Broker.ImportMap.
func (w *World) MapNodes() map[model.Coord][]model.Coord {
	out := make(map[model.Coord][]model.Coord)
	for _, c := range w.graph.Nodes() {
		out[c] = w.graph.Neighbours(c)
	}
	return out
}

// AddTaxi places a taxi into the world.
func (w *World) AddTaxi(t *Taxi) {
	w.taxis = append(w.taxis, t)
	w.taxiIdx[t.ID()] = t
}

var _ broker.World = (*World)(nil)

// HasNode implements broker.World.
func (w *World) HasNode(c model.Coord) bool { return w.graph.HasNode(c) }

// Distance implements broker.World.
func (w *World) Distance(a, b model.Coord) float64 { return w.graph.Distance(a, b) }

// TravelTime implements broker.World.
func (w *World) TravelTime(a, b model.Coord) float64 { return w.graph.TravelTime(a, b) }

// SimTime implements broker.World.
func (w *World) SimTime() int64 { return w.now }

// BroadcastFare offers the priced fare to every on-duty taxi; idle taxis
// that can reach the origin bid back immediately. Returns the number of
// taxis informed.
func (w *World) BroadcastFare(origin, destination model.Coord, price float64) int {
	if f, ok := w.fares[origin]; ok {
		f.price = price
	}
	informed := 0
	for _, t := range w.taxis {
		if !t.OnDuty() {
			continue
		}
		informed++
		t.offerFare(w, origin, destination, price)
	}
	return informed
}

// AllocateFare hands the origin's fare to the winning taxi.
func (w *World) AllocateFare(origin model.Coord, taxi model.Taxi) {
	if taxi == nil {
		return
	}
	f, ok := w.fares[origin]
	if !ok || f.taxi != nil {
		return
	}
	t, ok := w.taxiIdx[taxi.ID()]
	if !ok {
		return
	}
	t.assign(f)
	f.taxi = t
}

// CancelFare informs the taxi that the origin's fare vanished.
func (w *World) CancelFare(origin model.Coord, taxi model.Taxi) {
	if taxi == nil {
		return
	}
	if t, ok := w.taxiIdx[taxi.ID()]; ok {
		t.abandon()
	}
}

// Step advances the world one tick: spawn and expire fares, move taxis,
// then let the broker run its allocation pipeline.
func (w *World) Step() {
	if w.brk == nil {
		return
	}
	w.now++
	w.spawnFare()
	w.expireFares()
	for _, t := range w.taxis {
		t.advance(w)
	}
	w.brk.Tick(w)
}

// Run advances the world the given number of ticks, or until the context is
// cancelled, and returns the run summary.
func (w *World) Run(ctx context.Context, ticks int) Summary {
	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			return w.Summary()
		default:
		}
		w.Step()
	}
	return w.Summary()
}

// spawnFare creates at most one new ride request per tick at a random free
// junction.
func (w *World) spawnFare() {
	if w.rng.Float64() >= w.cfg.FareRate {
		return
	}
	nodes := w.graph.Nodes()
	if len(nodes) < 2 {
		return
	}
	origin := nodes[w.rng.Intn(len(nodes))]
	if _, busy := w.fares[origin]; busy {
		return
	}
	destination := nodes[w.rng.Intn(len(nodes))]
	if destination == origin {
		return
	}
	f := &activeFare{origin: origin, destination: destination, callTime: w.now}
	w.fares[origin] = f
	w.requested++
	w.brk.RequestFare(w, origin, destination, w.now)
}

// expireFares cancels requests that waited past their patience without an
// allocation.
func (w *World) expireFares() {
	origins := make([]model.Coord, 0, len(w.fares))
	for o := range w.fares {
		origins = append(origins, o)
	}
	sort.Slice(origins, func(i, j int) bool { return origins[i].Less(origins[j]) })
	for _, o := range origins {
		f := w.fares[o]
		if f.taxi != nil {
			continue
		}
		if w.now-f.callTime <= w.cfg.FarePatience {
			continue
		}
		delete(w.fares, o)
		w.cancelled++
		w.brk.CancelFare(w, f.origin, f.destination, f.callTime)
	}
}

// completeFare settles the trip: the taxi is paid, the broker receives the
// fare amount.
func (w *World) completeFare(f *activeFare, t *Taxi) {
	t.credit(f.price)
	delete(w.fares, f.origin)
	w.completed++
	w.prices = append(w.prices, f.price)
	w.brk.RecvPayment(w, f.price)
}

// Summary aggregates the run.
type Summary struct {
	Ticks          int64
	FaresRequested int
	FaresCompleted int
	FaresCancelled int
	Revenue        float64
	MeanPrice      float64
	MaxPrice       float64
}

// Summary returns the aggregates of the run so far.
func (w *World) Summary() Summary {
	s := Summary{
		Ticks:          w.now,
		FaresRequested: w.requested,
		FaresCompleted: w.completed,
		FaresCancelled: w.cancelled,
	}
	if w.brk != nil {
		s.Revenue = w.brk.Revenue()
	}
	if len(w.prices) > 0 {
		s.MeanPrice = stat.Mean(w.prices, nil)
		s.MaxPrice = floats.Max(w.prices)
	}
	return s
}
