package simulator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"taximarket/core/broker"
	"taximarket/core/model"
)

func newTestWorld(t *testing.T, cfg Config) (*World, *broker.Broker) {
	t.Helper()
	w := NewWorld(cfg, nil)
	b, err := broker.New(w, broker.PayoutRate{}, nil, nil, nil)
	require.NoError(t, err)
	w.Attach(b)
	require.NoError(t, b.ImportMap(w.MapNodes()))
	return w, b
}

func TestNewWorld_GridTopology(t *testing.T) {
	w := NewWorld(Config{GridWidth: 3, GridHeight: 3, Seed: 1}, nil)

	require.Len(t, w.Graph().Nodes(), 9)
	require.Len(t, w.Graph().Neighbours(model.Coord{X: 0, Y: 0}), 2)
	require.Len(t, w.Graph().Neighbours(model.Coord{X: 1, Y: 1}), 4)

	// Opposite corners are 4 unit segments apart.
	r := w.Graph().Route(model.Coord{X: 0, Y: 0}, model.Coord{X: 2, Y: 2})
	require.True(t, r.Reachable())
	require.InDelta(t, 4, r.Time, 1e-9)
}

func TestWorld_RunEndToEnd(t *testing.T) {
	cfg := Config{GridWidth: 4, GridHeight: 4, FareRate: 1, FarePatience: 50, Seed: 7}
	w, b := newTestWorld(t, cfg)
	for _, taxi := range w.GenerateFleet(3) {
		b.AddTaxi(taxi)
	}

	s := w.Run(context.Background(), 120)

	require.Equal(t, int64(120), s.Ticks)
	require.Positive(t, s.FaresRequested)
	require.Positive(t, s.FaresCompleted)
	require.Positive(t, s.Revenue)
	require.Positive(t, s.MeanPrice)
	require.GreaterOrEqual(t, s.MaxPrice, s.MeanPrice)

	// Completed trips were paid out to the fleet.
	richer := false
	for _, taxi := range w.taxis {
		if taxi.Account() > 100 {
			richer = true
		}
	}
	require.True(t, richer)
}

func TestWorld_RunHonoursContext(t *testing.T) {
	cfg := Config{GridWidth: 3, GridHeight: 3, FareRate: 0, FarePatience: 10, Seed: 1}
	w, _ := newTestWorld(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := w.Run(ctx, 100)
	require.Zero(t, s.Ticks)
}

func TestWorld_FareExpiresWithoutTaxis(t *testing.T) {
	cfg := Config{GridWidth: 3, GridHeight: 3, FareRate: 0, FarePatience: 3, Seed: 1}
	w, b := newTestWorld(t, cfg)

	origin := model.Coord{X: 0, Y: 0}
	destination := model.Coord{X: 2, Y: 2}
	w.fares[origin] = &activeFare{origin: origin, destination: destination, callTime: w.now}
	b.RequestFare(w, origin, destination, w.now)
	require.Equal(t, 1, b.Fares())

	for i := 0; i < 6; i++ {
		w.Step()
	}

	require.Empty(t, w.fares)
	require.Zero(t, b.Fares())
	require.Equal(t, 1, w.Summary().FaresCancelled)
}

func TestTaxi_AssignAdvanceComplete(t *testing.T) {
	cfg := Config{GridWidth: 3, GridHeight: 3, FareRate: 0, FarePatience: 100, Seed: 1}
	w, b := newTestWorld(t, cfg)

	taxi := newTaxi(w.Graph(), model.Coord{X: 0, Y: 0})
	w.AddTaxi(taxi)
	b.AddTaxi(taxi)

	origin := model.Coord{X: 1, Y: 0}
	destination := model.Coord{X: 2, Y: 0}
	f := &activeFare{origin: origin, destination: destination, callTime: 0, price: 50}
	w.fares[origin] = f

	w.AllocateFare(origin, taxi)
	require.False(t, taxi.Idle())
	require.Same(t, f, taxi.fare)

	// One junction per tick: reposition to (1,0), then drive to (2,0).
	taxi.advance(w)
	require.Equal(t, origin, taxi.Location())
	taxi.advance(w)
	require.Equal(t, destination, taxi.Location())

	require.True(t, taxi.Idle())
	require.Empty(t, w.fares)
	require.InDelta(t, 150, taxi.Account(), 1e-9)
	require.InDelta(t, 50, b.Revenue(), 1e-9)
}

func TestTaxi_AbandonOnCancellation(t *testing.T) {
	cfg := Config{GridWidth: 3, GridHeight: 3, FareRate: 0, FarePatience: 100, Seed: 1}
	w, _ := newTestWorld(t, cfg)

	taxi := newTaxi(w.Graph(), model.Coord{X: 0, Y: 0})
	w.AddTaxi(taxi)

	origin := model.Coord{X: 2, Y: 2}
	f := &activeFare{origin: origin, destination: model.Coord{X: 0, Y: 2}, price: 40}
	w.fares[origin] = f
	w.AllocateFare(origin, taxi)
	require.False(t, taxi.Idle())

	w.CancelFare(origin, taxi)
	require.True(t, taxi.Idle())
}

func TestWorld_AllocateFareGuards(t *testing.T) {
	cfg := Config{GridWidth: 3, GridHeight: 3, FareRate: 0, FarePatience: 100, Seed: 1}
	w, _ := newTestWorld(t, cfg)

	first := newTaxi(w.Graph(), model.Coord{X: 0, Y: 0})
	second := newTaxi(w.Graph(), model.Coord{X: 1, Y: 1})
	w.AddTaxi(first)
	w.AddTaxi(second)

	origin := model.Coord{X: 2, Y: 0}
	f := &activeFare{origin: origin, destination: model.Coord{X: 0, Y: 0}, price: 30}
	w.fares[origin] = f

	w.AllocateFare(origin, first)
	w.AllocateFare(origin, second) // already taken, must be ignored
	require.Same(t, first, f.taxi)
	require.True(t, second.Idle())

	// Unknown origin is a no-op.
	w.AllocateFare(model.Coord{X: 9, Y: 9}, second)
	require.True(t, second.Idle())
}

func TestGenerateFleet(t *testing.T) {
	cfg := Config{GridWidth: 3, GridHeight: 3, FareRate: 0, FarePatience: 10, Seed: 3}
	w := NewWorld(cfg, nil)

	fleet := w.GenerateFleet(4)
	require.Len(t, fleet, 4)
	seen := make(map[string]bool)
	for _, taxi := range fleet {
		require.True(t, w.Graph().HasNode(taxi.Location()))
		require.True(t, taxi.OnDuty())
		require.True(t, taxi.Idle())
		require.False(t, seen[taxi.ID()])
		seen[taxi.ID()] = true
	}
	require.Nil(t, w.GenerateFleet(0))
}

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 10, cfg.GridWidth)
	require.Equal(t, 5, cfg.Taxis)

	bad := Config{GridWidth: 1, GridHeight: 5}
	require.Error(t, bad.Validate())
	bad = Config{GridWidth: 5, GridHeight: 5, FareRate: 1.5}
	require.Error(t, bad.Validate())
}
