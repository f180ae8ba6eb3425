// Package app wires the configured components into a runnable simulation
// service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taximarket/config"
	"taximarket/core/broker"
	"taximarket/core/events"
	coremetrics "taximarket/core/metrics"
	"taximarket/infra/logger"
	inframetrics "taximarket/infra/metrics"
	"taximarket/infra/mqtt"
	"taximarket/internal/eventbus"
	"taximarket/simulator"
)

// Service holds the wired simulation.
type Service struct {
	cfg   *config.Config
	log   logger.Logger
	world *simulator.World
	brk   *broker.Broker
	bus   *eventbus.Bus
	sink  coremetrics.MetricsSink
	pub   *mqtt.Publisher
	srv   *http.Server
}

// New builds the world, broker and observability plumbing from the
// configuration.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("taximarket")
	bus := eventbus.New()

	world := simulator.NewWorld(cfg.Simulation, log)
	strategy, err := broker.NewStrategy(cfg.Broker.Strategy)
	if err != nil {
		return nil, err
	}
	sink, err := inframetrics.New(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	brk, err := broker.New(world, strategy, log, sink, bus)
	if err != nil {
		return nil, err
	}
	world.Attach(brk)
	if err := brk.ImportMap(world.MapNodes()); err != nil {
		return nil, fmt.Errorf("import map: %w", err)
	}
	for _, t := range world.GenerateFleet(cfg.Simulation.Taxis) {
		brk.AddTaxi(t)
	}

	s := &Service{cfg: cfg, log: log, world: world, brk: brk, bus: bus, sink: sink}
	if cfg.MQTT.Broker != "" {
		pub, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt: %w", err)
		}
		s.pub = pub
		go s.forwardEvents(bus.Subscribe(64))
	}
	if port := cfg.Metrics.PrometheusPort; port > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		s.srv = &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
		go func() {
			if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorf("metrics server: %v", err)
			}
		}()
	}
	return s, nil
}

// forwardEvents bridges allocation and cancellation events to MQTT.
func (s *Service) forwardEvents(ch <-chan eventbus.Event) {
	for e := range ch {
		switch e.(type) {
		case events.AllocationEvent, events.CancellationEvent:
			if err := s.pub.Publish(e); err != nil {
				s.log.Warnf("mqtt publish: %v", err)
			}
		}
	}
}

// Run executes the configured number of ticks and logs the summary.
func (s *Service) Run(ctx context.Context) error {
	sum := s.world.Run(ctx, s.cfg.Simulation.Ticks)
	s.log.Infof("simulation finished: ticks=%d requested=%d completed=%d cancelled=%d revenue=%.2f mean_price=%.2f max_price=%.2f",
		sum.Ticks, sum.FaresRequested, sum.FaresCompleted, sum.FaresCancelled, sum.Revenue, sum.MeanPrice, sum.MaxPrice)
	return ctx.Err()
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.pub != nil {
		s.pub.Close()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	if s.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return s.srv.Shutdown(ctx)
	}
	return nil
}
