package metrics

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "taximarket/core/metrics"
	"taximarket/infra/logger"
)

// InfluxSink writes market events to an InfluxDB instance using the official
// client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB
// endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns
// a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordAllocations writes committed allocations as line protocol events.
func (s *InfluxSink) RecordAllocations(recs []coremetrics.AllocationRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range recs {
		p := write.NewPointWithMeasurement("allocation_event").
			AddTag("taxi_id", r.TaxiID).
			AddTag("origin", fmt.Sprintf("%d,%d", r.Origin.X, r.Origin.Y)).
			AddTag("destination", fmt.Sprintf("%d,%d", r.Destination.X, r.Destination.Y)).
			AddField("price", round3(r.Price)).
			AddField("utility", round3(r.Utility)).
			AddField("tick", r.Tick).
			SetTime(time.Now())
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordBroadcast persists a fare broadcast.
func (s *InfluxSink) RecordBroadcast(rec coremetrics.BroadcastRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("broadcast_event").
		AddTag("origin", fmt.Sprintf("%d,%d", rec.Origin.X, rec.Origin.Y)).
		AddTag("destination", fmt.Sprintf("%d,%d", rec.Destination.X, rec.Destination.Y)).
		AddField("price", round3(rec.Price)).
		AddField("informed", rec.Informed).
		AddField("tick", rec.Tick).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordPayment persists a received payment.
func (s *InfluxSink) RecordPayment(rec coremetrics.PaymentRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("payment_event").
		AddField("amount", round3(rec.Amount)).
		AddField("revenue", round3(rec.Revenue)).
		AddField("tick", rec.Tick).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
