package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/vrptw/core/metrics"
	"github.com/kilianp07/vrptw/infra/logger"
)

// InfluxConfig holds the InfluxDB v2 connection settings.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxRecorder writes solver events to an InfluxDB instance using the
// official client.
type InfluxRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxRecorder creates a recorder configured for the given endpoint.
func NewInfluxRecorder(cfg InfluxConfig) *InfluxRecorder {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxRecorder{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-recorder"),
	}
}

// NewInfluxRecorderWithFallback pings the InfluxDB instance and returns a
// NopRecorder if the health check fails.
func NewInfluxRecorderWithFallback(cfg InfluxConfig) coremetrics.Recorder {
	rec := NewInfluxRecorder(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := rec.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			rec.log.Errorf("influx health check error: %v", err)
		} else {
			rec.log.Errorf("influx health status: %s", health.Status)
		}
		rec.client.Close()
		return coremetrics.NopRecorder{}
	}
	return rec
}

// RecordBuild writes a vrptw_build point.
func (s *InfluxRecorder) RecordBuild(ev coremetrics.BuildEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("vrptw_build").
		AddTag("run_id", ev.RunID).
		AddTag("variant", ev.Variant).
		AddField("customers", ev.Customers).
		AddField("vehicles", ev.Vehicles).
		AddField("subsets", ev.Subsets).
		AddField("variables", ev.Variables).
		AddField("constraints", ev.Constraints).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSolve writes a vrptw_solve point.
func (s *InfluxRecorder) RecordSolve(ev coremetrics.SolveEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("vrptw_solve").
		AddTag("run_id", ev.RunID).
		AddTag("variant", ev.Variant).
		AddTag("status", ev.Status).
		AddField("runtime_ms", round3(ev.Runtime.Seconds()*1000)).
		AddField("routes", ev.Routes).
		AddField("has_solution", ev.HasSolution)
	if ev.HasSolution {
		p = p.AddField("objective", round3(ev.Objective))
	}
	if ev.Err != "" {
		p = p.AddField("error", ev.Err)
	}
	p = p.SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Flush closes the underlying client.
func (s *InfluxRecorder) Flush() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
