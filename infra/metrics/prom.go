package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	coremetrics "github.com/kilianp07/vrptw/core/metrics"
)

// PromConfig configures the Prometheus recorder.
type PromConfig struct {
	// PushgatewayURL, when set, makes Flush push every gathered metric to a
	// Prometheus Pushgateway. Batch runs exit before a scrape can happen.
	PushgatewayURL string `json:"pushgateway_url"`
	Job            string `json:"job"`
	// ListenAddr, when set, serves /metrics for scraping until Flush.
	ListenAddr string `json:"listen_addr"`
}

// PromRecorder records solver events in Prometheus metrics.
type PromRecorder struct {
	solves      *prometheus.CounterVec
	solveTime   *prometheus.HistogramVec
	buildTime   *prometheus.HistogramVec
	objective   *prometheus.GaugeVec
	variables   *prometheus.GaugeVec
	constraints *prometheus.GaugeVec
	subsets     *prometheus.GaugeVec
	pusher      *push.Pusher
	srv         *http.Server
	addr        net.Addr
}

// NewPromRecorder registers solver metrics on the default Prometheus registerer.
func NewPromRecorder(cfg PromConfig) (*PromRecorder, error) {
	return NewPromRecorderWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromRecorderWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Metrics are
// pushed from the registerer when it is also a Gatherer.
func NewPromRecorderWithRegistry(cfg PromConfig, reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &PromRecorder{}
	var err error
	if r.solves, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vrptw_solves_total",
		Help: "Number of solves by formulation variant and final status",
	}, []string{"variant", "status"})); err != nil {
		return nil, err
	}
	if r.solveTime, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vrptw_solve_duration_seconds",
		Help:    "Wall time spent in the MILP engine",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
	}, []string{"variant"})); err != nil {
		return nil, err
	}
	if r.buildTime, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vrptw_build_duration_seconds",
		Help:    "Time spent building the MILP model",
		Buckets: prometheus.DefBuckets,
	}, []string{"variant"})); err != nil {
		return nil, err
	}
	if r.objective, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vrptw_objective_value",
		Help: "Objective value of the last solution found",
	}, []string{"variant"})); err != nil {
		return nil, err
	}
	if r.variables, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vrptw_model_variables",
		Help: "Number of variables of the last model built",
	}, []string{"variant"})); err != nil {
		return nil, err
	}
	if r.constraints, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vrptw_model_constraints",
		Help: "Number of constraints of the last model built",
	}, []string{"variant"})); err != nil {
		return nil, err
	}
	if r.subsets, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vrptw_subtour_subsets",
		Help: "Number of sub-tour candidate subsets of the last model built",
	}, []string{"variant"})); err != nil {
		return nil, err
	}

	g, ok := reg.(prometheus.Gatherer)
	if !ok {
		g = prometheus.DefaultGatherer
	}
	if cfg.PushgatewayURL != "" {
		job := cfg.Job
		if job == "" {
			job = "vrptw"
		}
		r.pusher = push.New(cfg.PushgatewayURL, job).Gatherer(g)
	}
	if cfg.ListenAddr != "" {
		if err := r.serve(cfg.ListenAddr, g); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// serve exposes g on a dedicated ServeMux so other handlers are untouched.
func (r *PromRecorder) serve(addr string, g prometheus.Gatherer) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	r.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	r.addr = ln.Addr()
	go func() { _ = r.srv.Serve(ln) }()
	return nil
}

// Addr returns the address of the scrape endpoint, nil when not serving.
func (r *PromRecorder) Addr() net.Addr { return r.addr }

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordBuild records the model size and build time.
func (r *PromRecorder) RecordBuild(ev coremetrics.BuildEvent) error {
	r.buildTime.WithLabelValues(ev.Variant).Observe(ev.Duration.Seconds())
	r.variables.WithLabelValues(ev.Variant).Set(float64(ev.Variables))
	r.constraints.WithLabelValues(ev.Variant).Set(float64(ev.Constraints))
	r.subsets.WithLabelValues(ev.Variant).Set(float64(ev.Subsets))
	return nil
}

// RecordSolve counts the solve and records its runtime and objective.
func (r *PromRecorder) RecordSolve(ev coremetrics.SolveEvent) error {
	r.solves.WithLabelValues(ev.Variant, ev.Status).Inc()
	r.solveTime.WithLabelValues(ev.Variant).Observe(ev.Runtime.Seconds())
	if ev.HasSolution {
		r.objective.WithLabelValues(ev.Variant).Set(ev.Objective)
	}
	return nil
}

// Flush pushes the metrics when a Pushgateway is configured and stops the
// scrape endpoint.
func (r *PromRecorder) Flush() error {
	var errs []error
	if r.pusher != nil {
		if err := r.pusher.Push(); err != nil {
			errs = append(errs, fmt.Errorf("push metrics: %w", err))
		}
	}
	if r.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
		r.srv = nil
	}
	return errors.Join(errs...)
}
