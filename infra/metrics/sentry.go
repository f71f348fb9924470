package metrics

import (
	"errors"
	"time"

	"github.com/getsentry/sentry-go"

	coremetrics "github.com/kilianp07/vrptw/core/metrics"
)

// SentryConfig configures failure reporting to Sentry.
type SentryConfig struct {
	DSN         string `json:"dsn"`
	Environment string `json:"environment"`
	Release     string `json:"release"`
}

// SentryRecorder reports failed solves to Sentry. Builds and successful
// solves are not reported.
type SentryRecorder struct {
	hub *sentry.Hub
}

// NewSentryRecorder returns a NopRecorder when no DSN is configured.
func NewSentryRecorder(cfg SentryConfig) (coremetrics.Recorder, error) {
	if cfg.DSN == "" {
		return coremetrics.NopRecorder{}, nil
	}
	return newSentryRecorder(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
	})
}

func newSentryRecorder(opts sentry.ClientOptions) (*SentryRecorder, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &SentryRecorder{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// RecordBuild implements coremetrics.Recorder.
func (s *SentryRecorder) RecordBuild(coremetrics.BuildEvent) error { return nil }

// RecordSolve captures the error of a failed solve, tagged with the run.
func (s *SentryRecorder) RecordSolve(ev coremetrics.SolveEvent) error {
	if ev.Err == "" {
		return nil
	}
	s.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("run_id", ev.RunID)
		scope.SetTag("variant", ev.Variant)
		scope.SetTag("status", ev.Status)
		s.hub.CaptureException(errors.New(ev.Err))
	})
	return nil
}

// Flush waits for buffered events to be sent.
func (s *SentryRecorder) Flush() error {
	if !s.hub.Flush(2 * time.Second) {
		return errors.New("sentry flush timed out")
	}
	return nil
}
