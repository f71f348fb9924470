package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kilianp07/vrptw/config"
	coremetrics "github.com/kilianp07/vrptw/core/metrics"
	"github.com/kilianp07/vrptw/core/milp"
	"github.com/kilianp07/vrptw/core/model"
	"github.com/kilianp07/vrptw/core/vrptw"
	"github.com/kilianp07/vrptw/infra/logger"
	_ "github.com/kilianp07/vrptw/infra/metrics"
	"github.com/kilianp07/vrptw/infra/mqtt"
	"github.com/kilianp07/vrptw/infra/problemfile"
)

// ResultPublisher ships solved results to downstream consumers.
type ResultPublisher interface {
	PublishResult(ctx context.Context, res *vrptw.Result) error
	Close()
}

var newPublisher = func(cfg mqtt.Config) (ResultPublisher, error) {
	p, err := mqtt.NewPublisher(cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Request describes one solve. Problem takes precedence over ProblemPath.
type Request struct {
	ProblemPath string
	Problem     *model.Problem
	// ModelExport receives the built model in LP format before solving.
	ModelExport io.Writer
}

// Service wires the engine, the recorders and the publisher around the
// solver.
type Service struct {
	engine    milp.Engine
	recorder  coremetrics.Recorder
	publisher ResultPublisher
	opts      []vrptw.Option
	log       logger.Logger
	logFile   io.Closer
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	var logFile io.WriteCloser
	if cfg.Logging.File != "" {
		f, err := logger.OpenFile(logger.FileConfig{
			Path:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
		})
		if err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
		logger.SetOutput(f)
		logFile = f
	}
	logg := logger.New("service")

	engine, err := engines.Create(cfg.Solver.Engine)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	rec, err := coremetrics.NewRecorder(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	var pub ResultPublisher
	if cfg.MQTT.Enabled {
		pub, err = newPublisher(cfg.MQTT.Config)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
	}

	opts := []vrptw.Option{
		vrptw.WithFormulation(cfg.Formulation),
		vrptw.WithTimeLimit(cfg.Solver.TimeLimit()),
		vrptw.WithVerbose(cfg.Solver.Verbose),
		vrptw.WithLogger(logger.New("solver")),
		vrptw.WithRecorder(rec),
	}
	logg.Infof("engine %s, %s formulation, time limit %s",
		cfg.Solver.Engine.Type, cfg.Formulation.Variant(), cfg.Solver.TimeLimit())
	return &Service{engine: engine, recorder: rec, publisher: pub, opts: opts, log: logg, logFile: logFile}, nil
}

// Run loads the problem, solves it and publishes the result when a
// publisher is configured. A publication failure is returned together with
// the result.
func (s *Service) Run(ctx context.Context, req Request) (*vrptw.Result, error) {
	p := req.Problem
	if p == nil {
		if req.ProblemPath == "" {
			return nil, errors.New("no problem given")
		}
		var err error
		p, err = problemfile.Load(req.ProblemPath)
		if err != nil {
			return nil, fmt.Errorf("load problem: %w", err)
		}
	}

	opts := s.opts[:len(s.opts):len(s.opts)]
	if req.ModelExport != nil {
		opts = append(opts, vrptw.WithModelExport(req.ModelExport))
	}
	res, err := vrptw.New(s.engine, opts...).Solve(ctx, p)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishResult(ctx, res); err != nil {
			return res, fmt.Errorf("publish result: %w", err)
		}
		s.log.Debugf("run %s published", res.RunID)
	}
	return res, nil
}

// Close flushes the recorders, disconnects the publisher and closes the log
// file.
func (s *Service) Close() error {
	if s.publisher != nil {
		s.publisher.Close()
	}
	var errs []error
	if f, ok := s.recorder.(coremetrics.Flusher); ok {
		errs = append(errs, f.Flush())
	}
	if s.logFile != nil {
		logger.SetOutput(os.Stdout)
		errs = append(errs, s.logFile.Close())
	}
	return errors.Join(errs...)
}
