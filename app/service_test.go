package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/vrptw/config"
	"github.com/kilianp07/vrptw/core/factory"
	"github.com/kilianp07/vrptw/core/milp"
	"github.com/kilianp07/vrptw/core/milp/milptest"
	"github.com/kilianp07/vrptw/core/vrptw"
	"github.com/kilianp07/vrptw/infra/mqtt"
)

const triangleDoc = `vehicle_count: 1
working_time_budget: 1000
customers:
  - {id: 0, window_latest: 1000}
  - {id: 1, window_latest: 1000}
  - {id: 2, window_latest: 1000}
distance:
  - [0, 5, 5]
  - [5, 0, 5]
  - [5, 5, 0]
`

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishResult(ctx context.Context, res *vrptw.Result) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}

func (m *mockPublisher) Close() { m.Called() }

func usePublisher(t *testing.T, p ResultPublisher) {
	t.Helper()
	orig := newPublisher
	newPublisher = func(mqtt.Config) (ResultPublisher, error) { return p, nil }
	t.Cleanup(func() { newPublisher = orig })
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Solver.TimeLimitSeconds = 60
	cfg.Logging.Level = "error"
	return &cfg
}

func writeProblem(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "problem.yaml")
	require.NoError(t, os.WriteFile(path, []byte(triangleDoc), 0o644))
	return path
}

func TestServiceSolvesProblemFile(t *testing.T) {
	svc, err := New(testConfig())
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()

	var lp bytes.Buffer
	res, err := svc.Run(context.Background(), Request{ProblemPath: writeProblem(t), ModelExport: &lp})
	require.NoError(t, err)
	assert.True(t, res.Optimal)
	assert.InDelta(t, 15, res.Objective, 1e-6)
	assert.Equal(t, "full", res.Variant)
	assert.Contains(t, lp.String(), "Subject To")
}

func TestServicePublishesResult(t *testing.T) {
	pub := &mockPublisher{}
	var published *vrptw.Result
	pub.On("PublishResult", mock.Anything, mock.AnythingOfType("*vrptw.Result")).
		Run(func(args mock.Arguments) { published = args.Get(1).(*vrptw.Result) }).
		Return(nil).Once()
	pub.On("Close").Return().Once()
	usePublisher(t, pub)
	cfg := testConfig()
	cfg.MQTT.Enabled = true
	cfg.MQTT.Broker = "tcp://unused:1883"

	svc, err := New(cfg)
	require.NoError(t, err)
	res, err := svc.Run(context.Background(), Request{ProblemPath: writeProblem(t)})
	require.NoError(t, err)
	assert.Same(t, res, published)

	require.NoError(t, svc.Close())
	pub.AssertExpectations(t)
}

func TestServiceReturnsResultOnPublishFailure(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("PublishResult", mock.Anything, mock.Anything).Return(mqtt.ErrNotConnected)
	usePublisher(t, pub)
	cfg := testConfig()
	cfg.MQTT.Enabled = true

	svc, err := New(cfg)
	require.NoError(t, err)
	res, err := svc.Run(context.Background(), Request{ProblemPath: writeProblem(t)})
	assert.True(t, errors.Is(err, mqtt.ErrNotConnected))
	assert.NotNil(t, res)
}

func TestServiceUsesRegisteredEngine(t *testing.T) {
	eng := &milptest.Engine{Outcome: milptest.Outcome{Status: milp.StatusInfeasible}}
	require.NoError(t, RegisterEngine("scripted", func(map[string]any) (milp.Engine, error) {
		return eng, nil
	}))
	assert.Contains(t, Engines(), "gonum")
	assert.Contains(t, Engines(), "scripted")

	cfg := testConfig()
	cfg.Solver.Engine = factory.ModuleConfig{Type: "scripted"}
	cfg.Solver.TimeLimitSeconds = 5
	svc, err := New(cfg)
	require.NoError(t, err)

	_, err = svc.Run(context.Background(), Request{ProblemPath: writeProblem(t)})
	assert.True(t, errors.Is(err, vrptw.ErrInfeasible))
	require.Len(t, eng.Models, 1)
	assert.Equal(t, 5*time.Second, eng.Models[0].TimeLimit)
	assert.Equal(t, eng.Opened, eng.Closed)
}

func TestServiceWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "vrptw.log")
	cfg := testConfig()
	cfg.Logging.Level = "info"
	cfg.Logging.File = path
	cfg.Logging.MaxSizeMB = 1

	svc, err := New(cfg)
	require.NoError(t, err)
	_, err = svc.Run(context.Background(), Request{ProblemPath: writeProblem(t)})
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"service"`)
}

func TestServiceConstructionErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Solver.Engine.Type = "cplex"
	_, err := New(cfg)
	assert.ErrorContains(t, err, "engine")

	cfg = testConfig()
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "statsd"}}
	_, err = New(cfg)
	assert.ErrorContains(t, err, "metrics")

	cfg = testConfig()
	cfg.Logging.Level = "loud"
	_, err = New(cfg)
	assert.ErrorContains(t, err, "logger")
}

func TestServiceRunErrors(t *testing.T) {
	svc, err := New(testConfig())
	require.NoError(t, err)

	_, err = svc.Run(context.Background(), Request{})
	assert.Error(t, err)

	_, err = svc.Run(context.Background(), Request{ProblemPath: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.ErrorContains(t, err, "load problem")
}
