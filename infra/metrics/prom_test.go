package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/vrptw/core/factory"
	coremetrics "github.com/kilianp07/vrptw/core/metrics"
)

func TestPromRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPromRecorderWithRegistry(PromConfig{}, reg)
	require.NoError(t, err)

	require.NoError(t, rec.RecordBuild(coremetrics.BuildEvent{Variant: "full", Variables: 24, Constraints: 33, Subsets: 1, Duration: time.Millisecond}))
	require.NoError(t, rec.RecordSolve(coremetrics.SolveEvent{Variant: "full", Status: "optimal", Objective: 15, HasSolution: true, Runtime: time.Second}))
	require.NoError(t, rec.RecordSolve(coremetrics.SolveEvent{Variant: "full", Status: "infeasible", Runtime: time.Second}))

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.solves.WithLabelValues("full", "optimal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.solves.WithLabelValues("full", "infeasible")))
	assert.Equal(t, 15.0, testutil.ToFloat64(rec.objective.WithLabelValues("full")))
	assert.Equal(t, 24.0, testutil.ToFloat64(rec.variables.WithLabelValues("full")))
	assert.Equal(t, 33.0, testutil.ToFloat64(rec.constraints.WithLabelValues("full")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.subsets.WithLabelValues("full")))
	assert.Equal(t, 1, testutil.CollectAndCount(rec.solveTime))
	assert.NoError(t, rec.Flush(), "no pushgateway configured")
}

func TestPromRecorderReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	r1, err := NewPromRecorderWithRegistry(PromConfig{}, reg)
	require.NoError(t, err)
	r2, err := NewPromRecorderWithRegistry(PromConfig{}, reg)
	require.NoError(t, err)
	assert.Same(t, r1.solves, r2.solves)
}

func TestPromRecorderPushesToGateway(t *testing.T) {
	var path, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		buf := new(strings.Builder)
		_, _ = io.Copy(buf, r.Body)
		body = buf.String()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	rec, err := NewPromRecorderWithRegistry(PromConfig{PushgatewayURL: srv.URL, Job: "nightly"}, prometheus.NewRegistry())
	require.NoError(t, err)
	require.NoError(t, rec.RecordSolve(coremetrics.SolveEvent{Variant: "basic", Status: "optimal", HasSolution: true, Objective: 3}))
	require.NoError(t, rec.Flush())
	assert.Equal(t, "/metrics/job/nightly", path)
	assert.NotEmpty(t, body)
}

func TestBuiltinRecorders(t *testing.T) {
	r, err := coremetrics.NewRecorder([]factory.ModuleConfig{{Type: "nop"}})
	require.NoError(t, err)
	assert.IsType(t, coremetrics.NopRecorder{}, r)
	assert.Subset(t, coremetrics.RegisteredRecorders(), []string{"influx", "nop", "prometheus", "sentry", "sqlite"})
	r, err = coremetrics.NewRecorder([]factory.ModuleConfig{{Type: "sentry"}})
	require.NoError(t, err)
	assert.IsType(t, coremetrics.NopRecorder{}, r, "sentry without dsn")
	_, err = coremetrics.NewRecorder([]factory.ModuleConfig{{Type: "missing"}})
	assert.Error(t, err)
}

func TestPromRecorderServesMetrics(t *testing.T) {
	rec, err := NewPromRecorderWithRegistry(PromConfig{ListenAddr: "127.0.0.1:0"}, prometheus.NewRegistry())
	require.NoError(t, err)
	require.NotNil(t, rec.Addr())
	require.NoError(t, rec.RecordSolve(coremetrics.SolveEvent{Variant: "full", Status: "optimal", HasSolution: true, Objective: 31}))

	resp, err := http.Get("http://" + rec.Addr().String() + "/metrics")
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(data), `vrptw_solves_total{status="optimal",variant="full"} 1`)

	require.NoError(t, rec.Flush())
	_, err = http.Get("http://" + rec.Addr().String() + "/metrics")
	assert.Error(t, err, "endpoint stops on flush")
}
