package metrics

import (
	"github.com/kilianp07/vrptw/core/factory"
	coremetrics "github.com/kilianp07/vrptw/core/metrics"
)

// init registers built-in recorders.
func init() {
	must := func(name string, f factory.Factory[coremetrics.Recorder]) {
		if err := coremetrics.RegisterRecorder(name, f); err != nil {
			panic(err)
		}
	}
	must("nop", func(map[string]any) (coremetrics.Recorder, error) {
		return coremetrics.NopRecorder{}, nil
	})
	must("prometheus", factory.Typed(recorder(NewPromRecorder)))
	must("influx", factory.Typed(func(c InfluxConfig) (coremetrics.Recorder, error) {
		return NewInfluxRecorderWithFallback(c), nil
	}))
	must("sqlite", factory.Typed(recorder(NewSQLiteRecorder)))
	must("sentry", factory.Typed(NewSentryRecorder))
}

func recorder[C any, R coremetrics.Recorder](build func(C) (R, error)) func(C) (coremetrics.Recorder, error) {
	return func(c C) (coremetrics.Recorder, error) {
		r, err := build(c)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}
