// Package metrics defines the events emitted around a VRPTW solve and the
// Recorder interface that persists them. Implementations such as the
// Prometheus and InfluxDB recorders live in infra/metrics and register
// themselves by name; NewRecorder combines several of them into a
// MultiRecorder when more than one sink is configured.
package metrics
