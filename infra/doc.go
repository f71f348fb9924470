// Package infra contains technical adapters: the gonum MILP engine, the
// zerolog logger, metrics recorders, the MQTT result publisher and the
// problem file loader. These packages depend only on the interfaces defined
// in the core packages.
package infra
