// Package telemetry wires OpenTelemetry tracing with an OTLP/HTTP exporter.
package telemetry
