// Package otel bridges plane metrics into an OpenTelemetry meter using
// observable instruments. Values are read from a metrics snapshot inside the
// registered callback, so collection cost lands on the OTel reader's
// schedule, not on the request path.
package otel
