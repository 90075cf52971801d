// Package prometheus renders plane metrics in the Prometheus text
// exposition format. The exporter is pull-based and read-only: it snapshots
// the core counters on every scrape and never mutates plane state.
package prometheus
