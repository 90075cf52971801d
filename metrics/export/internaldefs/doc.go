// Package internaldefs holds the shared metric name tables used by the
// exporter packages. It exists so the Prometheus and OTel exporters cannot
// drift apart on metric names or bucket layout.
package internaldefs
