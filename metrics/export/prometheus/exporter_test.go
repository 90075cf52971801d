package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"

	accessgate "github.com/quantrail/accessgate"
)

type stubSource struct {
	snapshot accessgate.MetricsSnapshot
	dropped  uint64
}

func (s *stubSource) MetricsSnapshot() accessgate.MetricsSnapshot { return s.snapshot }

func (s *stubSource) AuditDropped() uint64 { return s.dropped }

func newStubSource() *stubSource {
	return &stubSource{
		snapshot: accessgate.MetricsSnapshot{
			Counters: map[accessgate.MetricID]uint64{
				accessgate.MetricSessionCreated: 7,
				accessgate.MetricRateLimitHit:   3,
			},
			Histograms: map[accessgate.MetricID][]uint64{
				accessgate.MetricValidateLatency: {5, 2, 1, 0, 0, 0, 0, 1},
			},
		},
		dropped: 2,
	}
}

func TestRenderCountersAndHistogram(t *testing.T) {
	exporter := NewExporterFromSource(newStubSource())
	out := exporter.Render()

	for _, want := range []string{
		"# TYPE accessgate_session_created_total counter",
		"accessgate_session_created_total 7",
		"accessgate_rate_limit_hit_total 3",
		"accessgate_audit_dropped_total 2",
		"# TYPE accessgate_validate_latency_seconds histogram",
		`accessgate_validate_latency_seconds_bucket{le="0.005"} 5`,
		`accessgate_validate_latency_seconds_bucket{le="0.01"} 7`,
		`accessgate_validate_latency_seconds_bucket{le="+Inf"} 9`,
		"accessgate_validate_latency_seconds_count 9",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEmptySource(t *testing.T) {
	exporter := NewExporterFromSource(&stubSource{
		snapshot: accessgate.MetricsSnapshot{
			Counters:   map[accessgate.MetricID]uint64{},
			Histograms: map[accessgate.MetricID][]uint64{},
		},
	})
	if out := exporter.Render(); out != "" {
		t.Fatalf("empty source rendered %q", out)
	}
}

func TestHandlerServesTextFormat(t *testing.T) {
	exporter := NewExporterFromSource(newStubSource())

	w := httptest.NewRecorder()
	exporter.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "accessgate_session_created_total 7") {
		t.Fatalf("body missing counter:\n%s", w.Body.String())
	}
}

func TestNilExporterRendersNothing(t *testing.T) {
	var exporter *Exporter
	if out := exporter.Render(); out != "" {
		t.Fatalf("nil exporter rendered %q", out)
	}
}
