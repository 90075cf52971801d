package internaldefs

import (
	accessgate "github.com/quantrail/accessgate"
)

// CounterDef binds a core metric ID to its stable export name.
type CounterDef struct {
	ID   accessgate.MetricID
	Name string
	Help string
}

// HistogramDef binds a core histogram ID to its stable export name.
type HistogramDef struct {
	ID   accessgate.MetricID
	Name string
	Help string
}

// CounterDefs is the canonical export table. Exporters iterate this table so
// Prometheus and OTel stay in agreement on names.
var CounterDefs = []CounterDef{
	{ID: accessgate.MetricSessionCreated, Name: "accessgate_session_created_total", Help: "Sessions issued."},
	{ID: accessgate.MetricSessionRevoked, Name: "accessgate_session_revoked_total", Help: "Sessions explicitly revoked."},
	{ID: accessgate.MetricValidateSuccess, Name: "accessgate_validate_success_total", Help: "Access tokens validated against a live session."},
	{ID: accessgate.MetricValidateFailure, Name: "accessgate_validate_failure_total", Help: "Rejected access tokens."},
	{ID: accessgate.MetricRefreshSuccess, Name: "accessgate_refresh_success_total", Help: "Successful access-token refreshes."},
	{ID: accessgate.MetricRefreshFailure, Name: "accessgate_refresh_failure_total", Help: "Rejected refresh attempts."},
	{ID: accessgate.MetricRateLimitHit, Name: "accessgate_rate_limit_hit_total", Help: "Requests denied by tier admission."},
	{ID: accessgate.MetricPermissionDenied, Name: "accessgate_permission_denied_total", Help: "Capability checks that denied requests."},
	{ID: accessgate.MetricGateAdmitted, Name: "accessgate_gate_admitted_total", Help: "Requests that cleared every gate stage."},
	{ID: accessgate.MetricSweepPurgedSessions, Name: "accessgate_sweep_purged_sessions_total", Help: "Inactive sessions reclaimed by the sweeper."},
	{ID: accessgate.MetricSweepPurgedRefresh, Name: "accessgate_sweep_purged_refresh_total", Help: "Expired refresh records reclaimed by the sweeper."},
	{ID: accessgate.MetricSweepPurgedBuckets, Name: "accessgate_sweep_purged_buckets_total", Help: "Stale rate buckets reclaimed by the sweeper."},
}

// HistogramDefs lists exported histograms.
var HistogramDefs = []HistogramDef{
	{ID: accessgate.MetricValidateLatency, Name: "accessgate_validate_latency_seconds", Help: "Access-token validation latency histogram."},
}

// HistogramBounds are the upper bounds of the core latency buckets, in
// seconds, as Prometheus le label values.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix mirrors HistogramBounds with characters legal in
// OTel instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form both
// exposition formats expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
