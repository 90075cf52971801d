package accessgate

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsCountersConcurrent(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				m.Inc(MetricValidateSuccess)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricValidateSuccess); got != workers*perWorker {
		t.Fatalf("counter = %d, want %d", got, workers*perWorker)
	}
}

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricValidateSuccess)
	m.Observe(MetricValidateLatency, time.Millisecond)

	if got := m.Value(MetricValidateSuccess); got != 0 {
		t.Fatalf("disabled counter = %d, want 0", got)
	}
	snap := m.Snapshot()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatalf("disabled snapshot not empty: %+v", snap)
	}
}

func TestMetricsNilIsSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricValidateSuccess)
	m.Add(MetricValidateSuccess, 5)
	m.Observe(MetricValidateLatency, time.Millisecond)
	if m.Value(MetricValidateSuccess) != 0 {
		t.Fatal("nil metrics returned a value")
	}
}

func TestMetricsHistogramBuckets(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	samples := []struct {
		d      time.Duration
		bucket int
	}{
		{2 * time.Millisecond, 0},
		{8 * time.Millisecond, 1},
		{20 * time.Millisecond, 2},
		{40 * time.Millisecond, 3},
		{80 * time.Millisecond, 4},
		{200 * time.Millisecond, 5},
		{400 * time.Millisecond, 6},
		{2 * time.Second, 7},
	}
	for _, s := range samples {
		m.Observe(MetricValidateLatency, s.d)
	}

	snap := m.Snapshot()
	buckets, ok := snap.Histograms[MetricValidateLatency]
	if !ok {
		t.Fatal("histogram missing from snapshot")
	}
	for _, s := range samples {
		if buckets[s.bucket] != 1 {
			t.Fatalf("bucket %d = %d, want 1 (sample %v)", s.bucket, buckets[s.bucket], s.d)
		}
	}
}

func TestMetricsSnapshotIsDeepCopy(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	m.Inc(MetricSessionCreated)
	m.Observe(MetricValidateLatency, time.Millisecond)

	snap := m.Snapshot()
	snap.Counters[MetricSessionCreated] = 99
	snap.Histograms[MetricValidateLatency][0] = 99

	again := m.Snapshot()
	if again.Counters[MetricSessionCreated] != 1 {
		t.Fatal("counter snapshot shares state")
	}
	if again.Histograms[MetricValidateLatency][0] != 1 {
		t.Fatal("histogram snapshot shares state")
	}
}
