package prompush

import (
	"testing"

	"concat/internal/metrics"

	dto "github.com/prometheus/client_model/go"
)

func gatherFamily(t *testing.T, b *Backend, name string) *dto.MetricFamily {
	t.Helper()
	fams, err := b.reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range fams {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

/*
Test_NewBackend verifies construction requirements and the job-name default.
*/
func Test_NewBackend(t *testing.T) {
	if _, err := NewBackend("nightly", ""); err == nil {
		t.Fatal("expected error without a gateway URL")
	}

	b, err := NewBackend("", "http://pushgateway:9091")
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	if b.jobName != "concat" {
		t.Fatalf("empty job name should default to concat, got %q", b.jobName)
	}
}

/*
Test_IncCounter verifies the metric-name dispatch onto the registered
collectors, including that unknown names are ignored.
*/
func Test_IncCounter(t *testing.T) {
	b, err := NewBackend("nightly", "http://pushgateway:9091")
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}

	b.IncCounter("concat_phase_total", 1, metrics.Labels{"phase": "sniff", "status": "success"})
	b.IncCounter("concat_phase_total", 1, metrics.Labels{"phase": "sniff", "status": "success"})
	b.IncCounter("concat_files_total", 3, metrics.Labels{"kind": "merged"})
	b.IncCounter("concat_rows_total", 1200, metrics.Labels{"kind": "written"})
	b.IncCounter("concat_bogus_total", 1, nil)

	fam := gatherFamily(t, b, "concat_phase_total")
	if fam == nil || len(fam.Metric) != 1 {
		t.Fatalf("phase counter family: %v", fam)
	}
	if got := fam.Metric[0].GetCounter().GetValue(); got != 2 {
		t.Fatalf("phase counter value: %v", got)
	}

	fam = gatherFamily(t, b, "concat_files_total")
	if got := fam.Metric[0].GetCounter().GetValue(); got != 3 {
		t.Fatalf("file counter value: %v", got)
	}

	fam = gatherFamily(t, b, "concat_rows_total")
	if got := fam.Metric[0].GetCounter().GetValue(); got != 1200 {
		t.Fatalf("row counter value: %v", got)
	}

	if fam = gatherFamily(t, b, "concat_bogus_total"); fam != nil {
		t.Fatalf("unknown metric must not be registered: %v", fam)
	}
}

/*
Test_ObserveHistogram verifies durations land in the phase summary with the
right label pair.
*/
func Test_ObserveHistogram(t *testing.T) {
	b, err := NewBackend("nightly", "http://pushgateway:9091")
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}

	b.ObserveHistogram("concat_phase_duration_seconds", 0.5, metrics.Labels{"phase": "write", "status": "success"})
	b.ObserveHistogram("concat_phase_duration_seconds", 1.5, metrics.Labels{"phase": "write", "status": "success"})
	b.ObserveHistogram("something_else", 9, nil)

	fam := gatherFamily(t, b, "concat_phase_duration_seconds")
	if fam == nil || len(fam.Metric) != 1 {
		t.Fatalf("summary family: %v", fam)
	}
	s := fam.Metric[0].GetSummary()
	if s.GetSampleCount() != 2 || s.GetSampleSum() != 2.0 {
		t.Fatalf("summary samples: count=%d sum=%v", s.GetSampleCount(), s.GetSampleSum())
	}
}
