package datadog

import (
	"sort"
	"strings"
	"testing"

	"concat/internal/metrics"
)

/*
Test_NewBackend verifies the address requirement and that a client with a
namespace and global tags constructs over UDP without a listener present.
*/
func Test_NewBackend(t *testing.T) {
	if _, err := NewBackend(Config{}); err == nil {
		t.Fatal("expected error without an address")
	}

	b, err := NewBackend(Config{
		Addr:       "127.0.0.1:8125",
		Namespace:  "concat.",
		GlobalTags: []string{"env:test"},
	})
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}

	// Emitting must be safe with nobody listening on the UDP side.
	b.IncCounter("concat_files_total", 1, metrics.Labels{"kind": "merged"})
	b.ObserveHistogram("concat_phase_duration_seconds", 0.1, metrics.Labels{"phase": "write"})
	if err := b.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

/*
Test_LabelsToTags verifies label maps become "key:value" tags and empty maps
become nil.
*/
func Test_LabelsToTags(t *testing.T) {
	if got := labelsToTags(nil); got != nil {
		t.Fatalf("nil labels: %v", got)
	}

	tags := labelsToTags(metrics.Labels{"phase": "sniff", "status": "success"})
	sort.Strings(tags)
	if strings.Join(tags, " ") != "phase:sniff status:success" {
		t.Fatalf("tags: %v", tags)
	}
}
