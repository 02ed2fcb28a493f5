package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordRemoteCall("news", 0.1, nil)
	r.RecordRemoteCall("news", 0.2, errors.New("boom"))
	r.RecordSubmit("success")
	r.RecordStaleDiscard()
	r.SetActiveSessions(3)

	if got := testutil.ToFloat64(r.remoteCalls.WithLabelValues("news", "ok")); got != 1 {
		t.Fatalf("unexpected ok count %v", got)
	}
	if got := testutil.ToFloat64(r.remoteCalls.WithLabelValues("news", "error")); got != 1 {
		t.Fatalf("unexpected error count %v", got)
	}
	if got := testutil.ToFloat64(r.submits.WithLabelValues("success")); got != 1 {
		t.Fatalf("unexpected submit count %v", got)
	}
	if got := testutil.ToFloat64(r.staleDiscards); got != 1 {
		t.Fatalf("unexpected discard count %v", got)
	}
	if got := testutil.ToFloat64(r.activeSessions); got != 3 {
		t.Fatalf("unexpected sessions %v", got)
	}
}
