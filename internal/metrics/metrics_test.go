package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/item", "200"))
	RecordAPIRequest("GET", "/api/item", 200, 15*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/item", "200"))
	if after-before != 1 {
		t.Fatalf("expected one request recorded, got %v", after-before)
	}
}

func TestRecordAllocationSplitsConflicts(t *testing.T) {
	okBefore := testutil.ToFloat64(IDsAllocated.WithLabelValues("item"))
	conflictBefore := testutil.ToFloat64(AllocationConflicts.WithLabelValues("item"))

	RecordAllocation("item", false)
	RecordAllocation("item", true)
	RecordAllocation("item", false)

	if got := testutil.ToFloat64(IDsAllocated.WithLabelValues("item")) - okBefore; got != 2 {
		t.Fatalf("expected 2 allocations, got %v", got)
	}
	if got := testutil.ToFloat64(AllocationConflicts.WithLabelValues("item")) - conflictBefore; got != 1 {
		t.Fatalf("expected 1 conflict, got %v", got)
	}
}

func TestRecordStatusChange(t *testing.T) {
	unchanged := testutil.ToFloat64(StatusUnchanged)
	broken := testutil.ToFloat64(StatusTransitions.WithLabelValues("broken"))

	RecordStatusChange(false, "active")
	RecordStatusChange(true, "broken")

	if testutil.ToFloat64(StatusUnchanged)-unchanged != 1 {
		t.Fatalf("unchanged counter not incremented")
	}
	if testutil.ToFloat64(StatusTransitions.WithLabelValues("broken"))-broken != 1 {
		t.Fatalf("transition counter not incremented")
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if testutil.ToFloat64(APIActiveRequests) != before+1 {
		t.Fatalf("gauge not incremented")
	}
	TrackActiveRequest(false)
	if testutil.ToFloat64(APIActiveRequests) != before {
		t.Fatalf("gauge not decremented")
	}
}
