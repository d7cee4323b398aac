package main

import "testing"

func TestWorkerSharesAcceptThenReject(t *testing.T) {
	clk := newFakeClock(unixTime(1_700_000_000))
	w := newWorkerShares(42, 7, clk)

	w.processShare(Share{Timestamp: 1_700_000_000, UserID: 7, WorkerHashID: 42, Result: ShareAccept, Share: 100, IP: 0x01020304})

	s := w.snapshot()
	if s.Accept1m != 100 || s.Accept5m != 100 || s.Accept15m != 100 {
		t.Fatalf("unexpected accept sums: %+v", s)
	}
	if s.Reject15m != 0 {
		t.Fatalf("expected zero rejects, got %d", s.Reject15m)
	}
	if s.AcceptCount != 1 {
		t.Fatalf("accept count = %d, want 1", s.AcceptCount)
	}
	if s.LastShareIP != 0x01020304 {
		t.Fatalf("unexpected last share ip: %x", s.LastShareIP)
	}
	if s.LastShareTime != 1_700_000_000 {
		t.Fatalf("unexpected last share time: %d", s.LastShareTime)
	}

	w.processShare(Share{Timestamp: 1_700_000_000, UserID: 7, WorkerHashID: 42, Result: ShareReject, Share: 50})
	s = w.snapshot()
	if s.Reject15m != 50 {
		t.Fatalf("reject15m = %d, want 50", s.Reject15m)
	}
	if s.AcceptCount != 1 {
		t.Fatalf("accept count should be unchanged by a reject, got %d", s.AcceptCount)
	}
}

func TestWorkerSharesFreshnessFilterDropsLateShare(t *testing.T) {
	clk := newFakeClock(unixTime(1_700_000_000))
	w := newWorkerShares(42, 7, clk)

	w.processShare(Share{Timestamp: 1_700_000_000 - 1000, UserID: 7, WorkerHashID: 42, Result: ShareAccept, Share: 100})

	s := w.snapshot()
	if s.Accept1m != 0 || s.Accept5m != 0 || s.Accept15m != 0 {
		t.Fatalf("expected all zero sums for a stale share, got %+v", s)
	}
	if s.LastShareTime != 0 {
		t.Fatalf("expected last share time to remain zero, got %d", s.LastShareTime)
	}
	if s.AcceptCount != 0 {
		t.Fatalf("expected accept count to remain zero, got %d", s.AcceptCount)
	}
}

func TestWorkerSharesIsExpired(t *testing.T) {
	clk := newFakeClock(unixTime(1_700_000_000))
	w := newWorkerShares(42, 7, clk)
	w.processShare(Share{Timestamp: 1_700_000_000, UserID: 7, WorkerHashID: 42, Result: ShareAccept, Share: 1})

	if w.isExpired() {
		t.Fatalf("should not be expired immediately after a share")
	}

	clk.Advance(unixDuration(window + 1))
	if !w.isExpired() {
		t.Fatalf("should be expired after window+1 seconds of idle")
	}
}

func TestMergeWorkerStatus(t *testing.T) {
	statuses := []WorkerStatus{
		{Accept1m: 10, Accept5m: 20, Accept15m: 30, Reject15m: 1, AcceptCount: 1, LastShareTime: 100, LastShareIP: 0xAAAAAAAA},
		{Accept1m: 5, Accept5m: 5, Accept15m: 5, Reject15m: 2, AcceptCount: 2, LastShareTime: 200, LastShareIP: 0xBBBBBBBB},
	}
	merged := mergeWorkerStatus(statuses)
	if merged.Accept1m != 15 || merged.Accept5m != 25 || merged.Accept15m != 35 {
		t.Fatalf("unexpected merged accept sums: %+v", merged)
	}
	if merged.Reject15m != 3 {
		t.Fatalf("reject15m = %d, want 3", merged.Reject15m)
	}
	if merged.AcceptCount != 3 {
		t.Fatalf("accept count = %d, want 3", merged.AcceptCount)
	}
	if merged.LastShareTime != 200 || merged.LastShareIP != 0xBBBBBBBB {
		t.Fatalf("expected ip/time from max lastShareTime entry, got %+v", merged)
	}
}

func TestMergeWorkerStatusEmpty(t *testing.T) {
	merged := mergeWorkerStatus(nil)
	if merged != (WorkerStatus{}) {
		t.Fatalf("expected zero value for empty merge, got %+v", merged)
	}
}
