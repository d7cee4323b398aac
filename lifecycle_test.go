package main

import (
	"net"
	"testing"
	"time"
)

func testEngine(source EventSource, httpAddr string) *engine {
	cfg := defaultConfig()
	cfg.HTTPBindAddr = httpAddr
	clk := newFakeClock(unixTime(1000))
	return newEngine(cfg, clk, source)
}

func TestEngineRunFailsFastWhenSourceNotAlive(t *testing.T) {
	source := &fakeEventSource{checkAliveErr: errSourceTimeout}
	e := testEngine(source, "127.0.0.1:0")

	done := make(chan error, 1)
	go func() { done <- e.run() }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected run to fail when the source does not answer a liveness check")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not return promptly on a failed liveness check")
	}
	if e.http != nil {
		t.Fatalf("http server must never be constructed when the ingest attach fails")
	}
}

func TestEngineRunPropagatesHTTPBindFailure(t *testing.T) {
	// Occupy a port first so the engine's own ListenAndServe fails to bind.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve a port: %v", err)
	}
	defer ln.Close()

	source := &fakeEventSource{}
	e := testEngine(source, ln.Addr().String())

	done := make(chan error, 1)
	go func() { done <- e.run() }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected run to return a non-nil error on a bind failure")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not return after a bind failure; stop() likely never fired")
	}
}

func TestEngineRunStopsCleanlyOnSignal(t *testing.T) {
	source := &fakeEventSource{}
	e := testEngine(source, "127.0.0.1:0")

	done := make(chan error, 1)
	go func() { done <- e.run() }()

	// Give attach + both goroutines a moment to start before stopping.
	time.Sleep(20 * time.Millisecond)
	e.stop()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error on a clean stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not return after stop()")
	}
}
