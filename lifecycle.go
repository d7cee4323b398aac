package main

import (
	"context"
	"net/http"
	"time"

	"github.com/hako/durafmt"
	"github.com/remeh/sizedwaitgroup"
)

// engine wires the registry, ingest loop, and query service together and
// supervises their two long-lived goroutines. Grounded on the teacher's
// run()/stop() top-level lifecycle in main.go, generalized from Stratum
// listener + status server to ingest loop + query service.
type engine struct {
	cfg       Config
	clock     Clock
	reg       *registry
	query     *queryService
	ingst     *ingestLoop
	http      *http.Server
	startedAt time.Time

	cancel context.CancelFunc
}

func newEngine(cfg Config, clock Clock, source EventSource) *engine {
	reg := newRegistry(clock)
	return &engine{
		cfg:       cfg,
		clock:     clock,
		reg:       reg,
		query:     newQueryService(reg, clock),
		ingst:     newIngestLoop(source, reg, cfg.ShareLogTopic, cfg.SharePartition),
		startedAt: clock.Now(),
	}
}

// run attaches the ingest loop to its source, failing fast (no HTTP surface
// ever comes up) if that attach or its liveness check does not succeed, then
// starts the ingest poll loop and enters the HTTP event loop. Grounded on
// original_source's StatsServer::run(), which only calls runHttpd() after
// setupThreadConsume() has synchronously succeeded.
func (e *engine) run() error {
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	if err := e.ingst.attach(); err != nil {
		cancel()
		return err
	}

	ingestDone := make(chan error, 1)
	swg := sizedwaitgroup.New(2)

	swg.Add()
	go func() {
		defer swg.Done()
		ingestDone <- e.ingst.serve(ctx)
	}()

	e.http = &http.Server{
		Addr:         e.cfg.HTTPBindAddr,
		Handler:      e.query,
		ReadTimeout:  httpTimeoutSeconds * time.Second,
		WriteTimeout: httpTimeoutSeconds * time.Second,
	}

	httpDone := make(chan error, 1)
	swg.Add()
	go func() {
		defer swg.Done()
		httpDone <- e.http.ListenAndServe()
	}()

	logger.Info("engine started", "http_addr", e.cfg.HTTPBindAddr, "share_source", e.cfg.ShareSourceAddr)

	var runErr error
	select {
	case err := <-ingestDone:
		if err != nil {
			runErr = err
			logger.Error("ingest loop failed", "error", err)
		}
	case err := <-httpDone:
		if err != nil && err != http.ErrServerClosed {
			runErr = err
			logger.Error("http server failed", "error", err)
		}
	}

	e.stop()
	swg.Wait()
	logUptime(e.startedAt, e.clock.Now())
	return runErr
}

// stop signals both goroutines to exit. Idempotent.
func (e *engine) stop() {
	if e.cancel != nil {
		e.cancel()
	}
	if e.http != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpTimeoutSeconds*time.Second)
		defer cancel()
		_ = e.http.Shutdown(shutdownCtx)
	}
}

// logUptime writes a human-readable uptime line at shutdown, distinct from
// the exact wire-format uptime string the `/` endpoint returns.
func logUptime(start, now time.Time) {
	logger.Info("engine shutting down", "uptime", durafmt.Parse(now.Sub(start)).String())
}
