package main

import (
	"context"
	"errors"
	"time"
)

// ingestLoop pulls decoded shares off an EventSource and fans each one out
// to the pool-wide, per-worker, and per-user-aggregate entries in registry.
// Grounded on the teacher's zmqBlockLoop: poll with a bounded timeout,
// classify the error (benign timeout, fatal unknown topic, everything else
// transient-and-logged), keep looping until ctx is cancelled.
type ingestLoop struct {
	source    EventSource
	reg       *registry
	topic     string
	partition int32

	evictEvery time.Duration
}

func newIngestLoop(source EventSource, reg *registry, topic string, partition int32) *ingestLoop {
	return &ingestLoop{
		source:     source,
		reg:        reg,
		topic:      topic,
		partition:  partition,
		evictEvery: expireInterval * time.Second,
	}
}

// attach opens the source at a best-effort tail-relative offset and probes
// it with a liveness check, matching original_source's
// kafkaConsumer_.checkAlive() startup gate. Callers must call attach
// (directly, or via run) before serve. On failure the source is left
// closed and safe to discard.
func (l *ingestLoop) attach() error {
	if err := l.source.Open(l.topic, l.partition, tailOffset(nTail)); err != nil {
		return err
	}
	if err := l.source.CheckAlive(); err != nil {
		l.source.Close()
		return err
	}
	logger.Info("ingest loop started", "topic", l.topic, "partition", l.partition)
	return nil
}

// run attaches to the source and processes frames until ctx is cancelled or
// a fatal error is hit. It never returns a nil error on a fatal exit; a
// clean shutdown via ctx returns nil.
func (l *ingestLoop) run(ctx context.Context) error {
	if err := l.attach(); err != nil {
		return err
	}
	return l.serve(ctx)
}

// serve runs the poll loop against an already-attached source. Callers that
// need to gate other startup steps on a successful attach (e.g. engine.run)
// should call attach synchronously first, then serve in a goroutine.
func (l *ingestLoop) serve(ctx context.Context) error {
	defer l.source.Close()

	nextEvict := time.Now().Add(l.evictEvery)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		payload, err := l.source.Poll(time.Duration(pollTimeoutMillis) * time.Millisecond)
		switch {
		case err == nil:
			l.handleFrame(payload)
		case errors.Is(err, errSourceTimeout):
			// benign: no frame arrived within the poll window
		case errors.Is(err, errUnknownTopic):
			fatal("ingest received frame on unrecognized topic/partition", err,
				"topic", l.topic, "partition", l.partition)
			return err
		default:
			logger.Warn("ingest poll error", "error", err)
		}

		if time.Now().After(nextEvict) {
			logIdentitiesEvicted(l.reg.evictExpired())
			nextEvict = time.Now().Add(l.evictEvery)
		}
	}
}

// handleFrame decodes payload and, if valid, folds it into the pool
// accumulator, the worker's own accumulator, and that user's aggregate
// accumulator. Malformed or invalid frames are dropped and logged at error
// severity. Late shares (older than window) are dropped silently before the
// fan-out, so they never create a registry entry.
func (l *ingestLoop) handleFrame(payload []byte) {
	share, ok := decodeShare(payload)
	if !ok {
		logShareDropped("malformed frame", "bytes", len(payload))
		return
	}
	if !share.isValid() {
		logShareDropped("invalid share", "user_id", share.UserID, "worker_id", share.WorkerHashID)
		return
	}
	if uint32(l.reg.clock.Now().Unix()) > share.Timestamp+window {
		return
	}

	l.reg.pool().processShare(share)
	l.reg.insertOrUpdate(share.workerKey(), share)
	l.reg.insertOrUpdate(share.userAggregateKey(), share)
}
