package main

import "sync"

const (
	// window is the fixed sliding horizon, in seconds, over which every
	// per-identity statistic is computed (spec: WINDOW).
	window = 900
	// expireInterval is how often the registry sweeps for idle identities.
	expireInterval = 1800
	// nTail is the best-effort tail-relative warm-start offset.
	nTail = 10000 * (window / 10)
	// pollTimeoutMillis bounds a single poll of the upstream feed.
	pollTimeoutMillis = 1000
	// httpTimeoutSeconds bounds an HTTP request handled by the query service.
	httpTimeoutSeconds = 5
)

// WorkerStatus is a point-in-time snapshot of a WorkerShares accumulator.
type WorkerStatus struct {
	Accept1m      uint64
	Accept5m      uint64
	Accept15m     uint64
	Reject15m     uint64
	AcceptCount   uint32
	LastShareIP   uint32
	LastShareTime uint32
}

// WorkerShares is the per-identity sliding-window accumulator: two counters
// (accepts per second, rejects per minute), last-seen metadata, and an
// idle-expiration check. Grounded directly on original_source's WorkerShares.
type WorkerShares struct {
	workerID int64
	userID   int32

	clock Clock

	mu             sync.Mutex
	acceptCount    uint32
	acceptBySecond *timeBucketedCounter
	rejectByMinute *timeBucketedCounter
	lastShareIP    uint32
	lastShareTime  uint32
}

func newWorkerShares(workerID int64, userID int32, clock Clock) *WorkerShares {
	return &WorkerShares{
		workerID:       workerID,
		userID:         userID,
		clock:          clock,
		acceptBySecond: newTimeBucketedCounter(window),
		rejectByMinute: newTimeBucketedCounter(window / 60),
	}
}

// processShare applies the freshness filter, then folds the share into the
// appropriate counter and updates last-share metadata. Late shares (older
// than window relative to now) are silently dropped and change nothing.
func (w *WorkerShares) processShare(share Share) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := uint32(w.clock.Now().Unix())
	if now > share.Timestamp+window {
		return
	}

	if share.Result == ShareAccept {
		w.acceptCount++
		w.acceptBySecond.insert(int64(share.Timestamp), share.Share)
	} else {
		w.rejectByMinute.insert(int64(share.Timestamp)/60, share.Share)
	}

	w.lastShareIP = share.IP
	w.lastShareTime = share.Timestamp
}

// snapshot computes the current windowed sums and copies the last-share
// metadata under the lock.
func (w *WorkerShares) snapshot() WorkerStatus {
	var s WorkerStatus
	w.snapshotInto(&s)
	return s
}

// snapshotInto is the out-param form, avoiding a struct copy on the batch
// lookup path (matches original_source's overload of the same name).
func (w *WorkerShares) snapshotInto(s *WorkerStatus) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := int64(w.clock.Now().Unix())

	s.Accept1m = w.acceptBySecond.sum(now, 60)
	s.Accept5m = w.acceptBySecond.sum(now, 300)
	s.Accept15m = w.acceptBySecond.sum(now, window)
	s.Reject15m = w.rejectByMinute.sum(now/60, window/60)
	s.AcceptCount = w.acceptCount
	s.LastShareIP = w.lastShareIP
	s.LastShareTime = w.lastShareTime
}

// isExpired reports whether this identity has been idle longer than window.
func (w *WorkerShares) isExpired() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := uint32(w.clock.Now().Unix())
	return w.lastShareTime+window < now
}

// mergeWorkerStatus sums accept/reject/acceptCount across inputs and takes
// lastShareIP from the entry with the largest lastShareTime (ties: last
// scan wins, matching a plain left-to-right fold).
func mergeWorkerStatus(statuses []WorkerStatus) WorkerStatus {
	var merged WorkerStatus
	for _, s := range statuses {
		merged.Accept1m += s.Accept1m
		merged.Accept5m += s.Accept5m
		merged.Accept15m += s.Accept15m
		merged.Reject15m += s.Reject15m
		merged.AcceptCount += s.AcceptCount
		if s.LastShareTime >= merged.LastShareTime {
			merged.LastShareTime = s.LastShareTime
			merged.LastShareIP = s.LastShareIP
		}
	}
	return merged
}
