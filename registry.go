package main

import "sync"

// registry is a concurrent key->WorkerShares map with insertion on first
// sight and bulk idle eviction. Grounded on the teacher's
// workerConnectionRegistry (mutex-guarded map keyed by connection identity)
// generalized to spec.md §4.C's read/write-lock contract and its
// first-sight race resolution.
//
// The pool-wide accumulator is deliberately not an entry in this map: it
// lives for the process lifetime, never ages out under evictExpired, and
// is never subject to the first-sight race above. Grounded on
// original_source's StatsServer, which keeps poolWorker_ as a plain member
// never inserted into workerSet_.
type registry struct {
	clock Clock

	poolWorker *WorkerShares

	mu              sync.RWMutex
	entries         map[identityKey]*WorkerShares
	totalWorkerCnt  int
	totalUserCnt    int
	userWorkerCount map[int32]int
}

func newRegistry(clock Clock) *registry {
	return &registry{
		clock:           clock,
		poolWorker:      newWorkerShares(0, 0, clock),
		entries:         make(map[identityKey]*WorkerShares),
		userWorkerCount: make(map[int32]int),
	}
}

// pool returns the process-lifetime pool-wide accumulator.
func (r *registry) pool() *WorkerShares {
	return r.poolWorker
}

// insertOrUpdate applies share to the entry for key, creating it on first
// sight. Two concurrent first-sights of the same key may both construct a
// candidate entry; the exclusive-lock re-check below discards the losing
// one so the registry ends up with exactly one entry per key (spec.md §9).
func (r *registry) insertOrUpdate(key identityKey, share Share) {
	r.mu.RLock()
	entry, ok := r.entries[key]
	r.mu.RUnlock()

	if ok {
		entry.processShare(share)
		return
	}

	candidate := newWorkerShares(key.workerID, key.userID, r.clock)
	candidate.processShare(share)

	r.mu.Lock()
	if existing, ok := r.entries[key]; ok {
		r.mu.Unlock()
		// Lost the race: someone else's insert already landed. Fold our
		// share into the winner instead of double-counting a fresh entry.
		existing.processShare(share)
		return
	}
	r.entries[key] = candidate
	if key.workerID != 0 {
		r.totalWorkerCnt++
		r.userWorkerCount[key.userID]++
	} else {
		r.totalUserCnt++
	}
	r.mu.Unlock()
}

// evictExpired removes every idle entry and returns how many were removed.
func (r *registry) evictExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, entry := range r.entries {
		if !entry.isExpired() {
			continue
		}
		if key.workerID != 0 {
			r.totalWorkerCnt--
			r.userWorkerCount[key.userID]--
			if r.userWorkerCount[key.userID] <= 0 {
				delete(r.userWorkerCount, key.userID)
			}
		} else {
			r.totalUserCnt--
		}
		delete(r.entries, key)
		removed++
	}
	return removed
}

// batchLookup resolves each key to its entry (or nil) under a single shared
// lock acquisition, then releases the lock. The returned handles remain
// valid (shared ownership via the Go pointer/GC) even if evictExpired
// concurrently removes the corresponding map entry.
func (r *registry) batchLookup(keys []identityKey) []*WorkerShares {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*WorkerShares, len(keys))
	for i, k := range keys {
		out[i] = r.entries[k]
	}
	return out
}

// lookupUserWorkerCount returns the current live worker count for userID.
func (r *registry) lookupUserWorkerCount(userID int32) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.userWorkerCount[userID]
}

// counts returns totalWorkerCount and totalUserCount under the shared lock.
func (r *registry) counts() (workers, users int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.totalWorkerCnt, r.totalUserCnt
}
