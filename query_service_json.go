package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/remeh/sizedwaitgroup"
)

// maxConcurrentSnapshots bounds how many WorkerShares.snapshot calls the
// worker_status batch/merge path runs at once, so a request naming many
// worker ids can't spin up an unbounded number of goroutines.
const maxConcurrentSnapshots = 4

// handleServerStatus implements `GET /`.
func (q *queryService) handleServerStatus(w http.ResponseWriter, r *http.Request) {
	uptime := q.clock.Now().Sub(q.startedAt)
	secs := int64(uptime.Seconds())
	days := secs / 86400
	hours := (secs % 86400) / 3600
	mins := (secs % 3600) / 60
	rem := secs % 60

	pool := q.reg.pool().snapshot()
	workers, users := q.reg.counts()

	result := serverStatusResult{
		Uptime:        fmt.Sprintf("%02d d %02d h %02d m %02d s", days, hours, mins, rem),
		Request:       q.requestCount,
		RepBytes:      q.responseByte,
		Pool:          toPoolStatus(pool),
		Workers:       workers,
		Users:         users,
		DroppedShares: droppedShareTotal(),
	}
	q.writeJSON(w, okEnvelope(result))
}

// handleWorkerStatus implements `GET|POST /worker_status` and its `/`-suffixed
// alias. Query string and urlencoded POST body are parsed identically via
// r.FormValue.
func (q *queryService) handleWorkerStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		q.writeJSON(w, errEnvelope(1, "invalid args"))
		return
	}

	userIDRaw := strings.TrimSpace(r.FormValue("user_id"))
	workerIDRaw := strings.TrimSpace(r.FormValue("worker_id"))
	if userIDRaw == "" || workerIDRaw == "" {
		q.writeJSON(w, errEnvelope(1, "invalid args"))
		return
	}

	userID64, err := strconv.ParseInt(userIDRaw, 10, 32)
	if err != nil {
		q.writeJSON(w, errEnvelope(1, "invalid args"))
		return
	}
	userID := int32(userID64)

	workerIDStrs := strings.Split(workerIDRaw, ",")
	workerIDs := make([]int64, 0, len(workerIDStrs))
	for _, ws := range workerIDStrs {
		wid, err := strconv.ParseInt(strings.TrimSpace(ws), 10, 64)
		if err != nil {
			q.writeJSON(w, errEnvelope(1, "invalid args"))
			return
		}
		workerIDs = append(workerIDs, wid)
	}

	isMerge := false
	if v := r.FormValue("is_merge"); v != "" {
		c := v[0]
		isMerge = c == 'T' || c == 't'
	}

	keys := make([]identityKey, len(workerIDs))
	for i, wid := range workerIDs {
		keys[i] = identityKey{userID: userID, workerID: wid}
	}
	handles := q.reg.batchLookup(keys)

	statuses := make([]WorkerStatus, len(handles))
	swg := sizedwaitgroup.New(maxConcurrentSnapshots)
	for i, h := range handles {
		if h == nil {
			continue
		}
		swg.Add()
		go func(i int, h *WorkerShares) {
			defer swg.Done()
			h.snapshotInto(&statuses[i])
		}(i, h)
	}
	swg.Wait()

	if isMerge {
		merged := mergeWorkerStatus(statuses)
		q.writeJSON(w, okEnvelope([]workerStatusRow{toWorkerStatusRow(0, merged)}))
		return
	}

	rows := make([]workerStatusRow, len(statuses))
	for i, s := range statuses {
		row := toWorkerStatusRow(workerIDs[i], s)
		if workerIDs[i] == 0 {
			n := q.reg.lookupUserWorkerCount(userID)
			row.Workers = &n
		}
		rows[i] = row
	}
	q.writeJSON(w, okEnvelope(rows))
}
