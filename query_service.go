package main

import (
	"net/http"
	"sync/atomic"
	"time"
)

// queryService answers the HTTP surface: `/`, `/worker_status`, and
// `/worker_status/`. Grounded on the teacher's StatusServer, trimmed to the
// three routes this domain actually needs and the envelope/counter
// bookkeeping spec.md §4.E and §5 require in place of the teacher's page
// cache and template rendering.
type queryService struct {
	reg   *registry
	clock Clock

	startedAt time.Time

	requestCount uint64
	responseByte uint64
}

func newQueryService(reg *registry, clock Clock) *queryService {
	return &queryService{
		reg:       reg,
		clock:     clock,
		startedAt: clock.Now(),
	}
}

func (q *queryService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddUint64(&q.requestCount, 1)

	switch r.URL.Path {
	case "/":
		q.handleServerStatus(w, r)
	case "/worker_status", "/worker_status/":
		q.handleWorkerStatus(w, r)
	default:
		http.NotFound(w, r)
	}
}

// writeJSON marshals body with sonic and adds the written length to the
// running response-byte counter after formatting, matching spec.md §4.E's
// "added to the running total after formatting the body".
func (q *queryService) writeJSON(w http.ResponseWriter, body interface{}) {
	data, err := fastJSONMarshal(body)
	if err != nil {
		logger.Error("query service json marshal error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/json")
	n, _ := w.Write(data)
	atomic.AddUint64(&q.responseByte, uint64(n))
}
