package main

import "strconv"

// envelope wraps every HTTP response in the fixed error_no/error_msg/result
// shape. error_no is 0 on success; logical errors (bad args) are surfaced
// in-band with HTTP 200 rather than a 4xx status.
type envelope struct {
	ErrorNo  int         `json:"error_no"`
	ErrorMsg string      `json:"error_msg"`
	Result   interface{} `json:"result,omitempty"`
}

func okEnvelope(result interface{}) envelope {
	return envelope{ErrorNo: 0, ErrorMsg: "", Result: result}
}

func errEnvelope(code int, msg string) envelope {
	return envelope{ErrorNo: code, ErrorMsg: msg}
}

// poolStatus mirrors a WorkerStatus but drops the per-worker-only fields
// (last_share_ip/time carry no meaning at pool scope beyond what accept/
// reject sums already convey, and are omitted the way the source's pool
// summary omits them).
type poolStatus struct {
	Accept      [3]uint64 `json:"accept"`
	Reject      [3]uint64 `json:"reject"`
	AcceptCount uint32    `json:"accept_count"`
}

// serverStatusResult is the `/` result payload.
type serverStatusResult struct {
	Uptime        string     `json:"uptime"`
	Request       uint64     `json:"request"`
	RepBytes      uint64     `json:"repbytes"`
	Pool          poolStatus `json:"pool"`
	Workers       int        `json:"workers"`
	Users         int        `json:"users"`
	DroppedShares uint64     `json:"dropped_shares"`
}

// workerStatusRow is one entry in the `/worker_status` result array.
type workerStatusRow struct {
	WorkerID      int64     `json:"worker_id"`
	Accept        [3]uint64 `json:"accept"`
	Reject        [3]uint64 `json:"reject"`
	AcceptCount   uint32    `json:"accept_count"`
	LastShareIP   string    `json:"last_share_ip"`
	LastShareTime uint32    `json:"last_share_time"`
	Workers       *int      `json:"workers,omitempty"`
}

func toPoolStatus(s WorkerStatus) poolStatus {
	return poolStatus{
		Accept:      [3]uint64{s.Accept1m, s.Accept5m, s.Accept15m},
		Reject:      [3]uint64{0, 0, s.Reject15m},
		AcceptCount: s.AcceptCount,
	}
}

func toWorkerStatusRow(workerID int64, s WorkerStatus) workerStatusRow {
	return workerStatusRow{
		WorkerID:      workerID,
		Accept:        [3]uint64{s.Accept1m, s.Accept5m, s.Accept15m},
		Reject:        [3]uint64{0, 0, s.Reject15m},
		AcceptCount:   s.AcceptCount,
		LastShareIP:   dottedQuad(s.LastShareIP),
		LastShareTime: s.LastShareTime,
	}
}

// dottedQuad renders a packed 32-bit network-byte-order IPv4 address in
// standard dotted-quad form.
func dottedQuad(ip uint32) string {
	return strconv.Itoa(int(ip>>24&0xff)) + "." +
		strconv.Itoa(int(ip>>16&0xff)) + "." +
		strconv.Itoa(int(ip>>8&0xff)) + "." +
		strconv.Itoa(int(ip&0xff))
}
