package main

import "encoding/binary"

// ShareResult is the accept/reject verdict carried by a Share frame.
type ShareResult uint8

const (
	ShareReject ShareResult = 0
	ShareAccept ShareResult = 1
)

// shareFrameSize is sizeof(Share) on the wire: a fixed-width packed record.
// timestamp(4) + userId(4) + workerHashId(8) + ip(4) + result(1) + share(8).
const shareFrameSize = 4 + 4 + 8 + 4 + 1 + 8

// Share is one decoded mining share event, as delivered by the upstream
// share-log feed. Field order and widths match the wire layout exactly;
// see decodeShare.
type Share struct {
	Timestamp    uint32 // seconds since epoch
	UserID       int32
	WorkerHashID int64
	IP           uint32 // packed IPv4, network byte order
	Result       ShareResult
	Share        uint64 // difficulty/weight contribution on accept
}

// isValid screens malformed frames. A share with no user, no worker, or an
// unrecognized verdict byte is dropped by the ingest loop before it ever
// reaches the registry.
func (s Share) isValid() bool {
	if s.UserID <= 0 {
		return false
	}
	if s.WorkerHashID == 0 {
		return false
	}
	if s.Result != ShareAccept && s.Result != ShareReject {
		return false
	}
	return true
}

// decodeShare parses a fixed-length wire frame into a Share. It reports
// false if the payload is not exactly shareFrameSize bytes.
func decodeShare(payload []byte) (Share, bool) {
	if len(payload) != shareFrameSize {
		return Share{}, false
	}
	var s Share
	off := 0
	s.Timestamp = binary.LittleEndian.Uint32(payload[off:])
	off += 4
	s.UserID = int32(binary.LittleEndian.Uint32(payload[off:]))
	off += 4
	s.WorkerHashID = int64(binary.LittleEndian.Uint64(payload[off:]))
	off += 8
	s.IP = binary.BigEndian.Uint32(payload[off:]) // network byte order per spec
	off += 4
	s.Result = ShareResult(payload[off])
	off += 1
	s.Share = binary.LittleEndian.Uint64(payload[off:])
	return s, true
}

// identityKey is the (userId, workerId) pair used to address entries in the
// registry. workerId == 0 denotes the aggregate across all workers of that
// user. The pool-wide accumulator is not addressed by an identityKey at
// all: it lives outside the registry map (see registry.pool).
type identityKey struct {
	userID   int32
	workerID int64
}

func (s Share) workerKey() identityKey {
	return identityKey{userID: s.UserID, workerID: s.WorkerHashID}
}

func (s Share) userAggregateKey() identityKey {
	return identityKey{userID: s.UserID, workerID: 0}
}
