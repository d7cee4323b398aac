package main

import (
	"errors"
	"syscall"
	"time"

	"github.com/pebbe/zmq4"
)

// errSourceTimeout is returned by EventSource.Poll when no frame arrived
// before the poll deadline. The ingest loop treats it as benign.
var errSourceTimeout = errors.New("eventsource: poll timeout")

// errUnknownTopic is returned when a frame arrives on a topic/partition the
// source was never subscribed to. The ingest loop treats this as fatal: it
// means the upstream has been reconfigured out from under us.
var errUnknownTopic = errors.New("eventsource: unknown topic or partition")

// EventSource abstracts the upstream share-log feed using Kafka's
// partition/offset vocabulary from the domain model, even though the
// concrete transport below is ZeroMQ pub/sub rather than a broker with a
// real offset log. Seeking is best-effort: see tailOffset.
type EventSource interface {
	// Open connects and subscribes to topic, seeking as close to position as
	// the transport allows before the first Poll.
	Open(topic string, partition int32, position int64) error
	// CheckAlive reports whether the source will answer Poll, mirroring
	// original_source's kafkaConsumer_.checkAlive() startup gate. Must be
	// called only after a successful Open.
	CheckAlive() error
	// Poll waits up to timeout for the next frame. It returns
	// errSourceTimeout on a benign empty poll and errUnknownTopic if the
	// frame's topic does not match what Open subscribed to.
	Poll(timeout time.Duration) (payload []byte, err error)
	// Close releases the underlying socket.
	Close() error
}

// tailOffset requests a best-effort warm start from n frames behind the
// current tail, mirroring RD_KAFKA_OFFSET_TAIL(n) from the source system.
// zmqShareSource cannot honor this (pub/sub has no offset log) and ignores
// it; Open still succeeds.
func tailOffset(n int64) int64 { return -n }

// zmqShareSource is the concrete EventSource, grounded on the teacher's
// zmqBlockLoop: a SUB socket, one subscribed topic, SetRcvtimeo bounding
// each Poll, and EAGAIN/ETIMEDOUT treated as a benign empty poll rather
// than an error.
type zmqShareSource struct {
	addr  string
	topic string
	sub   *zmq4.Socket
}

func newZMQShareSource(addr string) *zmqShareSource {
	return &zmqShareSource{addr: addr}
}

func (z *zmqShareSource) Open(topic string, partition int32, position int64) error {
	sub, err := zmq4.NewSocket(zmq4.SUB)
	if err != nil {
		return err
	}
	if err := sub.SetSubscribe(topic); err != nil {
		sub.Close()
		return err
	}
	if err := sub.SetRcvtimeo(time.Duration(pollTimeoutMillis) * time.Millisecond); err != nil {
		sub.Close()
		return err
	}
	if err := sub.Connect(z.addr); err != nil {
		sub.Close()
		return err
	}
	z.topic = topic
	z.sub = sub
	return nil
}

// CheckAlive is a best-effort liveness probe: ZeroMQ pub/sub has no
// synchronous handshake with a publisher, so this can only confirm the
// local socket is still usable, not that a publisher is actually connected
// on the other end. A real broker-backed source (e.g. Kafka) could confirm
// more; this is the same kind of best-effort substitution as tailOffset.
func (z *zmqShareSource) CheckAlive() error {
	if z.sub == nil {
		return errors.New("eventsource: not open")
	}
	_, err := z.sub.GetEvents()
	return err
}

func (z *zmqShareSource) Poll(timeout time.Duration) ([]byte, error) {
	if err := z.sub.SetRcvtimeo(timeout); err != nil {
		return nil, err
	}
	frames, err := z.sub.RecvMessageBytes(0)
	if err != nil {
		eno := zmq4.AsErrno(err)
		if eno == zmq4.Errno(syscall.EAGAIN) || eno == zmq4.ETIMEDOUT {
			return nil, errSourceTimeout
		}
		return nil, err
	}
	if len(frames) < 2 {
		return nil, errSourceTimeout
	}
	topic := string(frames[0])
	if topic != z.topic {
		return nil, errUnknownTopic
	}
	return frames[1], nil
}

func (z *zmqShareSource) Close() error {
	if z.sub == nil {
		return nil
	}
	return z.sub.Close()
}
