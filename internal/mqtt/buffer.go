package mqtt

import "log"

// pendingMsg stores a serialized MQTT message for replay after reconnection.
type pendingMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// pendingQueue holds messages that could not be published while the broker
// connection was down. When the cap is exceeded the oldest messages are
// dropped. Not safe for concurrent use — caller must synchronize.
type pendingQueue struct {
	msgs []pendingMsg
	cap  int
}

func newPendingQueue(cap int) *pendingQueue {
	return &pendingQueue{cap: cap}
}

func (q *pendingQueue) push(msg pendingMsg) {
	q.msgs = append(q.msgs, msg)
	if len(q.msgs) > q.cap {
		over := len(q.msgs) - q.cap
		log.Printf("mqtt: pending queue full (%d messages), dropping %d oldest", q.cap, over)
		q.msgs = append(q.msgs[:0], q.msgs[over:]...)
	}
}

// drain returns all pending messages, oldest first, and empties the queue.
func (q *pendingQueue) drain() []pendingMsg {
	if len(q.msgs) == 0 {
		return nil
	}
	out := q.msgs
	q.msgs = nil
	return out
}

func (q *pendingQueue) len() int {
	return len(q.msgs)
}
