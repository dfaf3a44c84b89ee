package publish

// pendingMsg stores a serialized message for replay after reconnection.
type pendingMsg struct {
	topic   string
	payload []byte
	qos     byte
}

// pendingQueue is a fixed-capacity FIFO holding messages while the
// broker is unreachable. Oldest messages are discarded on overflow.
// Not safe for concurrent use; the publisher's mutex guards it.
type pendingQueue struct {
	buf      []pendingMsg
	capacity int
	head     int // next write position
	count    int
	dropped  uint64
}

func newPendingQueue(capacity int) *pendingQueue {
	return &pendingQueue{
		buf:      make([]pendingMsg, capacity),
		capacity: capacity,
	}
}

func (q *pendingQueue) push(msg pendingMsg) {
	if q.count == q.capacity {
		// Overwrite oldest: head already points at it
		q.buf[q.head] = msg
		q.head = (q.head + 1) % q.capacity
		q.dropped++
		return
	}
	q.buf[q.head] = msg
	q.head = (q.head + 1) % q.capacity
	q.count++
}

func (q *pendingQueue) drainAll() []pendingMsg {
	if q.count == 0 {
		return nil
	}

	result := make([]pendingMsg, q.count)
	start := (q.head - q.count + q.capacity) % q.capacity
	for i := 0; i < q.count; i++ {
		result[i] = q.buf[(start+i)%q.capacity]
	}

	q.count = 0
	q.head = 0

	return result
}

func (q *pendingQueue) len() int {
	return q.count
}
