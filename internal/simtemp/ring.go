package simtemp

// ring is a fixed-capacity FIFO of samples.
// Not safe for concurrent use; the device's data-plane lock guards it.
type ring struct {
	buf      []Sample
	capacity int
	head     int // index of the oldest entry
	count    int
}

func newRing(capacity int) *ring {
	return &ring{
		buf:      make([]Sample, capacity),
		capacity: capacity,
	}
}

func (r *ring) full() bool {
	return r.count == r.capacity
}

func (r *ring) empty() bool {
	return r.count == 0
}

func (r *ring) len() int {
	return r.count
}

// push appends s as the newest entry. It fails only when no slot is
// free; the caller evicts first to implement drop-oldest.
func (r *ring) push(s Sample) bool {
	if r.count == r.capacity {
		return false
	}
	r.buf[(r.head+r.count)%r.capacity] = s
	r.count++

	return true
}

// pop removes and returns the oldest entry.
func (r *ring) pop() (Sample, bool) {
	if r.count == 0 {
		return Sample{}, false
	}
	s := r.buf[r.head]
	r.buf[r.head] = Sample{}
	r.head = (r.head + 1) % r.capacity
	r.count--

	return s, true
}
