package memory

import "sync/atomic"

// RetireRing is a lock-free MPSC ring buffer for retired payload
// buffers. Producers are the ref drop hooks, which fire on whatever
// goroutine releases the last share; the single consumer is the
// reclaim job.
type RetireRing struct {
	head  atomic.Uint64
	_pad1 [56]byte
	tail  atomic.Uint64
	_pad2 [56]byte
	buf   []atomic.Pointer[[]byte]
	mask  uint64
}

func NewRetireRing(size uint64) *RetireRing {
	if size == 0 || size&(size-1) != 0 {
		panic("RetireRing size must be a power of two")
	}
	return &RetireRing{
		buf:  make([]atomic.Pointer[[]byte], size),
		mask: size - 1,
	}
}

// Enqueue reserves a slot with a CAS on head and publishes the buffer
// through an atomic pointer store. Returns false when the ring is full;
// the caller then abandons the buffer to the GC, which is safe, just
// less efficient.
func (r *RetireRing) Enqueue(b []byte) bool {
	for {
		h := r.head.Load()
		t := r.tail.Load()
		if h-t == uint64(len(r.buf)) {
			return false
		}
		if r.head.CompareAndSwap(h, h+1) {
			r.buf[h&r.mask].Store(&b)
			return true
		}
	}
}

// Dequeue returns the oldest retired buffer, or nil when the ring is
// empty or the next slot is reserved but not yet published. Single
// consumer only.
func (r *RetireRing) Dequeue() []byte {
	t := r.tail.Load()
	h := r.head.Load()
	if t == h {
		return nil
	}
	bp := r.buf[t&r.mask].Swap(nil)
	if bp == nil {
		// Producer reserved the slot but has not published yet.
		return nil
	}
	r.tail.Store(t + 1)
	return *bp
}

// Len reports the number of occupied (or reserved) slots.
func (r *RetireRing) Len() int {
	return int(r.head.Load() - r.tail.Load())
}

// Cap reports the ring capacity.
func (r *RetireRing) Cap() int {
	return len(r.buf)
}
