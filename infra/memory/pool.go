package memory

import "sync"

// BufferPool recycles payload byte buffers. Buffers are handed out with
// the requested length and at least that capacity; undersized pooled
// buffers are discarded rather than grown in place.
type BufferPool struct {
	p *sync.Pool
}

func NewBufferPool() *BufferPool {
	return &BufferPool{
		p: &sync.Pool{
			New: func() any {
				b := make([]byte, 0, 256)
				return &b
			},
		},
	}
}

// Get returns a buffer of length n.
func (p *BufferPool) Get(n int) []byte {
	bp := p.p.Get().(*[]byte)
	if cap(*bp) < n {
		return make([]byte, n)
	}
	return (*bp)[:n]
}

// Put returns a buffer for reuse.
func (p *BufferPool) Put(b []byte) {
	b = b[:0]
	p.p.Put(&b)
}
