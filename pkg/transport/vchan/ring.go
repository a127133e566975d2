package vchan

import (
	"errors"
	"io"
	"sync"
)

var errClosed = errors.New("vchan: channel closed")

// ring is one direction of a vchan connection: a bounded circular byte
// buffer with blocking flow control. Closing wakes both sides; a reader
// drains whatever is buffered before seeing io.EOF, a writer fails
// immediately.
type ring struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	buf    []byte
	head   int // read position
	n      int // buffered bytes
	closed bool
}

func newRing(capacity int) *ring {
	r := &ring{buf: make([]byte, capacity)}
	r.notEmpty = sync.NewCond(&r.mu)
	r.notFull = sync.NewCond(&r.mu)
	return r
}

// write copies all of p into the ring, blocking while it is full.
func (r *ring) write(p []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for len(p) > 0 {
		for r.n == len(r.buf) && !r.closed {
			r.notFull.Wait()
		}
		if r.closed {
			return errClosed
		}
		chunk := min(len(r.buf)-r.n, len(p))
		tail := (r.head + r.n) % len(r.buf)
		first := min(chunk, len(r.buf)-tail)
		copy(r.buf[tail:], p[:first])
		copy(r.buf, p[first:chunk])
		r.n += chunk
		p = p[chunk:]
		r.notEmpty.Broadcast()
	}
	return nil
}

// read blocks until data is buffered or the ring is closed, then returns
// the next contiguous run. A closed, drained ring reads as io.EOF.
func (r *ring) read() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.n == 0 && !r.closed {
		r.notEmpty.Wait()
	}
	if r.n == 0 {
		return nil, io.EOF
	}
	chunk := min(r.n, len(r.buf)-r.head)
	out := make([]byte, chunk)
	copy(out, r.buf[r.head:r.head+chunk])
	r.head = (r.head + chunk) % len(r.buf)
	r.n -= chunk
	r.notFull.Broadcast()
	return out, nil
}

func (r *ring) close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.notEmpty.Broadcast()
	r.notFull.Broadcast()
}
