package otghs

import "github.com/ardnew/otghs/pkg"

// FragmentQueue is a fixed-capacity FIFO of fragments. It never allocates,
// so it is safe to use from interrupt context.
type FragmentQueue struct {
	buf  [MaxQueuedFragments]Fragment
	head int
	n    int
}

// Len returns the number of queued fragments.
func (q *FragmentQueue) Len() int {
	return q.n
}

// PushBack appends f.
func (q *FragmentQueue) PushBack(f Fragment) error {
	if q.n == len(q.buf) {
		return pkg.ErrQueueFull
	}
	q.buf[(q.head+q.n)%len(q.buf)] = f
	q.n++
	return nil
}

// PushFront puts f back in front of every queued fragment.
func (q *FragmentQueue) PushFront(f Fragment) error {
	if q.n == len(q.buf) {
		return pkg.ErrQueueFull
	}
	q.head = (q.head + len(q.buf) - 1) % len(q.buf)
	q.buf[q.head] = f
	q.n++
	return nil
}

// PopFront removes and returns the oldest fragment.
func (q *FragmentQueue) PopFront() (f Fragment, ok bool) {
	if q.n == 0 {
		return
	}
	f = q.buf[q.head]
	q.buf[q.head] = Fragment{}
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	return f, true
}

// Front returns the oldest fragment without removing it.
func (q *FragmentQueue) Front() (f Fragment, ok bool) {
	if q.n == 0 {
		return
	}
	return q.buf[q.head], true
}

// Has reports whether a fragment of the given kind is queued.
func (q *FragmentQueue) Has(kind FragmentKind) bool {
	for i := 0; i < q.n; i++ {
		if q.buf[(q.head+i)%len(q.buf)].Kind == kind {
			return true
		}
	}
	return false
}

// Reset drops every queued fragment.
func (q *FragmentQueue) Reset() {
	*q = FragmentQueue{}
}
