package mailbox

import "sync"

// chanMailbox is the default mailbox backend: a buffered Go channel, the
// same shape as the teacher's `chan Envelope` actor mailbox. TrySend never
// blocks: it reports ErrFull instead of waiting for space.
type chanMailbox[M any] struct {
	c      chan M
	mu     sync.Mutex
	closed bool
}

// NewChan returns a bounded, channel-backed Mailbox with the given
// capacity. Capacity <= 0 means a rendezvous (unbuffered) channel.
func NewChan[M any](capacity int) Mailbox[M] {
	if capacity < 0 {
		capacity = 0
	}
	return &chanMailbox[M]{c: make(chan M, capacity)}
}

func (m *chanMailbox[M]) TrySend(msg M) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	select {
	case m.c <- msg:
		return nil
	default:
		return ErrFull
	}
}

func (m *chanMailbox[M]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	close(m.c)
}

func (m *chanMailbox[M]) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *chanMailbox[M]) C() <-chan M {
	return m.c
}
