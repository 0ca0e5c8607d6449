package mailbox

import (
	"sync"

	"github.com/gammazero/deque"
)

// deque­Mailbox is an unbounded mailbox backend: TrySend always succeeds
// (short of the mailbox being closed) by growing an internal deque, and a
// single worker goroutine forwards queued messages onto a receive channel
// in FIFO order. This is the backend used for system mailboxes (§5: system
// messages must never be rejected for capacity reasons) and is grounded on
// the mailboxWorker/queue split from markInTheAbyss-go-actor.
type dequeMailbox[M any] struct {
	mu       sync.Mutex
	q        deque.Deque[M]
	sendSig  chan struct{}
	receiveC chan M
	closed   bool
	done     chan struct{}
}

// NewDeque returns an unbounded, deque-backed Mailbox.
func NewDeque[M any]() Mailbox[M] {
	m := &dequeMailbox[M]{
		sendSig:  make(chan struct{}, 1),
		receiveC: make(chan M),
		done:     make(chan struct{}),
	}
	go m.run()
	return m
}

func (m *dequeMailbox[M]) TrySend(msg M) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.q.PushBack(msg)
	m.mu.Unlock()

	select {
	case m.sendSig <- struct{}{}:
	default:
	}
	return nil
}

func (m *dequeMailbox[M]) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	select {
	case m.sendSig <- struct{}{}:
	default:
	}
}

func (m *dequeMailbox[M]) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *dequeMailbox[M]) C() <-chan M {
	return m.receiveC
}

// run drains the deque onto receiveC, one value at a time, until the
// mailbox is closed and empty.
func (m *dequeMailbox[M]) run() {
	defer close(m.receiveC)

	for {
		m.mu.Lock()
		if m.q.Len() == 0 {
			closed := m.closed
			m.mu.Unlock()
			if closed {
				return
			}
			<-m.sendSig
			continue
		}
		v := m.q.PopFront()
		m.mu.Unlock()

		m.receiveC <- v
	}
}
