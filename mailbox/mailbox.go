// Package mailbox supplies the concrete mailbox backends consumed by the
// actor cell through a narrow send/receive contract. The cell only relies
// on this contract (component G of SPEC_FULL.md); it never reaches into a
// backend's internals.
package mailbox

import "errors"

// ErrClosed is returned by TrySend once the mailbox has been closed.
var ErrClosed = errors.New("mailbox: closed")

// ErrFull is returned by TrySend on a bounded mailbox that has no spare
// capacity. Bounded mailboxes are the only backend that can return this.
var ErrFull = errors.New("mailbox: full")

// Sender is the write side of a mailbox: try_send(envelope) -> Result.
type Sender[M any] interface {
	// TrySend enqueues msg without blocking. It returns ErrClosed if the
	// mailbox has been closed, or ErrFull if the mailbox is bounded and at
	// capacity.
	TrySend(msg M) error
	// Close marks the mailbox closed; further TrySend calls fail with
	// ErrClosed. Close is idempotent.
	Close()
	// Closed reports whether Close has been called.
	Closed() bool
}

// Receiver is the read side of a mailbox, consumed by the kernel's
// dispatch loop via select.
type Receiver[M any] interface {
	// C returns the channel the kernel selects on to receive messages.
	// It is closed once the mailbox is closed and drained.
	C() <-chan M
}

// Mailbox bundles both sides of a mailbox, as produced by the backend
// constructors in this package.
type Mailbox[M any] interface {
	Sender[M]
	Receiver[M]
}
