package actor

import (
	"context"
	"errors"
	"fmt"

	"go.ambercrest.dev/cellsupervise/mailbox"
)

// Actor is the user-defined behaviour hosted by a cell, parameterised by
// its message type M. Receive is invoked serially: at most one goroutine
// executes it for a given cell at any instant (§5).
type Actor[M any] interface {
	Receive(ctx *Context[M], msg M)
}

// Initialiser lets an Actor run setup logic before processing begins,
// mirroring the teacher's Initialiser hook.
type Initialiser interface {
	Init(ctx context.Context) error
}

// Terminator lets an Actor perform cleanup when it stops, mirroring the
// teacher's Terminator hook. It is only invoked if a live actor instance
// exists when the cell terminates (SPEC_FULL.md §4.2).
type Terminator interface {
	PostStop()
}

// Producer constructs a fresh Actor[M] instance. Supervised restarts call
// Producer again to rebuild the actor from scratch.
type Producer[M any] func() Actor[M]

// Supervisor lets an Actor decide the Strategy applied to one of its
// failed children. The core only specifies how a decided Strategy is
// applied (HandleFailure); deciding it is this external hook. An actor
// that does not implement Supervisor gets StrategyRestart, the
// conventional default for one-for-one supervision.
type Supervisor interface {
	SupervisorStrategy(failed BasicRef, cause error) Strategy
}

// Props bundles everything the provider needs to spawn a new typed actor.
type Props[M any] struct {
	Produce       Producer[M]
	MailboxCap    int
	UseUnbounded  bool
}

// typedAnySender adapts a typed mailbox.Sender[Envelope[M]] to the
// type-erased AnySender a cell stores, so timer jobs and other erased
// dispatch paths can reach a typed actor without knowing M at compile
// time (SPEC_FULL.md, "Dynamic dispatch over message type").
type typedAnySender[M any] struct {
	mb mailbox.Sender[Envelope[M]]
}

func (t *typedAnySender[M]) TrySendAny(msg *AnyMessage, sender *BasicRef) error {
	m, ok := msg.Payload.(M)
	if !ok {
		return ErrTypeMismatch
	}
	if err := t.mb.TrySend(Envelope[M]{Msg: m, Sender: sender}); err != nil {
		return err
	}
	return nil
}

// NewAnySender wraps a typed mailbox sender for type-erased dispatch.
func NewAnySender[M any](mb mailbox.Sender[Envelope[M]]) AnySender {
	return &typedAnySender[M]{mb: mb}
}

// Ref is a strongly-typed reference to a cell: the BasicRef view plus the
// typed mailbox needed for Tell. Two Refs of the same M are equal iff
// their underlying cells share an ID (law L3).
type Ref[M any] struct {
	basic BasicRef
	mb    mailbox.Sender[Envelope[M]]
}

// NewRef constructs a typed reference over basic using mb as the typed
// mailbox sender. Used by the provider when spawning a new actor.
func NewRef[M any](basic BasicRef, mb mailbox.Sender[Envelope[M]]) Ref[M] {
	return Ref[M]{basic: basic, mb: mb}
}

// Basic returns the weakly-typed view of this reference.
func (r Ref[M]) Basic() BasicRef { return r.basic }

// ID returns the actor's process-unique identifier.
func (r Ref[M]) ID() ID { return r.basic.ID() }

// URI returns the actor's identity.
func (r Ref[M]) URI() URI { return r.basic.URI() }

// Path returns the actor's slash-joined path.
func (r Ref[M]) Path() string { return r.basic.Path() }

// Name returns the actor's leaf name.
func (r Ref[M]) Name() string { return r.basic.Name() }

// Equal reports whether r and other refer to the same underlying cell.
func (r Ref[M]) Equal(other Ref[M]) bool { return r.basic.Equal(other.basic) }

// IsChild reports whether other is a child of r.
func (r Ref[M]) IsChild(other BasicRef) bool { return r.basic.IsChild(other) }

// HasChildren reports whether r currently has any children.
func (r Ref[M]) HasChildren() bool { return r.basic.HasChildren() }

// SysTell sends a system message to r.
func (r Ref[M]) SysTell(msg SystemMsg) error { return r.basic.SysTell(msg) }

// Tell sends a user message to r. On failure the message is republished
// to the dead-letter bus before the error is returned to the caller
// (§4.3, §7: "best-effort delivery, never silent").
func (r Ref[M]) Tell(msg M, sender *BasicRef) error {
	env := Envelope[M]{Msg: msg, Sender: sender}
	err := r.mb.TrySend(env)
	if err == nil {
		return nil
	}

	dl := DeadLetter{
		Msg:       fmt.Sprintf("%#v", msg),
		Sender:    sender,
		Recipient: r.basic,
	}
	if dlp := r.deadLetters(); dlp != nil {
		dlp.Publish(DeadLetterTopic, dl)
	}

	if errors.Is(err, mailbox.ErrClosed) {
		return newClosedSendError(env)
	}
	return newFullSendError(env)
}

func (r Ref[M]) deadLetters() DeadLetterPublisher {
	if r.basic.s == nil || r.basic.s.system == nil {
		return nil
	}
	return r.basic.s.system.DeadLetters()
}

func (r Ref[M]) String() string {
	return fmt.Sprintf("Ref[%s]", r.Path())
}
