// Package actor implements the actor cell: the per-actor container that
// mediates between a user-defined receive function and the runtime's
// mailboxes, scheduler, supervisor tree and timer (see SPEC_FULL.md §§3-4).
package actor

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.ambercrest.dev/cellsupervise/internal/log"
)

// KernelHandle is the narrow contract the cell needs from its execution
// driver (component H, SPEC_FULL.md). It is attached exactly once, by
// Init, before the cell is handed back to user code (invariant I3).
type KernelHandle interface {
	// Terminate stops the kernel's dispatch loop for this cell for good.
	Terminate(sys SystemHandle)
	// Restart stops and re-creates the user actor instance, then resumes
	// the dispatch loop.
	Restart(sys SystemHandle)
}

// SystemHandle is the narrow view of the ActorSystem that a cell and its
// Context need: the user-root for Selection anchoring, the dead-letter
// bus, actor id allocation, the timer and executor, and shutdown/
// escalation state.
type SystemHandle interface {
	UserRoot() BasicRef
	DeadLetters() DeadLetterPublisher
	Timer() TimerHandle
	Executor() Executor
	NextID() ID
	IsShuttingDown() bool
	// Escalate records a terminal system failure: Strategy Escalate
	// reaching the root of the tree (SPEC_FULL.md §9).
	Escalate(root BasicRef)
}

// DeadLetterPublisher is the narrow view of the dead-letter bus a cell
// needs to republish an undeliverable user message.
type DeadLetterPublisher interface {
	Publish(topic string, msg DeadLetter)
}

// DeadLetterTopic is the well-known topic dead letters are published on.
const DeadLetterTopic = "dead_letter"

// AnySender is the type-erased send path a cell exposes so the timer and
// generic dispatch code can deliver a message without knowing the cell's
// concrete message type M.
type AnySender interface {
	TrySendAny(msg *AnyMessage, sender *BasicRef) error
}

// cellState is the shared, reference-counted state behind every BasicRef
// and Ref[M] pointing at the same actor. Many references may point at one
// cellState; it lives as long as the longest-held reference.
type cellState struct {
	uid    ID
	uri    URI
	parent *BasicRef
	system SystemHandle

	children *Children

	isTerminating atomic.Bool
	isRestarting  atomic.Bool
	status        atomic.Uint32

	kernelMu sync.RWMutex
	kernel   KernelHandle

	anyMailbox AnySender
	sysSend    func(SystemMsg) error
}

// BasicRef is a weakly-typed reference to an actor cell. Two BasicRefs are
// equal iff they point at cells with the same ID (law L3).
type BasicRef struct {
	s *cellState
}

// NewCell constructs a brand-new, not-yet-initialised cell. Init must be
// called before the cell is handed to user code (invariant I3).
func NewCell(uid ID, uri URI, parent *BasicRef, system SystemHandle, anyMailbox AnySender, sysSend func(SystemMsg) error) BasicRef {
	s := &cellState{
		uid:        uid,
		uri:        uri,
		parent:     parent,
		system:     system,
		children:   NewChildren(),
		anyMailbox: anyMailbox,
		sysSend:    sysSend,
	}
	return BasicRef{s: s}
}

// Init attaches the cell's KernelHandle. It must be called exactly once,
// by the provider, before the reference is observable to user code.
func (r BasicRef) Init(k KernelHandle) {
	r.s.kernelMu.Lock()
	defer r.s.kernelMu.Unlock()
	r.s.kernel = k
}

func (r BasicRef) kernelHandle() KernelHandle {
	r.s.kernelMu.RLock()
	defer r.s.kernelMu.RUnlock()
	return r.s.kernel
}

// ID returns the actor's process-unique identifier.
func (r BasicRef) ID() ID { return r.s.uid }

// URI returns the actor's identity (name/path/host).
func (r BasicRef) URI() URI { return r.s.uri }

// Path returns the actor's slash-joined path.
func (r BasicRef) Path() string { return r.s.uri.Path }

// Name returns the actor's leaf name.
func (r BasicRef) Name() string { return r.s.uri.Name }

// IsValid reports whether this reference points at a live cell; the zero
// BasicRef (no underlying cell) is invalid.
func (r BasicRef) IsValid() bool { return r.s != nil }

// Equal reports whether r and other refer to the same underlying cell
// (law L3).
func (r BasicRef) Equal(other BasicRef) bool {
	if r.s == nil || other.s == nil {
		return r.s == other.s
	}
	return r.s.uid == other.s.uid
}

// Parent returns the cell's parent reference. ok is false only for the
// root.
func (r BasicRef) Parent() (BasicRef, bool) {
	if r.s.parent == nil {
		return BasicRef{}, false
	}
	return *r.s.parent, true
}

// IsRoot reports whether this is the actor system's root cell.
func (r BasicRef) IsRoot() bool { return r.s.uid == RootID }

// HasChildren reports whether this cell currently has any children.
func (r BasicRef) HasChildren() bool { return r.s.children.Len() > 0 }

// Children returns a weakly-consistent snapshot of this cell's children.
func (r BasicRef) Children() []BasicRef { return r.s.children.Iter() }

// IsChild reports whether other is currently a child of r.
func (r BasicRef) IsChild(other BasicRef) bool {
	existing, ok := r.s.children.Get(other.Name())
	if !ok {
		return false
	}
	return existing.Equal(other)
}

// IsTerminating reports whether Stop has been requested for this cell.
func (r BasicRef) IsTerminating() bool { return r.s.isTerminating.Load() }

// IsRestarting reports whether Restart is in progress (awaiting children).
func (r BasicRef) IsRestarting() bool { return r.s.isRestarting.Load() }

// AddChild registers a new child under this cell. It enforces invariants
// I2 (no duplicate names) and I4 (no new children once terminating).
func (r BasicRef) AddChild(child BasicRef) error {
	if r.s.isTerminating.Load() {
		return createErrorf(ErrParentTerminating, "cannot add child %q to %q", child.Name(), r.Path())
	}
	if _, exists := r.s.children.Get(child.Name()); exists {
		return createErrorf(ErrNameTaken, "child %q already exists under %q", child.Name(), r.Path())
	}
	r.s.children.Add(child)
	return nil
}

// RemoveChild deletes child from this cell's children, if present.
func (r BasicRef) RemoveChild(child BasicRef) { r.s.children.Remove(child) }

// SysTell sends a system (supervision) message to this cell. System
// messages take priority over user messages (§5) and are never
// dead-lettered on send failure (§7): the error is returned to the caller.
func (r BasicRef) SysTell(msg SystemMsg) error {
	if r.s.sysSend == nil {
		return &SendError[SystemMsg]{Closed: true, Envelope: msg, cause: errClosed}
	}
	return r.s.sysSend(msg)
}

// SendAny dispatches a type-erased message, used by the timer and by
// generic supervision plumbing that does not know the cell's concrete
// message type. Unlike Ref.Tell, a failed SendAny is not
// dead-lettered here; callers that need that (the timer does not) should
// do so themselves.
func (r BasicRef) SendAny(msg *AnyMessage, sender *BasicRef) error {
	if r.s.anyMailbox == nil {
		return ErrTypeMismatch
	}
	return r.s.anyMailbox.TrySendAny(msg, sender)
}

// ReceiveCmd consumes a Stop or Restart system command. It must be called
// only from the kernel while the cell is scheduled. postStop is skipped
// when nil; the kernel always passes a non-nil postStop that itself does
// nothing unless a live actor instance exists.
func (r BasicRef) ReceiveCmd(cmd SystemCmd, postStop func()) {
	switch cmd {
	case CmdStop:
		r.terminate(postStop)
	case CmdRestart:
		r.restart()
	}
}

func (r BasicRef) terminate(postStop func()) {
	r.s.isTerminating.Store(true)

	if !r.HasChildren() {
		if k := r.kernelHandle(); k != nil {
			k.Terminate(r.s.system)
		}
		if postStop != nil {
			postStop()
		}
		return
	}

	for _, child := range r.s.children.Iter() {
		log.Printf("actor %s: stopping child %s", r.Path(), child.Path())
		_ = child.SysTell(StopCmd())
	}
}

func (r BasicRef) restart() {
	if !r.HasChildren() {
		if k := r.kernelHandle(); k != nil {
			k.Restart(r.s.system)
		}
		return
	}

	r.s.isRestarting.Store(true)
	for _, child := range r.s.children.Iter() {
		_ = child.SysTell(StopCmd())
	}
}

// DeathWatch consumes notification that terminated (a child of r) has
// fully stopped. It must be called only from the kernel.
func (r BasicRef) DeathWatch(terminated BasicRef, postStop func()) {
	if !r.IsChild(terminated) {
		return
	}
	r.RemoveChild(terminated)

	if r.HasChildren() {
		return
	}

	if r.s.isTerminating.Load() {
		if k := r.kernelHandle(); k != nil {
			k.Terminate(r.s.system)
		}
		if postStop != nil {
			postStop()
		}
	}

	if r.s.isRestarting.Load() {
		r.s.isRestarting.Store(false)
		if k := r.kernelHandle(); k != nil {
			k.Restart(r.s.system)
		}
	}
}

// HandleFailure applies a supervisor's Strategy to a failing child.
// Escalate reaching the root is terminal (SPEC_FULL.md §9).
func (r BasicRef) HandleFailure(failed BasicRef, strategy Strategy) {
	switch strategy {
	case StrategyStop:
		_ = failed.SysTell(StopCmd())
	case StrategyRestart:
		_ = failed.SysTell(RestartCmd())
	case StrategyEscalate:
		if parent, ok := r.Parent(); ok {
			_ = parent.SysTell(FailedMsg(r, nil))
		} else {
			log.Printf("actor %s: Escalate reached the root, terminal system failure", r.Path())
			r.s.system.Escalate(r)
		}
	}
}

func (r BasicRef) String() string {
	return fmt.Sprintf("BasicRef[%s]", r.Path())
}
