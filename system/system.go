// Package system is the actor system proper: it owns the supervision
// tree's root, wires the dead-letter bus and timer every cell shares, and
// exposes the generic Provider (ActorOf/TmpActorOf) functions that spawn
// a typed actor. Grounded on actor_cell.rs's ActorSystem (user_root,
// temp_root, dead_letters, timer fields) and on the teacher's
// supervisor.Options functional-options convention for configuration
// (component I, SPEC_FULL.md).
package system

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go.ambercrest.dev/cellsupervise/actor"
	"go.ambercrest.dev/cellsupervise/deadletter"
	"go.ambercrest.dev/cellsupervise/internal/log"
	"go.ambercrest.dev/cellsupervise/kernel"
	"go.ambercrest.dev/cellsupervise/mailbox"
	"go.ambercrest.dev/cellsupervise/timer"
)

// ActorSystem is the runtime root: it implements actor.SystemHandle and
// is the entry point for spawning actors via ActorOf/TmpActorOf.
type ActorSystem struct {
	root     actor.BasicRef
	userRoot actor.BasicRef
	tempRoot actor.BasicRef

	deadLetters *deadletter.Bus
	timer       *timer.Timer
	executor    *goroutineExecutor

	nextID       atomic.Uint64
	shuttingDown atomic.Bool

	mu        sync.Mutex
	escalated []actor.BasicRef

	wg sync.WaitGroup
}

// New constructs an ActorSystem with /user and /temp already wired under
// an internal root cell, ready to host actors spawned via ActorOf.
func New(opts ...Option) (*ActorSystem, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &ActorSystem{
		deadLetters: cfg.deadLetters,
		timer:       cfg.timer,
		executor:    newGoroutineExecutor(),
	}

	s.root = spawnGuardianTracked(s, actor.RootID, actor.URI{Name: "", Path: "/"}, nil)

	userID := actor.ID(s.nextID.Add(1))
	s.userRoot = spawnGuardianTracked(s, userID, actor.URI{Name: "user", Path: "/user"}, &s.root)
	if err := s.root.AddChild(s.userRoot); err != nil {
		return nil, fmt.Errorf("system: failed to attach /user: %w", err)
	}

	tempID := actor.ID(s.nextID.Add(1))
	s.tempRoot = spawnGuardianTracked(s, tempID, actor.URI{Name: "temp", Path: "/temp"}, &s.root)
	if err := s.root.AddChild(s.tempRoot); err != nil {
		return nil, fmt.Errorf("system: failed to attach /temp: %w", err)
	}

	return s, nil
}

// UserRoot implements actor.SystemHandle.
func (s *ActorSystem) UserRoot() actor.BasicRef { return s.userRoot }

// DeadLetters implements actor.SystemHandle.
func (s *ActorSystem) DeadLetters() actor.DeadLetterPublisher { return s.deadLetters }

// Timer implements actor.SystemHandle.
func (s *ActorSystem) Timer() actor.TimerHandle { return s.timer }

// Executor implements actor.SystemHandle.
func (s *ActorSystem) Executor() actor.Executor { return s.executor }

// NextID implements actor.SystemHandle.
func (s *ActorSystem) NextID() actor.ID { return actor.ID(s.nextID.Add(1)) }

// IsShuttingDown implements actor.SystemHandle.
func (s *ActorSystem) IsShuttingDown() bool { return s.shuttingDown.Load() }

// Escalate implements actor.SystemHandle: a Strategy Escalate reaching the
// root is a terminal system failure (SPEC_FULL.md §9). It records root and
// marks the system as shutting down, so no new actor can be spawned, but
// it does not itself stop the tree; an operator observing Escalated is
// expected to call Shutdown.
func (s *ActorSystem) Escalate(root actor.BasicRef) {
	s.shuttingDown.Store(true)
	s.mu.Lock()
	s.escalated = append(s.escalated, root)
	s.mu.Unlock()
	log.Printf("system: terminal failure escalated to root from %s", root.Path())
}

// Escalated returns every root-level escalation recorded so far.
func (s *ActorSystem) Escalated() []actor.BasicRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]actor.BasicRef, len(s.escalated))
	copy(out, s.escalated)
	return out
}

// Shutdown stops accepting new actors, tells /user and /temp to stop, and
// waits for every spawned kernel to drain, then drains and halts the
// executor, timer, and dead-letter bus, in that order (spec.md's shutdown
// order, SPEC_FULL.md §2 component I).
func (s *ActorSystem) Shutdown(ctx context.Context) error {
	s.shuttingDown.Store(true)

	// Stopping the root cascades through /user and /temp to every actor
	// currently alive: each level's terminate() forwards Stop to its own
	// children and only finishes once DeathWatch has seen all of them go.
	_ = s.root.SysTell(actor.StopCmd())

	drained := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.executor.Stop()
	s.executor.Wait()

	s.timer.Stop()
	return s.deadLetters.Close()
}

func childPath(parentPath, name string) string {
	if parentPath == "" || parentPath == "/" {
		return "/" + name
	}
	return strings.TrimRight(parentPath, "/") + "/" + name
}

// spawnChild is the shared implementation behind ActorOf and TmpActorOf:
// it builds the mailboxes, the cell, and its Kernel, and registers the
// Kernel with the system's shutdown WaitGroup.
func spawnChild[M any](s *ActorSystem, parent actor.BasicRef, props actor.Props[M], name string) (actor.Ref[M], error) {
	var zero actor.Ref[M]

	if s.IsShuttingDown() {
		return zero, actor.ErrSystemShuttingDown
	}
	if name == "" || strings.Contains(name, "/") {
		return zero, actor.ErrInvalidName
	}

	userMb := newUserMailbox[M](props)
	sysMb := mailbox.NewDeque[actor.SystemMsg]()

	uid := s.NextID()
	uri := actor.URI{Name: name, Path: childPath(parent.Path(), name)}
	anySender := actor.NewAnySender[M](userMb)

	cell := actor.NewCell(uid, uri, &parent, s, anySender, func(msg actor.SystemMsg) error {
		return sysMb.TrySend(msg)
	})

	if err := parent.AddChild(cell); err != nil {
		return zero, err
	}

	ref := actor.NewRef[M](cell, userMb)
	k := kernel.Run[M](context.Background(), ref, s, sysMb, userMb, props.Produce)
	cell.Init(k)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-k.Done()
	}()

	return ref, nil
}

func newUserMailbox[M any](props actor.Props[M]) mailbox.Mailbox[actor.Envelope[M]] {
	if props.UseUnbounded {
		return mailbox.NewDeque[actor.Envelope[M]]()
	}
	mailboxCap := props.MailboxCap
	if mailboxCap <= 0 {
		mailboxCap = 64
	}
	return mailbox.NewChan[actor.Envelope[M]](mailboxCap)
}
