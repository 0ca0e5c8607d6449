// Package kernel is the concrete execution driver consumed by an actor
// cell through the actor.KernelHandle contract (component H,
// SPEC_FULL.md). It owns exactly one goroutine per live cell, drains the
// system mailbox ahead of the user mailbox, and recovers panics raised
// from a receive call, bridging them into a Failed notification sent to
// the cell's parent.
//
// The dispatch loop is grounded directly on the teacher's
// Supervisable/ActorWorker panic-recover-and-restart loop
// (FergusInLondon-go-supervise/actor.go, supervisor.go), generalized from
// "one registered worker function" to "one actor cell's two-mailbox
// dispatch loop."
package kernel

import (
	"context"
	"fmt"

	"go.ambercrest.dev/cellsupervise/actor"
	"go.ambercrest.dev/cellsupervise/internal/log"
	"go.ambercrest.dev/cellsupervise/mailbox"
)

// Kernel is the per-cell execution driver. It implements
// actor.KernelHandle.
type Kernel[M any] struct {
	ref         actor.Ref[M]
	sys         actor.SystemHandle
	sysMailbox  mailbox.Mailbox[actor.SystemMsg]
	userMailbox mailbox.Mailbox[actor.Envelope[M]]
	produce     actor.Producer[M]

	ctx       context.Context
	cancel    context.CancelFunc
	restartCh chan struct{}
	done      chan struct{}
}

// Run attaches and starts a Kernel for ref. parentCtx bounds the entire
// process's lifetime (e.g. the ActorSystem's own context); the returned
// Kernel's own Terminate cancels a derived context that bounds just this
// cell.
func Run[M any](
	parentCtx context.Context,
	ref actor.Ref[M],
	sys actor.SystemHandle,
	sysMailbox mailbox.Mailbox[actor.SystemMsg],
	userMailbox mailbox.Mailbox[actor.Envelope[M]],
	produce actor.Producer[M],
) *Kernel[M] {
	ctx, cancel := context.WithCancel(parentCtx)
	k := &Kernel[M]{
		ref:         ref,
		sys:         sys,
		sysMailbox:  sysMailbox,
		userMailbox: userMailbox,
		produce:     produce,
		ctx:         ctx,
		cancel:      cancel,
		restartCh:   make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
	go k.loop()
	return k
}

// Done reports when this cell's dispatch loop has fully exited.
func (k *Kernel[M]) Done() <-chan struct{} { return k.done }

// Terminate stops this cell's dispatch loop for good (actor.KernelHandle).
func (k *Kernel[M]) Terminate(actor.SystemHandle) {
	k.cancel()
}

// Restart rebuilds the actor instance in place and keeps the dispatch
// loop running (actor.KernelHandle).
func (k *Kernel[M]) Restart(actor.SystemHandle) {
	select {
	case k.restartCh <- struct{}{}:
	default:
		// a restart is already pending; no need to queue a second one
	}
}

type incarnation[M any] struct {
	actorInst actor.Actor[M]
	live      bool
}

func (k *Kernel[M]) loop() {
	defer close(k.done)
	defer k.notifyParentTerminated()

	inc := k.incarnate()

	for {
		select {
		case <-k.ctx.Done():
			k.postStop(&inc)
			return
		default:
		}

		// System messages take priority (§5): check non-blocking first.
		select {
		case sysMsg, ok := <-k.sysMailbox.C():
			if !ok {
				k.postStop(&inc)
				return
			}
			if k.handleSystem(sysMsg, &inc) {
				return
			}
			continue
		default:
		}

		select {
		case <-k.ctx.Done():
			k.postStop(&inc)
			return

		case sysMsg, ok := <-k.sysMailbox.C():
			if !ok {
				k.postStop(&inc)
				return
			}
			if k.handleSystem(sysMsg, &inc) {
				return
			}

		case env, ok := <-k.userMailbox.C():
			if !ok {
				k.postStop(&inc)
				return
			}
			k.handleUser(env, &inc)

		case <-k.restartCh:
			k.postStop(&inc)
			inc = k.incarnate()
		}
	}
}

func (k *Kernel[M]) incarnate() incarnation[M] {
	inst := k.produce()
	inc := incarnation[M]{actorInst: inst, live: true}

	if init, ok := inst.(actor.Initialiser); ok {
		if err := init.Init(k.ctx); err != nil {
			log.Printf("actor %s: init failed: %v", k.ref.Path(), err)
			inc.live = false
		}
	}
	return inc
}

// handleSystem processes one system message. It returns true if the
// dispatch loop should stop (the cell has fully terminated).
func (k *Kernel[M]) handleSystem(msg actor.SystemMsg, inc *incarnation[M]) (stop bool) {
	defer k.recoverPanic(inc, "system dispatch")

	switch msg.Kind {
	case actor.SysCommand:
		k.ref.Basic().ReceiveCmd(msg.Cmd, func() { k.safePostStop(inc) })
		if msg.Cmd == actor.CmdStop && !k.ref.Basic().HasChildren() {
			return k.ctx.Err() != nil
		}
		return false

	case actor.SysTerminated:
		k.ref.Basic().DeathWatch(msg.Ref, func() { k.safePostStop(inc) })
		return k.ctx.Err() != nil

	case actor.SysFailed:
		strategy := actor.StrategyRestart
		if sup, ok := inc.actorInst.(actor.Supervisor); ok && inc.live {
			strategy = sup.SupervisorStrategy(msg.Ref, msg.Cause)
		}
		k.ref.Basic().HandleFailure(msg.Ref, strategy)
		return false
	}
	return false
}

func (k *Kernel[M]) handleUser(env actor.Envelope[M], inc *incarnation[M]) {
	defer k.recoverPanic(inc, "receive")

	if !inc.live {
		return
	}

	ctx := &actor.Context[M]{Myself: k.ref, System: k.sys, Kernel: k}
	inc.actorInst.Receive(ctx, env.Msg)
}

func (k *Kernel[M]) recoverPanic(inc *incarnation[M], where string) {
	if r := recover(); r != nil {
		err := fmt.Errorf("panic in %s: %v", where, r)
		log.Printf("actor %s: %v", k.ref.Path(), err)
		inc.live = false

		if parent, ok := k.ref.Basic().Parent(); ok {
			_ = parent.SysTell(actor.FailedMsg(k.ref.Basic(), err))
		}
	}
}

// postStop invokes PostStop on the live actor instance, if any, and
// recovers any panic it raises (mirrors the teacher's safeTerminate).
func (k *Kernel[M]) postStop(inc *incarnation[M]) {
	k.safePostStop(inc)
}

func (k *Kernel[M]) safePostStop(inc *incarnation[M]) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("actor %s: recovered panic in PostStop: %v", k.ref.Path(), r)
		}
	}()

	if !inc.live {
		return
	}
	if term, ok := inc.actorInst.(actor.Terminator); ok {
		term.PostStop()
	}
}

func (k *Kernel[M]) notifyParentTerminated() {
	if parent, ok := k.ref.Basic().Parent(); ok {
		_ = parent.SysTell(actor.TerminatedMsg(k.ref.Basic()))
	}
}
