package system

import (
	"context"

	"go.ambercrest.dev/cellsupervise/actor"
	"go.ambercrest.dev/cellsupervise/kernel"
	"go.ambercrest.dev/cellsupervise/mailbox"
)

// guardianMsg is the (unused) message type of a guardian cell: /, /user
// and /temp never receive user messages, they exist purely to give the
// tree's structural nodes a real dispatch loop, so that a Failed
// notification from a top-level actor has somewhere to be decided
// instead of being silently dropped.
type guardianMsg struct{}

// guardianActor has no business logic of its own: its Receive is a no-op
// and its SupervisorStrategy restarts every failed child.
type guardianActor struct{}

func (guardianActor) Receive(*actor.Context[guardianMsg], guardianMsg) {}

// SupervisorStrategy implements actor.Supervisor: a guardian always
// restarts its failed children, the same one-for-one default the kernel
// applies to an actor that does not implement actor.Supervisor.
func (guardianActor) SupervisorStrategy(actor.BasicRef, error) actor.Strategy {
	return actor.StrategyRestart
}

// spawnGuardianTracked builds a structural cell (root, /user, /temp) with
// a real kernel behind it, so SysTell/HandleFailure/DeathWatch on it work
// exactly like any other cell's, and registers it with the system's
// shutdown WaitGroup just like an ordinary spawned actor.
func spawnGuardianTracked(s *ActorSystem, uid actor.ID, uri actor.URI, parent *actor.BasicRef) actor.BasicRef {
	userMb := mailbox.NewChan[actor.Envelope[guardianMsg]](1)
	sysMb := mailbox.NewDeque[actor.SystemMsg]()
	anySender := actor.NewAnySender[guardianMsg](userMb)

	cell := actor.NewCell(uid, uri, parent, s, anySender, func(msg actor.SystemMsg) error {
		return sysMb.TrySend(msg)
	})

	ref := actor.NewRef[guardianMsg](cell, userMb)
	k := kernel.Run[guardianMsg](context.Background(), ref, s, sysMb, userMb, func() actor.Actor[guardianMsg] {
		return guardianActor{}
	})
	cell.Init(k)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-k.Done()
	}()

	return cell
}
