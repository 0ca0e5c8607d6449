package system

import (
	"github.com/google/uuid"

	"go.ambercrest.dev/cellsupervise/actor"
)

// ActorOf spawns a new child actor of message type ChildM under the
// caller's cell (ctx.Myself) and returns a typed reference to it.
//
// This is a free, package-level function rather than a Context[ParentM]
// method: Go methods cannot themselves be generic over a second type
// parameter, so a child's message type (ChildM) cannot be introduced by a
// method on Context[ParentM] without that method itself being generic
// over ChildM, which Go disallows. Calling convention:
//
//	child, err := system.ActorOf[ChildMsg](ctx, props, "worker-1")
//
// ChildM is supplied explicitly; ParentM is inferred from ctx.
func ActorOf[ChildM any, ParentM any](ctx *actor.Context[ParentM], props actor.Props[ChildM], name string) (actor.Ref[ChildM], error) {
	s, ok := ctx.System.(*ActorSystem)
	if !ok {
		var zero actor.Ref[ChildM]
		return zero, actor.ErrSystemShuttingDown
	}
	return spawnChild[ChildM](s, ctx.Myself.Basic(), props, name)
}

// CreateActor spawns a top-level actor directly under /user, for use at
// system start-up before any Context exists.
func CreateActor[M any](s *ActorSystem, props actor.Props[M], name string) (actor.Ref[M], error) {
	return spawnChild[M](s, s.userRoot, props, name)
}

// TmpActorOf spawns a short-lived actor under /temp with a randomly
// generated name, mirroring actor_cell.rs's TmpActorRefFactory. There is
// no special garbage collection for temporaries beyond the ordinary Stop
// path (SPEC_FULL.md §9, "Open questions resolved"): callers are expected
// to Stop a temp actor themselves once it has served its purpose.
func TmpActorOf[M any](s *ActorSystem, props actor.Props[M]) (actor.Ref[M], error) {
	return spawnChild[M](s, s.tempRoot, props, uuid.New().String())
}
