package actor

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Context is constructed by the kernel immediately before driving a
// receive call. It is specific to a single invocation: implementations
// must not let it outlive that invocation (SPEC_FULL.md, "Cross-invocation
// state"). It is not safe to share across goroutines or cache between
// messages.
type Context[M any] struct {
	Myself Ref[M]
	System SystemHandle
	Kernel KernelHandle
}

// Stop sends SystemCmd::Stop to the target reference. Spawning a new
// child actor is exposed as the package-level function system.ActorOf,
// not a Context method: Go methods cannot themselves be generic over a
// second message type, so spawning a child of a different message type
// than the parent's is a free function that takes the Context as its
// first argument (see the doc comment on system.ActorOf).
func (c *Context[M]) Stop(ref BasicRef) error {
	return ref.SysTell(StopCmd())
}

// Select resolves ctx.select(path) from §4.4: an absolute path (starting
// with "/") anchors at the user root with its own path prefix stripped;
// otherwise the selection anchors at Myself. An empty path is invalid.
func (c *Context[M]) Select(path string) (Selection, error) {
	return newSelection(c.Myself.Basic(), c.System.UserRoot(), path)
}

// Run off-loads fut onto the system executor (§4.6 "Schedule/run").
func (c *Context[M]) Run(fut func(ctx context.Context)) (Handle, error) {
	return c.System.Executor().Run(fut)
}

// Schedule requests a repeating job be sent to receiver every interval,
// starting after initialDelay.
func (c *Context[M]) Schedule(initialDelay, interval time.Duration, receiver BasicRef, sender *BasicRef, msg any) uuid.UUID {
	return c.System.Timer().Schedule(initialDelay, interval, receiver, sender, NewAnyMessage(msg, false))
}

// ScheduleOnce requests a one-shot job be sent to receiver after delay.
func (c *Context[M]) ScheduleOnce(delay time.Duration, receiver BasicRef, sender *BasicRef, msg any) uuid.UUID {
	return c.System.Timer().ScheduleOnce(delay, receiver, sender, NewAnyMessage(msg, true))
}

// ScheduleAtTime requests a one-shot job be sent to receiver at an
// absolute time.
func (c *Context[M]) ScheduleAtTime(at time.Time, receiver BasicRef, sender *BasicRef, msg any) uuid.UUID {
	return c.System.Timer().ScheduleAtTime(at, receiver, sender, NewAnyMessage(msg, true))
}

// CancelSchedule cancels a previously scheduled job by id.
func (c *Context[M]) CancelSchedule(id uuid.UUID) {
	c.System.Timer().CancelSchedule(id)
}
