package actor

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TimerHandle is the external collaborator consumed (not implemented) by
// this package: §4.6's four scheduling operations, all packaged as
// AnyMessage over a single channel owned by the system.
type TimerHandle interface {
	Schedule(initialDelay, interval time.Duration, receiver BasicRef, sender *BasicRef, msg AnyMessage) uuid.UUID
	ScheduleOnce(delay time.Duration, receiver BasicRef, sender *BasicRef, msg AnyMessage) uuid.UUID
	ScheduleAtTime(at time.Time, receiver BasicRef, sender *BasicRef, msg AnyMessage) uuid.UUID
	CancelSchedule(id uuid.UUID)
}

// ErrSpawnShutdown is returned by Executor.Run once the system is
// shutting down.
var ErrSpawnShutdown = errors.New("actor: executor is shutting down")

// Handle is returned by Executor.Run: fire-plus-handle semantics, the
// caller may use Done to observe completion but need not.
type Handle interface {
	Done() <-chan struct{}
}

// Executor is the external collaborator that actually runs off-loaded
// work (§6): run(future) -> Handle, send-and-forget.
type Executor interface {
	Run(fn func(ctx context.Context)) (Handle, error)
	// Stop marks the executor as shutting down: further Run calls fail
	// with ErrSpawnShutdown. Stop does not itself wait for outstanding
	// work; call Wait for that.
	Stop()
	// Wait blocks until every Run call issued before Stop has returned.
	Wait()
}
