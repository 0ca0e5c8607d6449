package actor

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// stubSystem is a minimal SystemHandle used across actor package tests.
type stubSystem struct {
	userRoot    BasicRef
	deadLetters stubDeadLetters
	shuttingDown bool
	escalated   []BasicRef
}

func (s *stubSystem) UserRoot() BasicRef               { return s.userRoot }
func (s *stubSystem) DeadLetters() DeadLetterPublisher  { return &s.deadLetters }
func (s *stubSystem) Timer() TimerHandle                { return stubTimer{} }
func (s *stubSystem) Executor() Executor                { return stubExecutor{} }
func (s *stubSystem) NextID() ID                        { return 0 }
func (s *stubSystem) IsShuttingDown() bool              { return s.shuttingDown }
func (s *stubSystem) Escalate(root BasicRef)            { s.escalated = append(s.escalated, root) }

type stubDeadLetters struct {
	published []DeadLetter
}

func (d *stubDeadLetters) Publish(topic string, msg DeadLetter) {
	d.published = append(d.published, msg)
}

type stubTimer struct{}

func (stubTimer) Schedule(time.Duration, time.Duration, BasicRef, *BasicRef, AnyMessage) uuid.UUID {
	return uuid.New()
}
func (stubTimer) ScheduleOnce(time.Duration, BasicRef, *BasicRef, AnyMessage) uuid.UUID {
	return uuid.New()
}
func (stubTimer) ScheduleAtTime(time.Time, BasicRef, *BasicRef, AnyMessage) uuid.UUID {
	return uuid.New()
}
func (stubTimer) CancelSchedule(uuid.UUID) {}

type stubExecutor struct{}

func (stubExecutor) Run(fn func(ctx context.Context)) (Handle, error) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn(context.Background())
	}()
	return stubHandle{done: done}, nil
}

type stubHandle struct{ done chan struct{} }

func (h stubHandle) Done() <-chan struct{} { return h.done }

// stubKernel records Terminate/Restart calls.
type stubKernel struct {
	terminated int
	restarted  int
}

func (k *stubKernel) Terminate(SystemHandle) { k.terminated++ }
func (k *stubKernel) Restart(SystemHandle)   { k.restarted++ }
