package system

import (
	"go.ambercrest.dev/cellsupervise/deadletter"
	"go.ambercrest.dev/cellsupervise/timer"
)

// config holds the ActorSystem's construction-time configuration,
// assembled by applying Options, mirroring the teacher's
// supervisor.Options/NewSupervisorWithOptions functional-options
// convention.
type config struct {
	deadLetters *deadletter.Bus
	timer       *timer.Timer
}

func defaultConfig() config {
	return config{
		deadLetters: deadletter.New(),
		timer:       timer.Start(),
	}
}

// Option configures an ActorSystem at construction time.
type Option func(*config)

// WithDeadLetters overrides the default in-process dead-letter bus, e.g.
// so a test can inject one it already holds a Subscribe handle on.
func WithDeadLetters(bus *deadletter.Bus) Option {
	return func(c *config) { c.deadLetters = bus }
}

// WithTimer overrides the default timer, e.g. so a test can inject one it
// already holds a handle on.
func WithTimer(t *timer.Timer) Option {
	return func(c *config) { c.timer = t }
}
