package system

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"go.ambercrest.dev/cellsupervise/actor"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type echoActor struct {
	mu   sync.Mutex
	got  []string
	self actor.Ref[string]
}

func (a *echoActor) Receive(ctx *actor.Context[string], msg string) {
	a.mu.Lock()
	a.got = append(a.got, msg)
	a.mu.Unlock()
}

func TestCreateActorAndTellRoundTrip(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	inst := &echoActor{}
	ref, err := CreateActor[string](s, actor.Props[string]{
		Produce: func() actor.Actor[string] { return inst },
	}, "echo")
	require.NoError(t, err)
	require.Equal(t, "/user/echo", ref.Path())

	require.NoError(t, ref.Tell("hi", nil))

	require.Eventually(t, func() bool {
		inst.mu.Lock()
		defer inst.mu.Unlock()
		return len(inst.got) == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, s.Shutdown(context.Background()))
}

func TestCreateActorRejectsDuplicateName(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	produce := func() actor.Actor[string] { return &echoActor{} }

	_, err = CreateActor[string](s, actor.Props[string]{Produce: produce}, "dup")
	require.NoError(t, err)

	_, err = CreateActor[string](s, actor.Props[string]{Produce: produce}, "dup")
	require.ErrorIs(t, err, actor.ErrNameTaken)

	require.NoError(t, s.Shutdown(context.Background()))
}

func TestShutdownRejectsNewActorsAfterward(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	require.NoError(t, s.Shutdown(context.Background()))

	_, err = CreateActor[string](s, actor.Props[string]{
		Produce: func() actor.Actor[string] { return &echoActor{} },
	}, "late")
	require.ErrorIs(t, err, actor.ErrSystemShuttingDown)
}
