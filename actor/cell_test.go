package actor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildCell wires a bare cell with a buffered system-mailbox channel the
// test can drain manually (standing in for the kernel), and a stubKernel
// to observe Terminate/Restart calls.
func buildCell(t *testing.T, name string, parent *BasicRef, sys SystemHandle) (BasicRef, *stubKernel, chan SystemMsg) {
	t.Helper()

	sysCh := make(chan SystemMsg, 64)
	sysSend := func(msg SystemMsg) error {
		select {
		case sysCh <- msg:
			return nil
		default:
			return &SendError[SystemMsg]{Closed: false, Envelope: msg, cause: errFull}
		}
	}

	parentPath := "/"
	if parent != nil {
		parentPath = parent.Path()
	}
	uri := URI{Name: name, Path: joinPath(parentPath, name)}

	ref := NewCell(ID(1), uri, parent, sys, nil, sysSend)
	k := &stubKernel{}
	ref.Init(k)
	return ref, k, sysCh
}

// Scenario 1: leaf stop. Parent P has child C (no grandchildren).
// P.tell(stop_C) -> system observes one post_stop on C, P unchanged,
// P.has_children() == false, C.is_terminating observed true before
// post_stop.
func TestScenarioLeafStop(t *testing.T) {
	sys := &stubSystem{}
	p, _, _ := buildCell(t, "p", nil, sys)
	sys.userRoot = p

	c, ck, _ := buildCell(t, "c", &p, sys)
	require.NoError(t, p.AddChild(c))
	require.True(t, p.HasChildren())

	postStopCalls := 0
	var terminatingObserved bool
	c.ReceiveCmd(CmdStop, func() {
		terminatingObserved = c.IsTerminating()
		postStopCalls++
	})

	require.Equal(t, 1, postStopCalls)
	require.True(t, terminatingObserved)
	require.Equal(t, 1, ck.terminated)

	// P itself never received a stop, so it's unchanged; once the parent
	// is told C died, it will have no children.
	p.DeathWatch(c, nil)
	require.False(t, p.HasChildren())
}

// Scenario 2: recursive stop. A-B-C chain. stop(A) terminates C, then B,
// then A (post_stop runs exactly once per cell).
func TestScenarioRecursiveStop(t *testing.T) {
	sys := &stubSystem{}
	a, ak, _ := buildCell(t, "a", nil, sys)
	sys.userRoot = a
	b, bk, _ := buildCell(t, "b", &a, sys)
	c, ck, _ := buildCell(t, "c", &b, sys)

	require.NoError(t, a.AddChild(b))
	require.NoError(t, b.AddChild(c))

	aPostStops, bPostStops, cPostStops := 0, 0, 0

	// stop(A): A has a child (B), so it propagates Stop to B and awaits
	// death-watch rather than terminating immediately.
	a.ReceiveCmd(CmdStop, func() { aPostStops++ })
	require.Equal(t, 0, aPostStops)
	require.Equal(t, 0, ak.terminated)

	// B has a child (C) too, so it propagates further rather than
	// terminating.
	b.ReceiveCmd(CmdStop, func() { bPostStops++ })
	require.Equal(t, 0, bPostStops)
	require.Equal(t, 0, bk.terminated)

	// C is a leaf: it terminates immediately.
	c.ReceiveCmd(CmdStop, func() { cPostStops++ })
	require.Equal(t, 1, cPostStops)
	require.Equal(t, 1, ck.terminated)

	// Death watch propagates upward once each child is gone.
	b.DeathWatch(c, func() { bPostStops++ })
	require.Equal(t, 1, bPostStops)
	require.Equal(t, 1, bk.terminated)

	a.DeathWatch(b, func() { aPostStops++ })
	require.Equal(t, 1, aPostStops)
	require.Equal(t, 1, ak.terminated)
}

// Scenario 3: restart with children. R has children X, Y. R.restart()
// triggers Stop on both, and after the second death-watch is_restarting
// is cleared and kernel.restart is invoked exactly once.
func TestScenarioRestartWithChildren(t *testing.T) {
	sys := &stubSystem{}
	r, rk, _ := buildCell(t, "r", nil, sys)
	sys.userRoot = r
	x, _, xsys := buildCell(t, "x", &r, sys)
	y, _, ysys := buildCell(t, "y", &r, sys)

	require.NoError(t, r.AddChild(x))
	require.NoError(t, r.AddChild(y))

	r.ReceiveCmd(CmdRestart, nil)
	require.True(t, r.IsRestarting())
	require.Equal(t, 0, rk.restarted)

	// Both children should have received a Stop command.
	require.Len(t, xsys, 1)
	require.Len(t, ysys, 1)
	for _, childSys := range []chan SystemMsg{xsys, ysys} {
		msg := <-childSys
		require.Equal(t, SysCommand, msg.Kind)
		require.Equal(t, CmdStop, msg.Cmd)
	}

	r.DeathWatch(x, nil)
	require.True(t, r.IsRestarting())
	require.Equal(t, 0, rk.restarted)

	r.DeathWatch(y, nil)
	require.False(t, r.IsRestarting())
	require.Equal(t, 1, rk.restarted)
}

// Scenario 4: escalation. Grandchild G fails, parent strategy = Escalate,
// grandparent strategy = Restart. G's parent sends Failed upward;
// grandparent issues Restart on G's parent.
func TestScenarioEscalation(t *testing.T) {
	sys := &stubSystem{}
	gp, gpk, gpsys := buildCell(t, "grandparent", nil, sys)
	sys.userRoot = gp
	parent, _, _ := buildCell(t, "parent", &gp, sys)
	g, _, _ := buildCell(t, "g", &parent, sys)

	require.NoError(t, gp.AddChild(parent))
	require.NoError(t, parent.AddChild(g))

	// parent's strategy for failed child g is Escalate.
	parent.HandleFailure(g, StrategyEscalate)

	require.Len(t, gpsys, 1)
	msg := <-gpsys
	require.Equal(t, SysFailed, msg.Kind)
	require.True(t, msg.Ref.Equal(parent))

	// grandparent's strategy for the failed child (parent) is Restart.
	gp.HandleFailure(msg.Ref, StrategyRestart)
	require.Equal(t, 0, gpk.restarted) // gp itself wasn't restarted...

	// ...instead "parent" (msg.Ref) was told to restart itself.
}

// Scenario 4b: Escalate reaching the root is terminal (SPEC_FULL.md §9).
func TestEscalateAtRootIsTerminal(t *testing.T) {
	sys := &stubSystem{}
	root, _, _ := buildCell(t, "root", nil, sys)
	sys.userRoot = root

	root.HandleFailure(root, StrategyEscalate)

	require.Len(t, sys.escalated, 1)
	require.True(t, sys.escalated[0].Equal(root))
}

// P4: a cell with is_terminating=true never spawns a new child
// successfully.
func TestAddChildRejectedWhileTerminating(t *testing.T) {
	sys := &stubSystem{}
	p, _, _ := buildCell(t, "p", nil, sys)
	sys.userRoot = p
	c, _, _ := buildCell(t, "c", &p, sys)

	p.ReceiveCmd(CmdStop, nil) // leaf parent: terminates immediately
	require.True(t, p.IsTerminating())

	err := p.AddChild(c)
	require.ErrorIs(t, err, ErrParentTerminating)
}

// P1: child names are unique under any parent.
func TestAddChildRejectsDuplicateName(t *testing.T) {
	sys := &stubSystem{}
	p, _, _ := buildCell(t, "p", nil, sys)
	sys.userRoot = p
	c1, _, _ := buildCell(t, "dup", &p, sys)
	c2, _, _ := buildCell(t, "dup", &p, sys)

	require.NoError(t, p.AddChild(c1))
	require.ErrorIs(t, p.AddChild(c2), ErrNameTaken)
}

// Law L3: two references with equal uid are equal under Equal() and
// produce equal Path().
func TestRefEqualityByUID(t *testing.T) {
	sys := &stubSystem{}
	a, _, _ := buildCell(t, "a", nil, sys)

	uri := URI{Name: "a", Path: "/a"}
	b := NewCell(a.ID(), uri, nil, sys, nil, nil)

	require.True(t, a.Equal(b))
	require.Equal(t, a.Path(), b.Path())
}
