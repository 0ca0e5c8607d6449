package actor

// Envelope wraps a user message together with an optional sender
// reference, the unit carried by a typed mailbox.
type Envelope[M any] struct {
	Msg    M
	Sender *BasicRef
}

// AnyMessage is the type-erased envelope carrier used for the system
// mailbox and for generic (cross-type) dispatch. OneShot flags payloads
// that may be consumed only once (scheduled one-off timer jobs).
type AnyMessage struct {
	Payload any
	OneShot bool
}

// NewAnyMessage wraps payload for erased dispatch.
func NewAnyMessage(payload any, oneShot bool) AnyMessage {
	return AnyMessage{Payload: payload, OneShot: oneShot}
}

// SystemCmd is a supervision command delivered over a cell's system
// mailbox.
type SystemCmd int

const (
	// CmdStop requests the actor stop gracefully.
	CmdStop SystemCmd = iota
	// CmdRestart requests the actor restart once its children have
	// stopped.
	CmdRestart
)

func (c SystemCmd) String() string {
	switch c {
	case CmdStop:
		return "Stop"
	case CmdRestart:
		return "Restart"
	default:
		return "Unknown"
	}
}

// SystemMsgKind discriminates the payload carried by a SystemMsg.
type SystemMsgKind int

const (
	// SysCommand carries a SystemCmd (Stop/Restart) for this cell.
	SysCommand SystemMsgKind = iota
	// SysFailed carries notification that Ref's actor has failed and is
	// escalating to its parent.
	SysFailed
	// SysTerminated carries death-watch notification that Ref (a child)
	// has finished terminating.
	SysTerminated
)

// SystemMsg is the payload of the system mailbox: a tagged union of
// supervision commands and notifications, mirroring SystemCmd/SystemMsg in
// the actor-cell core this module implements.
type SystemMsg struct {
	Kind  SystemMsgKind
	Cmd   SystemCmd
	Ref   BasicRef
	Cause error
}

// StopCmd builds the system message requesting a graceful stop.
func StopCmd() SystemMsg { return SystemMsg{Kind: SysCommand, Cmd: CmdStop} }

// RestartCmd builds the system message requesting a restart.
func RestartCmd() SystemMsg { return SystemMsg{Kind: SysCommand, Cmd: CmdRestart} }

// FailedMsg builds the escalation notification sent to a parent when one
// of its children fails. cause carries the recovered panic value, if any.
func FailedMsg(failed BasicRef, cause error) SystemMsg {
	return SystemMsg{Kind: SysFailed, Ref: failed, Cause: cause}
}

// TerminatedMsg builds the death-watch notification sent internally once a
// child has fully stopped.
func TerminatedMsg(terminated BasicRef) SystemMsg {
	return SystemMsg{Kind: SysTerminated, Ref: terminated}
}

// Strategy is a supervisor's policy for a failed child.
type Strategy int

const (
	// StrategyStop stops the failed child.
	StrategyStop Strategy = iota
	// StrategyRestart restarts the failed child.
	StrategyRestart
	// StrategyEscalate propagates the failure to this cell's own parent.
	StrategyEscalate
)

// DeadLetter is the payload published to the dead-letter bus when a user
// message cannot be delivered.
type DeadLetter struct {
	Msg       string
	Sender    *BasicRef
	Recipient BasicRef
}
