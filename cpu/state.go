package cpu

// State is the run state of the dispatcher.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	RUNNING = State(0) // running
	HALTED  = State(1) // halted
	FAULT   = State(2) // fault
)

// Done reports whether the state is terminal.
func (state State) Done() bool {
	return state != RUNNING
}

// Snapshot is a read-only view of the machine registers.
type Snapshot struct {
	A, B, C, D, E, H, L uint8
	Flags               Flags
	Pc, Sp              uint16
	State               State
}
