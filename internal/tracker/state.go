package tracker

import "sync/atomic"

// State identifies where the tracker currently is in its connection
// lifecycle. It is exposed for logging, health reporting, and tests; the
// tracker itself drives transitions internally.
type State string

const (
	StateDisconnected State = "disconnected" // Initial state, before Start
	StateConnecting   State = "connecting"   // Dialing the feed (possibly under backoff)
	StateSubscribing  State = "subscribing"  // Connection up, declaring subscriptions
	StateStreaming    State = "streaming"    // Steady state, consuming inbound messages
	StateReconnecting State = "reconnecting" // Connection lost, about to dial again
	StateTerminated   State = "terminated"   // Shut down via context cancellation
)

// stateHolder is a small atomic wrapper so that State() can be read from any
// goroutine while the run loop mutates it.
type stateHolder struct {
	value atomic.Value
}

func newStateHolder() *stateHolder {
	h := &stateHolder{}
	h.value.Store(StateDisconnected)
	return h
}

func (h *stateHolder) get() State {
	return h.value.Load().(State)
}

func (h *stateHolder) set(s State) {
	h.value.Store(s)
}
