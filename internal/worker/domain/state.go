package domain

// State is where a job stands in its lifecycle
type State string

// Job states. A failed attempt with attempts left moves to StateRetryWait and
// comes back as StatePending once its delay has elapsed.
const (
	StatePending   State = "pending"
	StateInFlight  State = "in_flight"
	StateRetryWait State = "retry_wait"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

var transitions = map[State][]State{
	StatePending:   {StateInFlight},
	StateInFlight:  {StateSucceeded, StateRetryWait, StateFailed},
	StateRetryWait: {StatePending},
}

// CanTransition reports whether a job may move from s to next
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}
