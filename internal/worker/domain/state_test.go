package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_CanTransition(t *testing.T) {
	tests := []struct {
		from State
		to   State
		want bool
	}{
		{StatePending, StateInFlight, true},
		{StateInFlight, StateSucceeded, true},
		{StateInFlight, StateRetryWait, true},
		{StateInFlight, StateFailed, true},
		{StateRetryWait, StatePending, true},
		{StatePending, StateSucceeded, false},
		{StateRetryWait, StateInFlight, false},
		{StateSucceeded, StatePending, false},
		{StateFailed, StateRetryWait, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestState_Terminal(t *testing.T) {
	assert.True(t, StateSucceeded.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StatePending.Terminal())
	assert.False(t, StateInFlight.Terminal())
	assert.False(t, StateRetryWait.Terminal())
}
