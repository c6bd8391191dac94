package teleport

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLayout(t *testing.T) {
	l, err := NewLayout([]int{4, 0, 3, 1, 2}, 5)
	require.NoError(t, err)

	assert.Equal(t, 4, l.Qubit(StateA))
	assert.Equal(t, 0, l.Qubit(StateB))
	assert.Equal(t, 3, l.Qubit(RelaySource))
	assert.Equal(t, 1, l.Qubit(RelayAncilla))
	assert.Equal(t, 2, l.Qubit(RelayDestination))
	assert.Equal(t, []int{4, 0, 3, 1, 2}, l.Positions())
}

func TestNewLayoutRejects(t *testing.T) {
	tests := []struct {
		name      string
		positions []int
		numQubits int
	}{
		{"too few", []int{0, 1, 2, 3}, 5},
		{"too many", []int{0, 1, 2, 3, 4, 5}, 6},
		{"empty", nil, 5},
		{"duplicate", []int{0, 1, 2, 3, 3}, 5},
		{"negative", []int{-1, 1, 2, 3, 4}, 5},
		{"past register", []int{0, 1, 2, 3, 5}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLayout(tt.positions, tt.numQubits)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidArgument), "got %v", err)
		})
	}
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "relay-ancilla", RelayAncilla.String())
	assert.Equal(t, "role(9)", Role(9).String())
}

func TestParseDirection(t *testing.T) {
	d, ok := ParseDirection("native")
	assert.True(t, ok)
	assert.Equal(t, Native, d)

	d, ok = ParseDirection("synthesize")
	assert.True(t, ok)
	assert.Equal(t, Synthesize, d)

	_, ok = ParseDirection("reverse")
	assert.False(t, ok)

	var zero Direction
	assert.Equal(t, Synthesize, zero)
	assert.False(t, Direction(2).Valid())
}
