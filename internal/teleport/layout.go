package teleport

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidArgument classifies every input rejected by this package.
var ErrInvalidArgument = errors.New("invalid argument")

// NumRoles is the number of positions the protocol always uses.
const NumRoles = 5

// Role names one of the five protocol slots.
type Role int

const (
	StateA Role = iota
	StateB
	RelaySource
	RelayAncilla
	RelayDestination
)

func (r Role) String() string {
	switch r {
	case StateA:
		return "state-a"
	case StateB:
		return "state-b"
	case RelaySource:
		return "relay-source"
	case RelayAncilla:
		return "relay-ancilla"
	case RelayDestination:
		return "relay-destination"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Layout binds each role to a physical qubit for one build.
//
// StateA/RelayDestination and StateB/RelaySource have no direct coupling;
// RelayAncilla is coupled to both members of each pair.
type Layout struct {
	StateA           int
	StateB           int
	RelaySource      int
	RelayAncilla     int
	RelayDestination int
}

// NewLayout binds positions, given in role order, to a register of
// numQubits qubits. Exactly five distinct in-range positions are required.
func NewLayout(positions []int, numQubits int) (Layout, error) {
	if len(positions) != NumRoles {
		return Layout{}, errors.Wrapf(ErrInvalidArgument,
			"layout needs %d positions, got %d", NumRoles, len(positions))
	}
	seen := make(map[int]Role, NumRoles)
	for i, q := range positions {
		if q < 0 || q >= numQubits {
			return Layout{}, errors.Wrapf(ErrInvalidArgument,
				"%s position q[%d] outside register q[%d]", Role(i), q, numQubits)
		}
		if prev, ok := seen[q]; ok {
			return Layout{}, errors.Wrapf(ErrInvalidArgument,
				"q[%d] bound to both %s and %s", q, prev, Role(i))
		}
		seen[q] = Role(i)
	}
	return Layout{
		StateA:           positions[0],
		StateB:           positions[1],
		RelaySource:      positions[2],
		RelayAncilla:     positions[3],
		RelayDestination: positions[4],
	}, nil
}

// Qubit returns the position bound to r.
func (l Layout) Qubit(r Role) int {
	switch r {
	case StateA:
		return l.StateA
	case StateB:
		return l.StateB
	case RelaySource:
		return l.RelaySource
	case RelayAncilla:
		return l.RelayAncilla
	case RelayDestination:
		return l.RelayDestination
	default:
		panic(fmt.Sprintf("teleport: unknown role %d", int(r)))
	}
}

// Positions returns the bound qubits in role order.
func (l Layout) Positions() []int {
	return []int{l.StateA, l.StateB, l.RelaySource, l.RelayAncilla, l.RelayDestination}
}

// DefaultPositions is the identity layout over q[0..4].
func DefaultPositions() []int {
	return []int{0, 1, 2, 3, 4}
}
