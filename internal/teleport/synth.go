package teleport

import (
	"fmt"

	"qteleport/internal/circuit"
)

// Direction says whether the hardware can run a CX in the logically
// required orientation.
type Direction int

const (
	// Synthesize builds the required CX from the reversed native one.
	Synthesize Direction = iota
	// Native emits the CX as is.
	Native
)

func (d Direction) String() string {
	switch d {
	case Synthesize:
		return "synthesize"
	case Native:
		return "native"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Valid reports whether d is a declared direction.
func (d Direction) Valid() bool {
	return d == Synthesize || d == Native
}

// ParseDirection maps "synthesize" or "native" to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "synthesize":
		return Synthesize, true
	case "native":
		return Native, true
	}
	return 0, false
}

// Truncation drops one of the two basis changes a synthesized CX puts on
// its target, so that two adjacent synthesized CXs sharing that target do
// not emit a cancelling H-H pair.
type Truncation int

const (
	TruncateNone Truncation = iota
	// TruncateTrailing omits the closing H on the target: the emitted
	// sequence equals CX followed by H(target).
	TruncateTrailing
	// TruncateLeading omits the opening H on the target: the emitted
	// sequence equals H(target) followed by CX.
	TruncateLeading
)

// Valid reports whether tr is a declared truncation.
func (tr Truncation) Valid() bool {
	return tr >= TruncateNone && tr <= TruncateLeading
}

// BasisChange appends the diagonal-basis transform (H) on q.
func BasisChange(b *circuit.Builder, q int) {
	b.H(q)
}

// DirectedCX appends a CX with control q1 and target q2. With Native the
// gate is emitted directly; with Synthesize it is built from CX(q2, q1)
// conjugated by H on both qubits, minus the target-side H selected by tr.
func DirectedCX(b *circuit.Builder, q1, q2 int, dir Direction, tr Truncation) {
	if !tr.Valid() {
		panic(fmt.Sprintf("teleport: unknown truncation %d", int(tr)))
	}
	switch dir {
	case Native:
		b.CX(q1, q2)
	case Synthesize:
		BasisChange(b, q1)
		if tr != TruncateLeading {
			BasisChange(b, q2)
		}
		b.CX(q2, q1)
		BasisChange(b, q1)
		if tr != TruncateTrailing {
			BasisChange(b, q2)
		}
	default:
		panic(fmt.Sprintf("teleport: unknown direction %d", int(dir)))
	}
}

// RelayCX appends a CX from q1 to q2, which are not coupled, routed
// through ancilla, which is coupled to both. The ancilla is left in the
// state it started in. The two synthesized steps share the H on q2 between
// them, so their truncations must stay Trailing then Leading.
func RelayCX(b *circuit.Builder, q1, q2, ancilla int, barriers bool) {
	b.CX(q1, ancilla)
	if barriers {
		b.Barrier()
	}
	DirectedCX(b, ancilla, q2, Synthesize, TruncateTrailing)
	b.CX(q1, ancilla)
	if barriers {
		b.Barrier()
	}
	DirectedCX(b, ancilla, q2, Synthesize, TruncateLeading)
	if barriers {
		b.Barrier()
	}
}

// HadamardAll applies BasisChange to each qubit in order.
func HadamardAll(b *circuit.Builder, qubits []int) {
	for _, q := range qubits {
		BasisChange(b, q)
	}
}

// MeasureAll measures each qubit into the classical bit of the same index.
func MeasureAll(b *circuit.Builder, qubits []int) {
	for _, q := range qubits {
		b.Measure(q)
	}
}
