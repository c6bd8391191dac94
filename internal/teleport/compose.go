package teleport

import (
	"fmt"

	"github.com/pkg/errors"

	"qteleport/internal/circuit"
)

// MinQubits is the smallest register the protocol is built on.
const MinQubits = NumRoles

// BellState selects one of the four maximally entangled two-qubit states.
// The high bit flips state A before its basis change, the low bit flips
// state B.
type BellState int

const (
	PhiPlus  BellState = iota // (|00> + |11>)/sqrt2
	PsiPlus                   // (|01> + |10>)/sqrt2
	PhiMinus                  // (|00> - |11>)/sqrt2
	PsiMinus                  // (|01> - |10>)/sqrt2
)

// Valid reports whether s is one of the four selectors.
func (s BellState) Valid() bool {
	return s >= PhiPlus && s <= PsiMinus
}

func (s BellState) String() string {
	switch s {
	case PhiPlus:
		return "phi+"
	case PsiPlus:
		return "psi+"
	case PhiMinus:
		return "phi-"
	case PsiMinus:
		return "psi-"
	default:
		return fmt.Sprintf("bell(%d)", int(s))
	}
}

// FlipA reports whether state A is negated during preparation.
func (s BellState) FlipA() bool {
	return s/2 == 1
}

// FlipB reports whether state B is negated during preparation.
func (s BellState) FlipB() bool {
	return s%2 == 1
}

// Options are the caller parameters of one protocol build.
type Options struct {
	// Positions holds the physical qubit of each role, in role order.
	Positions []int
	// NumQubits is the requested register size; values below MinQubits
	// are raised to MinQubits.
	NumQubits int
	// Direction applies to the relay-source to relay-destination coupling.
	Direction Direction
	Bell      BellState
	// Barriers inserts separators between protocol steps. They do not
	// change the program's effect.
	Barriers bool
	// HadamardBasis measures relay-source and relay-ancilla in the
	// diagonal basis.
	HadamardBasis bool
}

// DefaultOptions returns the identity layout on a five-qubit register.
func DefaultOptions() Options {
	return Options{
		Positions: DefaultPositions(),
		NumQubits: MinQubits,
	}
}

// Result is a finished protocol program with its addressing metadata.
type Result struct {
	Program *circuit.Program
	Layout  Layout
	// Measured lists the measured qubits; each lands in the classical bit
	// of the same index.
	Measured []int
	// RegisterRaised is set when the requested register size was below
	// MinQubits and was raised.
	RegisterRaised bool
}

// Compose builds the Bell-state teleportation program. Inputs are checked
// before anything is appended; on error no program is returned.
func Compose(opts Options) (*Result, error) {
	numQubits := opts.NumQubits
	raised := false
	if numQubits < MinQubits {
		numQubits = MinQubits
		raised = true
	}
	if !opts.Bell.Valid() {
		return nil, errors.Wrapf(ErrInvalidArgument, "bell state selector %d outside 0..3", int(opts.Bell))
	}
	if !opts.Direction.Valid() {
		return nil, errors.Wrapf(ErrInvalidArgument, "direction %d", int(opts.Direction))
	}
	layout, err := NewLayout(opts.Positions, numQubits)
	if err != nil {
		return nil, err
	}

	b := circuit.NewBuilder(numQubits, numQubits)
	measured := appendProtocol(b, layout, opts)

	p, err := b.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build teleportation program")
	}
	return &Result{
		Program:        p,
		Layout:         layout,
		Measured:       measured,
		RegisterRaised: raised,
	}, nil
}

func appendProtocol(b *circuit.Builder, l Layout, opts Options) []int {
	a, bb := l.StateA, l.StateB
	src, anc, dst := l.RelaySource, l.RelayAncilla, l.RelayDestination
	barrier := func() {
		if opts.Barriers {
			b.Barrier()
		}
	}

	PrepareBellState(b, l, opts.Bell)
	PrepareRelay(b, l, opts.Direction)
	barrier()

	// Bell-basis projection of (state B, relay source); the two are not
	// coupled, so the CX goes through the ancilla.
	BasisChange(b, bb)
	barrier()
	RelayCX(b, bb, src, anc, opts.Barriers)
	barrier()
	BasisChange(b, bb)
	barrier()
	b.CX(src, anc)
	BasisChange(b, anc)
	b.CX(bb, anc)
	BasisChange(b, anc)
	barrier()

	// Re-close the relay.
	DirectedCX(b, src, dst, opts.Direction, TruncateNone)
	barrier()
	b.CX(dst, anc)
	b.CX(a, anc)
	barrier()

	BasisChange(b, dst)
	barrier()
	RelayCX(b, dst, a, anc, opts.Barriers)
	barrier()

	measured := []int{src, anc}
	if opts.HadamardBasis {
		HadamardAll(b, measured)
	}
	MeasureAll(b, measured)
	return measured
}

// PrepareBellState entangles state A and state B into the selected Bell
// state, starting from |00>.
func PrepareBellState(b *circuit.Builder, l Layout, s BellState) {
	if s.FlipA() {
		b.X(l.StateA)
	}
	BasisChange(b, l.StateA)
	if s.FlipB() {
		b.X(l.StateB)
	}
	b.CX(l.StateA, l.StateB)
}

// PrepareRelay entangles relay source with relay ancilla and relay
// destination.
func PrepareRelay(b *circuit.Builder, l Layout, dir Direction) {
	BasisChange(b, l.RelaySource)
	b.CX(l.RelaySource, l.RelayAncilla)
	DirectedCX(b, l.RelaySource, l.RelayDestination, dir, TruncateNone)
}
