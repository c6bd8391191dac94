package sim

import (
	"math/cmplx"

	"github.com/pkg/errors"

	"qteleport/internal/circuit"
)

// ErrNotUnitary is returned when a program containing measurements or
// classically controlled gates is asked for its unitary.
var ErrNotUnitary = errors.New("program is not purely unitary")

// MaxUnitaryQubits bounds Unitary, whose matrix has 4^n entries.
const MaxUnitaryQubits = 10

// Evolve applies every gate of a purely unitary program to a copy of the
// given state.
func Evolve(p *circuit.Program, state *StateVector) (*StateVector, error) {
	if state.NumQubits != p.NumQubits() {
		return nil, errors.Errorf("state has %d qubits, program has %d", state.NumQubits, p.NumQubits())
	}
	out := state.Clone()
	for _, g := range p.Gates() {
		if !g.IsUnitary() {
			return nil, errors.Wrapf(ErrNotUnitary, "%s at step %d", g.Type, g.Step)
		}
		out.ApplyGate(g.Type, g.Target, g.Control)
	}
	return out, nil
}

// Unitary returns the matrix of a purely unitary program. Column k holds
// the image of basis state |k>.
func Unitary(p *circuit.Program) ([][]Complex, error) {
	if p.NumQubits() > MaxUnitaryQubits {
		return nil, errors.Wrapf(ErrTooManyQubits, "unitary of q[%d] exceeds %d qubits", p.NumQubits(), MaxUnitaryQubits)
	}
	dim := 1 << p.NumQubits()
	u := make([][]Complex, dim)
	for i := range u {
		u[i] = make([]Complex, dim)
	}
	for k := 0; k < dim; k++ {
		out, err := Evolve(p, NewBasisState(p.NumQubits(), k))
		if err != nil {
			return nil, err
		}
		for i, amp := range out.Amplitudes {
			u[i][k] = amp
		}
	}
	return u, nil
}

// Equivalent reports whether two purely unitary programs over the same
// register implement the same matrix, entry by entry within tol.
func Equivalent(a, b *circuit.Program, tol float64) (bool, error) {
	if a.NumQubits() != b.NumQubits() {
		return false, errors.Errorf("register mismatch: q[%d] vs q[%d]", a.NumQubits(), b.NumQubits())
	}
	ua, err := Unitary(a)
	if err != nil {
		return false, errors.Wrap(err, "unitary of first program")
	}
	ub, err := Unitary(b)
	if err != nil {
		return false, errors.Wrap(err, "unitary of second program")
	}
	for i := range ua {
		for j := range ua[i] {
			if cmplx.Abs(ua[i][j]-ub[i][j]) > tol {
				return false, nil
			}
		}
	}
	return true, nil
}
