package circuit

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"

	"github.com/pkg/errors"
)

// Gate types understood by the builder, the QASM codec and the simulator.
const (
	GateH       = "H"
	GateX       = "X"
	GateZ       = "Z"
	GateCX      = "CX"
	GateMeasure = "MEASURE"
	GateBarrier = "BARRIER"
)

// ErrOutOfRange is returned when a gate references a qubit or classical
// bit outside its register.
var ErrOutOfRange = errors.New("index out of range")

// Gate is a single operation in a program.
type Gate struct {
	Type             string
	Target           int // -1 for barriers, which span every qubit
	Control          int // -1 if not a controlled gate
	Step             int // position in the program timeline
	ClassicalControl int // -1 if not classically controlled, else classical bit index
}

// IsTwoQubit reports whether the gate couples two qubits.
func (g Gate) IsTwoQubit() bool {
	return g.Control >= 0
}

// IsUnitary reports whether the gate is a plain unitary (no measurement,
// no classical condition). Barriers count as unitary identities.
func (g Gate) IsUnitary() bool {
	return g.Type != GateMeasure && g.ClassicalControl < 0
}

// References reports whether the gate acts on the given qubit.
func (g Gate) References(qubit int) bool {
	return g.Target == qubit || g.Control == qubit
}

// Register is a named quantum or classical register.
type Register struct {
	Name string
	Size int
}

// Program is a finished, read-only operation sequence over a quantum and a
// classical register.
type Program struct {
	QReg  Register
	CReg  Register
	gates []Gate
}

// Gates returns a copy of the program's operations in order.
func (p *Program) Gates() []Gate {
	return slices.Clone(p.gates)
}

// Len returns the number of operations, barriers included.
func (p *Program) Len() int {
	return len(p.gates)
}

// NumQubits returns the quantum register size.
func (p *Program) NumQubits() int {
	return p.QReg.Size
}

// NumCbits returns the classical register size.
func (p *Program) NumCbits() int {
	return p.CReg.Size
}

// Count returns how many operations of the given type the program holds.
func (p *Program) Count(gateType string) int {
	n := 0
	for _, g := range p.gates {
		if g.Type == gateType {
			n++
		}
	}
	return n
}

// Measured returns the qubits measured by the program in measurement order.
func (p *Program) Measured() []int {
	var qs []int
	for _, g := range p.gates {
		if g.Type == GateMeasure {
			qs = append(qs, g.Target)
		}
	}
	return qs
}

// Fingerprint returns a stable hex digest of the program's QASM text.
func (p *Program) Fingerprint() string {
	sum := sha256.Sum256([]byte(p.ToQASM()))
	return hex.EncodeToString(sum[:])
}

// Builder appends operations to a program under construction. A Builder
// has a single writer; Build hands out an immutable Program and the
// builder refuses further use.
type Builder struct {
	qreg  Register
	creg  Register
	gates []Gate
	err   error
	built bool
}

// NewBuilder creates a builder over registers q[numQubits] and c[numCbits].
func NewBuilder(numQubits, numCbits int) *Builder {
	return &Builder{
		qreg: Register{Name: "q", Size: numQubits},
		creg: Register{Name: "c", Size: numCbits},
	}
}

// NumQubits returns the quantum register size.
func (b *Builder) NumQubits() int {
	return b.qreg.Size
}

// Len returns the number of operations appended so far.
func (b *Builder) Len() int {
	return len(b.gates)
}

// H appends a Hadamard gate.
func (b *Builder) H(q int) {
	b.append(Gate{Type: GateH, Target: q, Control: -1, ClassicalControl: -1})
}

// X appends a Pauli-X gate.
func (b *Builder) X(q int) {
	b.append(Gate{Type: GateX, Target: q, Control: -1, ClassicalControl: -1})
}

// Z appends a Pauli-Z gate.
func (b *Builder) Z(q int) {
	b.append(Gate{Type: GateZ, Target: q, Control: -1, ClassicalControl: -1})
}

// CX appends a controlled-NOT with the given control and target.
func (b *Builder) CX(control, target int) {
	b.append(Gate{Type: GateCX, Target: target, Control: control, ClassicalControl: -1})
}

// Measure appends a measurement of q into the classical bit of the same index.
func (b *Builder) Measure(q int) {
	b.append(Gate{Type: GateMeasure, Target: q, Control: -1, ClassicalControl: -1})
}

// Barrier appends a barrier spanning all qubits.
func (b *Builder) Barrier() {
	b.append(Gate{Type: GateBarrier, Target: -1, Control: -1, ClassicalControl: -1})
}

// If appends a single-qubit gate that only fires when classical bit cbit is 1.
func (b *Builder) If(cbit int, gateType string, target int) {
	b.append(Gate{Type: gateType, Target: target, Control: -1, ClassicalControl: cbit})
}

func (b *Builder) append(g Gate) {
	if b.built {
		panic("circuit: builder used after Build")
	}
	if b.err == nil {
		b.err = b.check(g)
	}
	g.Step = len(b.gates)
	b.gates = append(b.gates, g)
}

func (b *Builder) check(g Gate) error {
	if g.Type != GateBarrier && (g.Target < 0 || g.Target >= b.qreg.Size) {
		return errors.Wrapf(ErrOutOfRange, "%s target q[%d] in q[%d]", g.Type, g.Target, b.qreg.Size)
	}
	if g.Control >= b.qreg.Size {
		return errors.Wrapf(ErrOutOfRange, "%s control q[%d] in q[%d]", g.Type, g.Control, b.qreg.Size)
	}
	if g.Control >= 0 && g.Control == g.Target {
		return errors.Errorf("%s control and target are both q[%d]", g.Type, g.Target)
	}
	if g.Type == GateMeasure && g.Target >= b.creg.Size {
		return errors.Wrapf(ErrOutOfRange, "measure into c[%d] in c[%d]", g.Target, b.creg.Size)
	}
	if g.ClassicalControl >= 0 && g.Type != GateX && g.Type != GateZ {
		return errors.Errorf("conditional %s is not supported", g.Type)
	}
	if g.ClassicalControl >= b.creg.Size {
		return errors.Wrapf(ErrOutOfRange, "condition on c[%d] in c[%d]", g.ClassicalControl, b.creg.Size)
	}
	return nil
}

// Build finalizes the program. If any appended operation was invalid the
// first error is returned and no program is produced.
func (b *Builder) Build() (*Program, error) {
	if b.built {
		return nil, errors.New("circuit: program already built")
	}
	b.built = true
	if b.err != nil {
		return nil, b.err
	}
	if b.qreg.Size < 1 || b.creg.Size < 0 {
		return nil, errors.Errorf("circuit: invalid register sizes q[%d] c[%d]", b.qreg.Size, b.creg.Size)
	}
	return &Program{QReg: b.qreg, CReg: b.creg, gates: b.gates}, nil
}
