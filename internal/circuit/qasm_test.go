package circuit

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToQASM(t *testing.T) {
	b := NewBuilder(3, 3)
	b.H(0)
	b.CX(0, 1)
	b.Barrier()
	b.Measure(1)
	b.If(1, GateX, 2)
	p, err := b.Build()
	require.NoError(t, err)

	want := `OPENQASM 2.0;
include "qelib1.inc";

qreg q[3];
creg c[3];

h q[0];
cx q[0], q[1];
barrier q[0], q[1], q[2];
measure q[1] -> c[1];
if (c[1]==1) x q[2];
`
	assert.Equal(t, want, p.ToQASM())
}

func TestParseTeleportFragment(t *testing.T) {
	qasm := `OPENQASM 2.0;
include "qelib1.inc";

qreg q[3];
creg c[3];

// relay through q[2]
h q[1];
cx q[1], q[2];
cx q[0], q[1];
h q[0];
measure q[0] -> c[0];
measure q[1] -> c[1];

if (c[1]==1) x q[2];
if(c[0]==1) z q[2];`

	p, err := ParseQASM(qasm)
	require.NoError(t, err)

	// Expected gates in order:
	// 0: H q[1]
	// 1: CX q[1],q[2]
	// 2: CX q[0],q[1]
	// 3: H q[0]
	// 4: MEASURE q[0]
	// 5: MEASURE q[1]
	// 6: if(c[1]==1) X q[2]
	// 7: if(c[0]==1) Z q[2]
	gates := p.Gates()
	require.Len(t, gates, 8)

	assert.Equal(t, 3, p.NumQubits())
	assert.Equal(t, 3, p.NumCbits())
	assert.Equal(t, GateCX, gates[1].Type)
	assert.Equal(t, 1, gates[1].Control)
	assert.Equal(t, 2, gates[1].Target)

	g6 := gates[6]
	if g6.Type != GateX || g6.Target != 2 || g6.ClassicalControl != 1 {
		t.Errorf("gate 6: expected X on q[2] if c[1], got Type=%s Target=%d CC=%d",
			g6.Type, g6.Target, g6.ClassicalControl)
	}
	g7 := gates[7]
	if g7.Type != GateZ || g7.Target != 2 || g7.ClassicalControl != 0 {
		t.Errorf("gate 7: expected Z on q[2] if c[0], got Type=%s Target=%d CC=%d",
			g7.Type, g7.Target, g7.ClassicalControl)
	}
	assert.Equal(t, []int{0, 1}, p.Measured())
}

func TestRoundTripQASM(t *testing.T) {
	b := NewBuilder(5, 5)
	b.X(0)
	b.H(0)
	b.CX(0, 1)
	b.Barrier()
	b.Z(4)
	b.Measure(2)
	b.Measure(3)
	b.If(3, GateX, 4)
	p, err := b.Build()
	require.NoError(t, err)

	qasm := p.ToQASM()
	p2, err := ParseQASM(qasm)
	require.NoError(t, err)

	assert.Equal(t, p.Gates(), p2.Gates())
	assert.Equal(t, qasm, p2.ToQASM())
	assert.Equal(t, p.Fingerprint(), p2.Fingerprint())
}

func TestParseQASMErrors(t *testing.T) {
	tests := []struct {
		name string
		qasm string
	}{
		{"no registers", "h q[0];"},
		{"unsupported gate", "qreg q[2];\ncreg c[2];\nry q[0];"},
		{"unsupported two-qubit gate", "qreg q[2];\ncreg c[2];\nswap q[0], q[1];"},
		{"renamed register", "qreg r[2];\ncreg c[2];"},
		{"cross measurement", "qreg q[2];\ncreg c[2];\nmeasure q[0] -> c[1];"},
		{"garbage", "qreg q[2];\ncreg c[2];\nthis is not qasm"},
		{"empty quantum register", "qreg q[0];\ncreg c[1];"},
		{"oversized quantum register", "qreg q[4096];\ncreg c[1];"},
		{"oversized classical register", "qreg q[1];\ncreg c[4096];"},
		{"register size overflow", "qreg q[99999999999999999999999];\ncreg c[1];"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQASM(tt.qasm)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrParse), "want ErrParse, got %v", err)
		})
	}
}

func TestParseQASMOutOfRange(t *testing.T) {
	_, err := ParseQASM("qreg q[2];\ncreg c[2];\ncx q[0], q[2];")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestParseEmptyProgram(t *testing.T) {
	p, err := ParseQASM("OPENQASM 2.0;\ninclude \"qelib1.inc\";\nqreg q[5];\ncreg c[5];\n")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Len())
	assert.True(t, strings.HasSuffix(p.ToQASM(), "creg c[5];\n\n"))
}
