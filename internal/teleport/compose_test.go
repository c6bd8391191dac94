package teleport

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"qteleport/internal/circuit"
	"qteleport/internal/sim"
)

func compose(t *testing.T, opts Options) *Result {
	t.Helper()
	res, err := Compose(opts)
	require.NoError(t, err)
	return res
}

// unitaryPart rebuilds p without its measurements.
func unitaryPart(t *testing.T, p *circuit.Program, extra func(b *circuit.Builder)) *circuit.Program {
	t.Helper()
	b := circuit.NewBuilder(p.NumQubits(), p.NumCbits())
	for _, g := range p.Gates() {
		switch g.Type {
		case circuit.GateH:
			b.H(g.Target)
		case circuit.GateX:
			b.X(g.Target)
		case circuit.GateCX:
			b.CX(g.Control, g.Target)
		case circuit.GateBarrier:
			b.Barrier()
		}
	}
	if extra != nil {
		extra(b)
	}
	out, err := b.Build()
	require.NoError(t, err)
	return out
}

func execute(t *testing.T, p *circuit.Program, seed int64, shots int) sim.Counts {
	t.Helper()
	s, err := sim.NewSimulator(zap.NewNop(), seed)
	require.NoError(t, err)
	counts, err := s.Execute(context.Background(), p, shots)
	require.NoError(t, err)
	return counts
}

func TestComposeGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	res := compose(t, DefaultOptions())
	g.Assert(t, "default", []byte(res.Program.ToQASM()))

	res = compose(t, Options{
		Positions:     []int{5, 1, 3, 0, 2},
		NumQubits:     6,
		Direction:     Native,
		Bell:          PsiMinus,
		Barriers:      true,
		HadamardBasis: true,
	})
	g.Assert(t, "native_markers_psi_minus", []byte(res.Program.ToQASM()))
}

func TestComposeDefault(t *testing.T) {
	res := compose(t, DefaultOptions())
	p := res.Program

	assert.False(t, res.RegisterRaised)
	assert.Equal(t, []int{2, 3}, res.Measured)
	assert.Equal(t, []int{2, 3}, p.Measured())
	assert.Equal(t, "q", p.QReg.Name)
	assert.Equal(t, "c", p.CReg.Name)
	assert.Equal(t, 5, p.NumQubits())
	assert.Equal(t, 5, p.NumCbits())

	assert.Equal(t, 27, p.Count(circuit.GateH))
	assert.Equal(t, 16, p.Count(circuit.GateCX))
	assert.Equal(t, 0, p.Count(circuit.GateX))
	assert.Equal(t, 0, p.Count(circuit.GateBarrier))

	gates := p.Gates()
	assert.Equal(t, circuit.GateH, gates[0].Type)
	assert.Equal(t, 0, gates[0].Target)
	assert.Equal(t, circuit.GateCX, gates[1].Type)
	assert.Equal(t, 0, gates[1].Control)
	assert.Equal(t, 1, gates[1].Target)
}

func TestComposeRegisterFloor(t *testing.T) {
	for _, n := range []int{0, 3, 4} {
		res := compose(t, Options{Positions: DefaultPositions(), NumQubits: n})
		assert.True(t, res.RegisterRaised, "numQubits %d", n)
		assert.Equal(t, 5, res.Program.NumQubits())
		assert.Equal(t, 5, res.Program.NumCbits())
	}

	res := compose(t, Options{Positions: DefaultPositions(), NumQubits: 8})
	assert.False(t, res.RegisterRaised)
	assert.Equal(t, 8, res.Program.NumQubits())
	assert.True(t, strings.Contains(res.Program.ToQASM(), "qreg q[8];\ncreg c[8];"))
}

func TestComposeRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"four positions", Options{Positions: []int{0, 1, 2, 3}, NumQubits: 5}},
		{"duplicate position", Options{Positions: []int{0, 1, 2, 2, 4}, NumQubits: 5}},
		{"position past register", Options{Positions: []int{0, 1, 2, 3, 5}, NumQubits: 5}},
		{"bell selector", Options{Positions: DefaultPositions(), NumQubits: 5, Bell: 4}},
		{"negative bell selector", Options{Positions: DefaultPositions(), NumQubits: 5, Bell: -1}},
		{"direction", Options{Positions: DefaultPositions(), NumQubits: 5, Direction: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compose(tt.opts)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, ErrInvalidArgument), "got %v", err)
		})
	}
}

func TestComposeOptionsChangeGateCounts(t *testing.T) {
	base := compose(t, DefaultOptions()).Program

	native := DefaultOptions()
	native.Direction = Native
	p := compose(t, native).Program
	// Each of the two relay couplings loses four basis changes.
	assert.Equal(t, base.Count(circuit.GateH)-8, p.Count(circuit.GateH))
	assert.Equal(t, base.Count(circuit.GateCX), p.Count(circuit.GateCX))

	hbase := DefaultOptions()
	hbase.HadamardBasis = true
	p = compose(t, hbase).Program
	assert.Equal(t, base.Count(circuit.GateH)+2, p.Count(circuit.GateH))
	gates := p.Gates()
	assert.Equal(t, circuit.GateH, gates[len(gates)-4].Type)
	assert.Equal(t, 2, gates[len(gates)-4].Target)
	assert.Equal(t, circuit.GateH, gates[len(gates)-3].Type)
	assert.Equal(t, 3, gates[len(gates)-3].Target)

	marked := DefaultOptions()
	marked.Barriers = true
	p = compose(t, marked).Program
	assert.Equal(t, 15, p.Count(circuit.GateBarrier))
	assert.Equal(t, base.Len()+15, p.Len())
}

func TestPrepareBellState(t *testing.T) {
	r := 1 / math.Sqrt2
	tests := []struct {
		bell BellState
		// index bit 0 is state A, bit 1 is state B
		want [4]float64
	}{
		{PhiPlus, [4]float64{r, 0, 0, r}},
		{PsiPlus, [4]float64{0, r, r, 0}},
		{PhiMinus, [4]float64{r, 0, 0, -r}},
		{PsiMinus, [4]float64{0, -r, r, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.bell.String(), func(t *testing.T) {
			p := program(t, 2, func(b *circuit.Builder) {
				PrepareBellState(b, Layout{StateA: 0, StateB: 1}, tt.bell)
			})
			out, err := sim.Evolve(p, sim.NewStateVector(2))
			require.NoError(t, err)
			for i, want := range tt.want {
				assert.InDelta(t, want, real(out.Amplitudes[i]), tolerance, "amplitude %02b", i)
				assert.InDelta(t, 0, imag(out.Amplitudes[i]), tolerance)
			}
		})
	}
}

// relayedState is the pre-measurement state of the default layout: the
// prepared Bell state on (relay ancilla, relay destination), state A
// holding its parity and state B and relay source in |+>.
func relayedState(s BellState) []complex128 {
	amps := make([]complex128, 1<<NumRoles)
	amp := 1 / (2 * math.Sqrt2)
	parity := int(s % 2)
	for anc := 0; anc < 2; anc++ {
		dst := anc ^ parity
		sign := 1.0
		if s.FlipA() && anc == 1 {
			sign = -1
		}
		for b := 0; b < 2; b++ {
			for src := 0; src < 2; src++ {
				idx := parity | b<<1 | src<<2 | anc<<3 | dst<<4
				amps[idx] = complex(sign*amp, 0)
			}
		}
	}
	return amps
}

func TestComposeRelaysBellState(t *testing.T) {
	for _, dir := range []Direction{Synthesize, Native} {
		for bell := PhiPlus; bell <= PsiMinus; bell++ {
			opts := DefaultOptions()
			opts.Bell = bell
			opts.Direction = dir
			p := unitaryPart(t, compose(t, opts).Program, nil)

			out, err := sim.Evolve(p, sim.NewStateVector(NumRoles))
			require.NoError(t, err)

			want := relayedState(bell)
			for i := range want {
				assert.InDelta(t, real(want[i]), real(out.Amplitudes[i]), tolerance,
					"%s/%s amplitude %05b", dir, bell, i)
				assert.InDelta(t, imag(want[i]), imag(out.Amplitudes[i]), tolerance)
			}
		}
	}
}

func TestComposeFeedForwardRecoversParity(t *testing.T) {
	// Correcting the relay destination by the measured relay ancilla leaves
	// the destination holding the Bell parity bit on every shot.
	for bell := PhiPlus; bell <= PsiMinus; bell++ {
		opts := DefaultOptions()
		opts.Bell = bell
		res := compose(t, opts)
		l := res.Layout
		p := unitaryPart(t, res.Program, func(b *circuit.Builder) {
			b.Measure(l.RelayAncilla)
			b.If(l.RelayAncilla, circuit.GateX, l.RelayDestination)
			b.Measure(l.RelayDestination)
		})

		counts := execute(t, p, 11, 256)
		assert.Equal(t, 256, counts.Total())
		for key := range counts {
			// key is c[4] c[3] c[2] c[1] c[0]
			assert.Equal(t, byte('0'+bell%2), key[0], "%s outcome %s", bell, key)
			assert.Equal(t, "000", key[2:], "%s outcome %s", bell, key)
		}
	}
}

func TestComposeMeasurementStatistics(t *testing.T) {
	counts := execute(t, compose(t, DefaultOptions()).Program, 5, 2000)
	assert.Len(t, counts, 4)
	for _, key := range []string{"00000", "00100", "01000", "01100"} {
		assert.InDelta(t, 500, counts[key], 120, key)
	}

	// In the diagonal basis the relay source is |+> and always reads 0.
	opts := DefaultOptions()
	opts.HadamardBasis = true
	counts = execute(t, compose(t, opts).Program, 5, 2000)
	assert.Len(t, counts, 2)
	assert.InDelta(t, 1000, counts["00000"], 150)
	assert.InDelta(t, 1000, counts["01000"], 150)
}

func TestComposeBarriersDoNotChangeCounts(t *testing.T) {
	for bell := PhiPlus; bell <= PsiMinus; bell++ {
		plain := DefaultOptions()
		plain.Bell = bell
		marked := plain
		marked.Barriers = true

		a := compose(t, plain).Program
		b := compose(t, marked).Program
		assert.Equal(t, execute(t, a, 99, 300), execute(t, b, 99, 300), bell.String())

		ok, err := sim.Equivalent(unitaryPart(t, a, nil), unitaryPart(t, b, nil), tolerance)
		require.NoError(t, err)
		assert.True(t, ok, bell.String())
	}
}

func TestComposeRemappedLayout(t *testing.T) {
	// Same protocol on a permuted, wider register: only addressing changes.
	res := compose(t, Options{Positions: []int{6, 4, 0, 2, 1}, NumQubits: 7, Bell: PsiPlus})
	assert.Equal(t, []int{0, 2}, res.Measured)

	for _, g := range res.Program.Gates() {
		assert.NotEqual(t, 3, g.Target)
		assert.NotEqual(t, 5, g.Target)
		assert.NotEqual(t, 3, g.Control)
		assert.NotEqual(t, 5, g.Control)
	}
	ref := DefaultOptions()
	ref.Bell = PsiPlus
	assert.Equal(t, compose(t, ref).Program.Len(), res.Program.Len())
}

func TestBellStateString(t *testing.T) {
	assert.Equal(t, "phi+", PhiPlus.String())
	assert.Equal(t, "psi-", PsiMinus.String())
	assert.Equal(t, "bell(4)", BellState(4).String())
	assert.True(t, PhiMinus.FlipA())
	assert.False(t, PhiMinus.FlipB())
}
