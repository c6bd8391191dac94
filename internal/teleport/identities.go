package teleport

import (
	"github.com/pkg/errors"

	"qteleport/internal/circuit"
)

// Identity pairs a synthesized sequence with the plain circuit it must
// reproduce.
type Identity struct {
	Name string
	Got  *circuit.Program
	Want *circuit.Program
}

// Identities returns the synthesizer self-checks. Each pair must have
// equal unitaries.
func Identities() ([]Identity, error) {
	type pair struct {
		name      string
		numQubits int
		got, want func(b *circuit.Builder)
	}
	pairs := []pair{
		{
			name:      "synthesized cx",
			numQubits: 2,
			got:       func(b *circuit.Builder) { DirectedCX(b, 0, 1, Synthesize, TruncateNone) },
			want:      func(b *circuit.Builder) { b.CX(0, 1) },
		},
		{
			name:      "synthesized cx, trailing truncation",
			numQubits: 2,
			got:       func(b *circuit.Builder) { DirectedCX(b, 0, 1, Synthesize, TruncateTrailing) },
			want: func(b *circuit.Builder) {
				b.CX(0, 1)
				b.H(1)
			},
		},
		{
			name:      "synthesized cx, leading truncation",
			numQubits: 2,
			got:       func(b *circuit.Builder) { DirectedCX(b, 0, 1, Synthesize, TruncateLeading) },
			want: func(b *circuit.Builder) {
				b.H(1)
				b.CX(0, 1)
			},
		},
		{
			name:      "relayed cx",
			numQubits: 3,
			got:       func(b *circuit.Builder) { RelayCX(b, 0, 2, 1, false) },
			want:      func(b *circuit.Builder) { b.CX(0, 2) },
		},
	}

	out := make([]Identity, 0, len(pairs))
	for _, p := range pairs {
		got, err := buildUnitary(p.numQubits, p.got)
		if err != nil {
			return nil, errors.Wrapf(err, "build %s", p.name)
		}
		want, err := buildUnitary(p.numQubits, p.want)
		if err != nil {
			return nil, errors.Wrapf(err, "build %s reference", p.name)
		}
		out = append(out, Identity{Name: p.name, Got: got, Want: want})
	}
	return out, nil
}

func buildUnitary(numQubits int, ops func(b *circuit.Builder)) (*circuit.Program, error) {
	b := circuit.NewBuilder(numQubits, numQubits)
	ops(b)
	return b.Build()
}
