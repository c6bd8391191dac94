package sim

import (
	"context"
	"math/rand"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"qteleport/internal/circuit"
)

const defaultPrefixCacheSize = 64

// MaxQubits is the widest register the state-vector simulator runs; the
// state holds 2^n amplitudes.
const MaxQubits = 24

// ErrTooManyQubits is returned for programs wider than the simulator can
// hold in memory.
var ErrTooManyQubits = errors.New("register too wide to simulate")

// Counts maps a classical bitstring, highest classical bit first, to the
// number of shots that produced it.
type Counts map[string]int

// Total returns the number of shots recorded.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Executor runs a program for a number of shots and aggregates the
// measured classical registers.
type Executor interface {
	Execute(ctx context.Context, p *circuit.Program, shots int) (Counts, error)
}

// Simulator is a state-vector Executor. Runs are reproducible: every
// Execute call draws from a fresh source seeded with Seed.
type Simulator struct {
	Seed int64

	logger *zap.Logger
	// Unitary prefix states keyed by program fingerprint.
	prefixes *lru.Cache[string, *StateVector]
}

// NewSimulator creates a simulator with the given seed.
func NewSimulator(logger *zap.Logger, seed int64) (*Simulator, error) {
	cache, err := lru.New[string, *StateVector](defaultPrefixCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "new simulator")
	}
	return &Simulator{
		Seed:     seed,
		logger:   logger.Named("sim"),
		prefixes: cache,
	}, nil
}

// Execute implements Executor.
func (s *Simulator) Execute(ctx context.Context, p *circuit.Program, shots int) (Counts, error) {
	if shots < 1 {
		return nil, errors.Errorf("shots must be positive, got %d", shots)
	}
	if p.NumQubits() > MaxQubits {
		return nil, errors.Wrapf(ErrTooManyQubits, "q[%d] exceeds %d qubits", p.NumQubits(), MaxQubits)
	}

	gates := p.Gates()
	split := firstNonUnitary(gates)
	prefix := s.prefixState(p, gates[:split])
	rest := gates[split:]

	rng := rand.New(rand.NewSource(s.Seed))
	counts := make(Counts)
	cbits := make([]int, p.NumCbits())

	for shot := 0; shot < shots; shot++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "execute")
		}
		clear(cbits)
		state := prefix.Clone()
		for _, g := range rest {
			switch {
			case g.Type == circuit.GateMeasure:
				cbits[g.Target] = state.Measure(g.Target, rng.Float64())
			case g.ClassicalControl >= 0:
				if cbits[g.ClassicalControl] == 1 {
					state.ApplyGate(g.Type, g.Target, g.Control)
				}
			default:
				state.ApplyGate(g.Type, g.Target, g.Control)
			}
		}
		counts[bitstring(cbits)]++
	}

	s.logger.Debug("executed program",
		zap.Int("shots", shots),
		zap.Int("gates", len(gates)),
		zap.Int("prefix", split),
		zap.Int("outcomes", len(counts)),
	)
	return counts, nil
}

// prefixState returns the state after the program's unitary prefix,
// simulating it only on a cache miss.
func (s *Simulator) prefixState(p *circuit.Program, prefix []circuit.Gate) *StateVector {
	key := p.Fingerprint()
	if state, ok := s.prefixes.Get(key); ok {
		s.logger.Debug("prefix cache hit", zap.String("program", key[:12]))
		return state
	}
	state := NewStateVector(p.NumQubits())
	for _, g := range prefix {
		state.ApplyGate(g.Type, g.Target, g.Control)
	}
	s.prefixes.Add(key, state)
	return state
}

func firstNonUnitary(gates []circuit.Gate) int {
	for i, g := range gates {
		if !g.IsUnitary() {
			return i
		}
	}
	return len(gates)
}

// bitstring renders classical bits with c[n-1] first.
func bitstring(cbits []int) string {
	var sb strings.Builder
	for i := len(cbits) - 1; i >= 0; i-- {
		if cbits[i] == 1 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
