package sim

import (
	"math"
	"math/cmplx"

	"qteleport/internal/circuit"
)

type Complex = complex128

type StateVector struct {
	Amplitudes []Complex
	NumQubits  int
}

func NewStateVector(numQubits int) *StateVector {
	n := 1 << numQubits
	amps := make([]Complex, n)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}
}

// NewBasisState returns the computational basis state |index>, where bit q
// of index is the value of qubit q.
func NewBasisState(numQubits, index int) *StateVector {
	s := NewStateVector(numQubits)
	s.Amplitudes[0] = 0
	s.Amplitudes[index] = 1
	return s
}

func (s *StateVector) Clone() *StateVector {
	amps := make([]Complex, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &StateVector{Amplitudes: amps, NumQubits: s.NumQubits}
}

// ApplyGate applies a unitary gate. Measurements, barriers and classical
// conditions are handled by the caller.
func (s *StateVector) ApplyGate(gateType string, target int, control int) {
	switch gateType {
	case circuit.GateH:
		s.applyH(target)
	case circuit.GateX:
		s.applyX(target)
	case circuit.GateZ:
		s.applyZ(target)
	case circuit.GateCX:
		if control >= 0 {
			s.applyCX(control, target)
		}
	case circuit.GateBarrier, circuit.GateMeasure:
	}
}

func (s *StateVector) applyH(q int) {
	hFactor := complex(1.0/math.Sqrt2, 0)
	n := len(s.Amplitudes)
	bit := 1 << q
	newAmps := make([]Complex, n)
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			newAmps[i] = hFactor * (s.Amplitudes[i] + s.Amplitudes[j])
			newAmps[j] = hFactor * (s.Amplitudes[i] - s.Amplitudes[j])
		}
	}
	s.Amplitudes = newAmps
}

func (s *StateVector) applyX(q int) {
	n := len(s.Amplitudes)
	bit := 1 << q
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyZ(q int) {
	n := len(s.Amplitudes)
	bit := 1 << q
	for i := 0; i < n; i++ {
		if i&bit != 0 {
			s.Amplitudes[i] *= -1
		}
	}
}

func (s *StateVector) applyCX(control, target int) {
	n := len(s.Amplitudes)
	cBit := 1 << control
	tBit := 1 << target
	for i := 0; i < n; i++ {
		if i&cBit != 0 && i&tBit == 0 {
			j := i | tBit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

// Measure projects qubit q onto an outcome chosen by r in [0,1) and
// renormalises. It returns the outcome.
func (s *StateVector) Measure(q int, r float64) int {
	bit := 1 << q
	prob1 := s.QubitProbabilities()[q].Prob1

	outcome := 0
	norm := math.Sqrt(1 - prob1)
	if r < prob1 {
		outcome = 1
		norm = math.Sqrt(prob1)
	}

	for i := range s.Amplitudes {
		if (i&bit != 0) == (outcome == 1) {
			s.Amplitudes[i] /= complex(norm, 0)
		} else {
			s.Amplitudes[i] = 0
		}
	}
	return outcome
}

type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

func (s *StateVector) QubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, s.NumQubits)
	n := len(s.Amplitudes)

	for i := 0; i < n; i++ {
		prob := real(s.Amplitudes[i] * cmplx.Conj(s.Amplitudes[i]))
		for q := 0; q < s.NumQubits; q++ {
			if i&(1<<q) != 0 {
				probs[q].Prob1 += prob
			} else {
				probs[q].Prob0 += prob
			}
		}
	}

	return probs
}
