package tui

import "qteleport/internal/circuit"

// grid is the step-by-qubit view of a scheduled program.
type grid struct {
	numQubits int
	numCbits  int
	numSteps  int
	// Gates per step, in program order.
	steps map[int][]circuit.Gate
}

func newGrid(p *circuit.Program) grid {
	g := grid{
		numQubits: p.NumQubits(),
		numCbits:  p.NumCbits(),
		steps:     make(map[int][]circuit.Gate),
	}
	for _, gate := range p.Schedule() {
		g.steps[gate.Step] = append(g.steps[gate.Step], gate)
		g.numSteps = max(g.numSteps, gate.Step+1)
	}
	return g
}

// gateAt returns the gate acting on qubit at step, or nil. Barriers are
// not returned.
func (g grid) gateAt(step, qubit int) *circuit.Gate {
	gates := g.steps[step]
	for i := range gates {
		if gates[i].Type != circuit.GateBarrier && gates[i].References(qubit) {
			return &gates[i]
		}
	}
	return nil
}

// measureAt returns the qubit measured at step, or -1 if none.
func (g grid) measureAt(step int) int {
	for _, gate := range g.steps[step] {
		if gate.Type == circuit.GateMeasure {
			return gate.Target
		}
	}
	return -1
}

// cellInfo describes what occupies a single cell in the circuit grid.
type cellInfo struct {
	gate         *circuit.Gate
	isControl    bool
	isTarget     bool
	vertAbove    bool
	vertBelow    bool
	passThrough  bool
	measureBelow bool
	isBarrier    bool
}

// cellInfo returns rendering information for the cell at (step, qubit).
func (g grid) cellInfo(step, qubit int) cellInfo {
	var info cellInfo

	if gate := g.gateAt(step, qubit); gate != nil {
		info.gate = gate
		info.isControl = gate.Control == qubit
		info.isTarget = gate.Target == qubit && gate.Control >= 0
	}

	for _, gate := range g.steps[step] {
		switch {
		case gate.Type == circuit.GateBarrier:
			info.isBarrier = true

		case gate.Control >= 0:
			// Vertical connection between control and target
			minQ, maxQ := min(gate.Control, gate.Target), max(gate.Control, gate.Target)
			if qubit >= minQ && qubit <= maxQ {
				if qubit > minQ {
					info.vertAbove = true
				}
				if qubit < maxQ {
					info.vertBelow = true
				}
				if qubit > minQ && qubit < maxQ && info.gate == nil {
					info.passThrough = true
				}
			}

		case gate.Type == circuit.GateMeasure:
			// Classical line down to the bit register
			if qubit > gate.Target {
				info.measureBelow = true
			}
		}
	}

	return info
}
