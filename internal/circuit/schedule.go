package circuit

// Schedule places every gate of the program into the earliest step that
// respects its dependencies: a gate waits for the last gate on each qubit
// it spans, and a barrier waits for (and holds back) every qubit.
//
// The returned gates keep program order; only Step is rewritten. Qubits
// lying between a two-qubit gate's control and target are treated as
// occupied so that a rendered step never has crossing wires.
func (p *Program) Schedule() []Gate {
	n := p.QReg.Size
	// Next free step per qubit.
	frontier := make([]int, n)
	// Classical bits written by a measurement must be settled before a
	// conditional reads them.
	cbitReady := make([]int, max(p.CReg.Size, 1))

	scheduled := make([]Gate, len(p.gates))
	for i, g := range p.gates {
		lo, hi := span(g, n)

		step := 0
		for q := lo; q <= hi; q++ {
			step = max(step, frontier[q])
		}
		if g.ClassicalControl >= 0 {
			step = max(step, cbitReady[g.ClassicalControl])
		}

		for q := lo; q <= hi; q++ {
			frontier[q] = step + 1
		}
		if g.Type == GateMeasure {
			cbitReady[g.Target] = step + 1
		}

		g.Step = step
		scheduled[i] = g
	}
	return scheduled
}

// Depth returns the number of steps in the scheduled program, barriers
// excluded.
func (p *Program) Depth() int {
	depth := 0
	steps := make(map[int]bool)
	for _, g := range p.Schedule() {
		if g.Type == GateBarrier {
			continue
		}
		if !steps[g.Step] {
			steps[g.Step] = true
			depth++
		}
	}
	return depth
}

// span returns the inclusive qubit range a gate occupies on the grid.
func span(g Gate, numQubits int) (lo, hi int) {
	switch {
	case g.Type == GateBarrier:
		return 0, numQubits - 1
	case g.Control >= 0:
		return min(g.Control, g.Target), max(g.Control, g.Target)
	default:
		return g.Target, g.Target
	}
}
