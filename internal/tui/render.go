package tui

import (
	"fmt"
	"strings"

	"qteleport/internal/circuit"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	total := width - len(s)
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// gateDisplayName returns a short display name for a gate.
func gateDisplayName(g circuit.Gate) string {
	switch {
	case g.Type == circuit.GateMeasure:
		return "M"
	case g.ClassicalControl >= 0:
		return fmt.Sprintf("%s?c%d", g.Type, g.ClassicalControl)
	default:
		return g.Type
	}
}

// describeGate is the status-line description of a gate.
func describeGate(g circuit.Gate) string {
	switch {
	case g.Type == circuit.GateMeasure:
		return fmt.Sprintf("measure q[%d] -> c[%d]", g.Target, g.Target)
	case g.ClassicalControl >= 0:
		return fmt.Sprintf("if c[%d]==1 %s q[%d]", g.ClassicalControl, g.Type, g.Target)
	case g.Control >= 0:
		return fmt.Sprintf("%s q[%d] -> q[%d]", g.Type, g.Control, g.Target)
	default:
		return fmt.Sprintf("%s q[%d]", g.Type, g.Target)
	}
}

// ──────────────────────────── Cell rendering ────────────────────────────

// renderCell returns 3 lines (top, mid, bot) for a single cell.
// Each line is exactly cellW (11) visual characters wide.
func renderCell(info cellInfo, cursor bool) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", cellW-halfW-1)
	dblVertRow := strings.Repeat(" ", halfW) + cbitConnectorStyle.Render("║") + strings.Repeat(" ", cellW-halfW-1)

	// ── Cursor cell ──
	if cursor {
		bdr := cursorBoxStyle
		innerW := cellW - 2
		dashL := (innerW - 1) / 2
		dashR := innerW - dashL - 1

		top = bdr.Render("╔" + strings.Repeat("═", innerW) + "╗")
		bot = bdr.Render("╚" + strings.Repeat("═", innerW) + "╝")

		switch {
		case info.gate != nil && info.isControl:
			mid = bdr.Render("║") + strings.Repeat("─", dashL) + gateStyle.Render("●") + strings.Repeat("─", dashR) + bdr.Render("║")
		case info.gate != nil && info.isTarget:
			mid = bdr.Render("║") + strings.Repeat("─", dashL) + gateStyle.Render("⊕") + strings.Repeat("─", dashR) + bdr.Render("║")
		case info.gate != nil:
			name := padCenter(gateDisplayName(*info.gate), gateNameW)
			mid = bdr.Render("║") + "─┤" + gateStyle.Render(name) + "├─" + bdr.Render("║")
		case info.isBarrier || info.passThrough:
			sym := "┼"
			if info.isBarrier {
				sym = "│"
			}
			mid = bdr.Render("║") + strings.Repeat("─", dashL) + sym + strings.Repeat("─", dashR) + bdr.Render("║")
		default:
			mid = bdr.Render("║") + strings.Repeat("─", innerW) + bdr.Render("║")
		}
		return
	}

	// ── Normal cells ──
	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1

	wireSymbol := func(sym string) {
		top = emptyRow
		if info.vertAbove {
			top = vertRow
		}
		mid = strings.Repeat("─", dashL) + gateStyle.Render(sym) + strings.Repeat("─", dashR)
		bot = emptyRow
		if info.vertBelow {
			bot = vertRow
		}
		if info.measureBelow {
			bot = dblVertRow
		}
	}

	switch {
	case info.gate != nil && info.isControl:
		wireSymbol("●")

	case info.gate != nil && info.isTarget:
		wireSymbol("⊕")

	case info.gate != nil:
		margin := (cellW - gateBoxW) / 2
		rightMargin := cellW - margin - gateBoxW
		name := padCenter(gateDisplayName(*info.gate), gateNameW)

		top = strings.Repeat(" ", margin) + gateStyle.Render("┌"+strings.Repeat("─", gateNameW)+"┐") + strings.Repeat(" ", rightMargin)
		mid = strings.Repeat("─", margin) + gateStyle.Render("┤"+name+"├") + strings.Repeat("─", rightMargin)
		bot = strings.Repeat(" ", margin) + gateStyle.Render("└"+strings.Repeat("─", gateNameW)+"┘") + strings.Repeat(" ", rightMargin)
		if info.gate.Type != circuit.GateMeasure && info.measureBelow {
			bot = dblVertRow
		}

	case info.isBarrier:
		top = vertRow
		mid = strings.Repeat("─", dashL) + dimStyle.Render("│") + strings.Repeat("─", dashR)
		bot = vertRow

	case info.passThrough:
		top = vertRow
		mid = strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR)
		bot = vertRow
		if info.measureBelow {
			bot = dblVertRow
		}

	case info.measureBelow:
		// No gate here, but a measurement connection passes through vertically
		top = dblVertRow
		mid = strings.Repeat("─", dashL) + cbitConnectorStyle.Render("╫") + strings.Repeat("─", dashR)
		bot = dblVertRow
		if info.vertAbove {
			top = vertRow
		}

	default:
		// Empty wire
		top = emptyRow
		if info.vertAbove {
			top = vertRow
		}
		mid = strings.Repeat("─", cellW)
		bot = emptyRow
		if info.vertBelow {
			bot = vertRow
		}
	}

	return
}

// ──────────────────────────── Panel rendering ────────────────────────────

// visibleSteps returns how many step columns fit in width, leaving room
// for the qubit labels and the role names after the last column.
func visibleSteps(width int) int {
	return max((width-labelVisualW-roleLabelW-4)/cellW, 1)
}

// renderCircuitPanel renders the circuit grid panel.
func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Teleportation Circuit"))
	fmt.Fprintf(&sb, "  %s\n\n", dimStyle.Render(m.optionsSummary()))

	displaySteps := visibleSteps(width)
	startStep := m.viewStartStep

	if startStep > 0 {
		fmt.Fprintf(&sb, "  ◀ showing steps %d–%d\n", startStep, startStep+displaySteps-1)
	}

	// Step number header
	header := strings.Repeat(" ", labelVisualW)
	for step := startStep; step < startStep+displaySteps; step++ {
		header += dimStyle.Render(padCenter(fmt.Sprintf("%d", step), cellW))
	}
	sb.WriteString(header + "\n")

	// Render each qubit as 3 lines
	for qubit := 0; qubit < m.grid.numQubits; qubit++ {
		topLine := strings.Repeat(" ", labelVisualW)
		label := fmt.Sprintf("q[%d]", qubit)
		midLine := qubitLabelStyle.Render(fmt.Sprintf("%-5s", label)) + "──"
		botLine := strings.Repeat(" ", labelVisualW)

		for step := startStep; step < startStep+displaySteps; step++ {
			cursor := step == m.cursorStep && qubit == m.cursorQubit && m.focus == focusCircuit
			top, mid, bot := renderCell(m.grid.cellInfo(step, qubit), cursor)
			topLine += top
			midLine += mid
			botLine += bot
		}
		if role, ok := m.roles[qubit]; ok {
			midLine += " " + roleLabelStyle.Render(role.String())
		}

		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}

	// ── Classical bit wire (single line) ──
	if m.grid.numCbits > 0 {
		sepLine := strings.Repeat(" ", labelVisualW)
		halfW := cellW / 2
		for step := startStep; step < startStep+displaySteps; step++ {
			if m.grid.measureAt(step) >= 0 {
				sepLine += strings.Repeat(" ", halfW) + cbitConnectorStyle.Render("║") + strings.Repeat(" ", cellW-halfW-1)
			} else {
				sepLine += strings.Repeat(" ", cellW)
			}
		}
		sb.WriteString(sepLine + "\n")

		label := fmt.Sprintf("c%d", m.grid.numCbits)
		cbitLine := cbitLabelStyle.Render(fmt.Sprintf("%-5s", label)) + cbitWireStyle.Render("══")
		for step := startStep; step < startStep+displaySteps; step++ {
			measured := m.grid.measureAt(step)
			if measured >= 0 {
				bitLabel := fmt.Sprintf("%d", measured)
				dashL := (cellW - 1) / 2
				dashR := max(cellW-dashL-1-len(bitLabel), 0)
				cbitLine += cbitWireStyle.Render(strings.Repeat("═", dashL)) +
					cbitConnectorStyle.Render("╩"+bitLabel) +
					cbitWireStyle.Render(strings.Repeat("═", dashR))
			} else {
				cbitLine += cbitWireStyle.Render(strings.Repeat("═", cellW))
			}
		}
		sb.WriteString(cbitLine + "\n")
	}

	// Status line
	fmt.Fprintf(&sb, "\n  Step %d/%d, q[%d]", m.cursorStep, max(m.grid.numSteps-1, 0), m.cursorQubit)
	if g := m.grid.gateAt(m.cursorStep, m.cursorQubit); g != nil {
		fmt.Fprintf(&sb, "  %s", activeGateStyle.Render(describeGate(*g)))
	}
	if m.statusMsg != "" {
		style := activeGateStyle
		if m.statusErr {
			style = errorStyle
		}
		fmt.Fprintf(&sb, "  │  %s", style.Render(m.statusMsg))
	}

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// optionsSummary is the one-line description of the current build.
func (m Model) optionsSummary() string {
	if m.custom {
		return "custom QASM"
	}
	parts := []string{
		m.opts.Bell.String(),
		m.opts.Direction.String(),
	}
	if m.opts.Barriers {
		parts = append(parts, "barriers")
	}
	if m.opts.HadamardBasis {
		parts = append(parts, "hadamard basis")
	}
	return strings.Join(parts, " · ")
}

// renderQASMPanel renders the QASM editor panel.
func (m Model) renderQASMPanel(width, height int) string {
	var sb strings.Builder

	title := "OpenQASM"
	if m.focus == focusQASM {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.qasmEditor.View())

	return qasmStyle.Width(width).Height(height).Render(sb.String())
}

// renderCountsPanel renders the outcome histogram of the last run.
func (m Model) renderCountsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Counts"))
	sb.WriteString("\n")

	switch {
	case m.running:
		sb.WriteString(dimStyle.Render(fmt.Sprintf("running %d shots…", m.shots)))
	case len(m.counts) == 0:
		sb.WriteString(dimStyle.Render("press r to run"))
	default:
		outcomes := sortedOutcomes(m.counts)
		top := 0
		for _, o := range outcomes {
			top = max(top, o.count)
		}
		for _, o := range outcomes {
			bar := 0
			if top > 0 {
				bar = o.count * countsBarW / top
			}
			fmt.Fprintf(&sb, "%s %s %d\n", o.bits, barStyle.Render(strings.Repeat("█", bar)), o.count)
		}
	}

	return countsStyle.Width(width).Height(height).Render(sb.String())
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeGateStyle.Render("Navigate: "))
	sb.WriteString("↑↓/jk Qubit  ←→/hl Step  Tab QASM panel")
	sb.WriteString("    ")
	sb.WriteString(activeGateStyle.Render("a"))
	sb.WriteString(" Options\n")

	sb.WriteString(activeGateStyle.Render("Actions:  "))
	sb.WriteString("b Bell state  d Direction  m Barriers  x Hadamard basis  r Run  q/^C Quit")

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites the overlay string on top of the background at position (x, y).
// It handles ANSI escape sequences by tracking visible column positions.
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	ovLines := strings.Split(overlay, "\n")

	for i, ovLine := range ovLines {
		bgIdx := y + i
		if bgIdx < 0 || bgIdx >= len(bgLines) {
			continue
		}
		bgLines[bgIdx] = spliceLineAt(bgLines[bgIdx], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// isEscapeFinal reports whether r terminates an ANSI escape sequence.
func isEscapeFinal(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// spliceLineAt replaces visible columns starting at position x in bgLine with overlay content.
func spliceLineAt(bgLine, overlay string, x int) string {
	runes := []rune(bgLine)
	ovWidth := visibleLen(overlay)

	var prefix, suffix strings.Builder

	col, i := 0, 0
	// Collect prefix: everything up to visible column x
	for i < len(runes) && col < x {
		if runes[i] == '\x1b' {
			for i < len(runes) {
				prefix.WriteRune(runes[i])
				i++
				if isEscapeFinal(runes[i-1]) {
					break
				}
			}
			continue
		}
		prefix.WriteRune(runes[i])
		col++
		i++
	}

	// Pad prefix if bg line is shorter than x
	for col < x {
		prefix.WriteRune(' ')
		col++
	}

	// Skip over ovWidth visible columns in the background
	skipped := 0
	for i < len(runes) && skipped < ovWidth {
		if runes[i] == '\x1b' {
			for i < len(runes) {
				i++
				if isEscapeFinal(runes[i-1]) {
					break
				}
			}
			continue
		}
		skipped++
		i++
	}

	for i < len(runes) {
		suffix.WriteRune(runes[i])
		i++
	}

	return prefix.String() + overlay + suffix.String()
}

// visibleLen returns the number of visible (non-ANSI-escape) characters in a string.
func visibleLen(s string) int {
	n := 0
	inEsc := false
	for _, r := range s {
		if r == '\x1b' {
			inEsc = true
			continue
		}
		if inEsc {
			if isEscapeFinal(r) {
				inEsc = false
			}
			continue
		}
		n++
	}
	return n
}
