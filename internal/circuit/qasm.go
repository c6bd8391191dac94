package circuit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Pre-compiled regexps for QASM parsing.
var (
	singleGateRegex = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\];?$`)
	twoQubitRegex   = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\],\s*q\[(\d+)\];?$`)
	measureRegex    = regexp.MustCompile(`^measure\s+q\[(\d+)\]\s*->\s*c\[(\d+)\];?$`)
	ifRegex         = regexp.MustCompile(`^if\s*\(\s*c\[(\d+)\]\s*==\s*1\s*\)\s+(\w+)\s+q\[(\d+)\];?$`)
	qregRegex       = regexp.MustCompile(`^qreg\s+(\w+)\[(\d+)\];?$`)
	cregRegex       = regexp.MustCompile(`^creg\s+(\w+)\[(\d+)\];?$`)
)

// ErrParse is returned for QASM input this package cannot represent.
var ErrParse = errors.New("qasm parse error")

// MaxRegisterSize bounds the registers ParseQASM accepts.
const MaxRegisterSize = 1024

// ToQASM generates QASM 2.0 output from the program.
func (p *Program) ToQASM() string {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg %s[%d];\n", p.QReg.Name, p.QReg.Size)
	fmt.Fprintf(&sb, "creg %s[%d];\n\n", p.CReg.Name, p.CReg.Size)

	for _, gate := range p.gates {
		switch {
		case gate.Type == GateBarrier:
			qubits := make([]string, p.QReg.Size)
			for q := 0; q < p.QReg.Size; q++ {
				qubits[q] = fmt.Sprintf("q[%d]", q)
			}
			fmt.Fprintf(&sb, "barrier %s;\n", strings.Join(qubits, ", "))
		case gate.ClassicalControl >= 0:
			fmt.Fprintf(&sb, "if (c[%d]==1) %s q[%d];\n", gate.ClassicalControl, strings.ToLower(gate.Type), gate.Target)
		case gate.Type == GateMeasure:
			fmt.Fprintf(&sb, "measure q[%d] -> c[%d];\n", gate.Target, gate.Target)
		case gate.Control >= 0:
			fmt.Fprintf(&sb, "%s q[%d], q[%d];\n", strings.ToLower(gate.Type), gate.Control, gate.Target)
		default:
			fmt.Fprintf(&sb, "%s q[%d];\n", strings.ToLower(gate.Type), gate.Target)
		}
	}

	return sb.String()
}

// ParseQASM parses the QASM 2.0 subset produced by ToQASM: one q and one c
// register, h/x/z/cx, measure, full-width barriers and if (c[i]==1) x/z.
func ParseQASM(qasm string) (*Program, error) {
	var b *Builder
	numQubits, numCbits := -1, -1

	for n, line := range strings.Split(qasm, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "OPENQASM") || strings.HasPrefix(line, "include") {
			continue
		}
		if matches := qregRegex.FindStringSubmatch(line); matches != nil {
			if matches[1] != "q" {
				return nil, errors.Wrapf(ErrParse, "line %d: quantum register must be named q", n+1)
			}
			size, err := parseRegisterSize(matches[2], 1)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: qreg", n+1)
			}
			numQubits = size
			continue
		}
		if matches := cregRegex.FindStringSubmatch(line); matches != nil {
			if matches[1] != "c" {
				return nil, errors.Wrapf(ErrParse, "line %d: classical register must be named c", n+1)
			}
			size, err := parseRegisterSize(matches[2], 0)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: creg", n+1)
			}
			numCbits = size
			continue
		}

		if b == nil {
			if numQubits < 0 || numCbits < 0 {
				return nil, errors.Wrapf(ErrParse, "line %d: operation before register declarations", n+1)
			}
			b = NewBuilder(numQubits, numCbits)
		}

		if strings.HasPrefix(line, "barrier") {
			b.Barrier()
			continue
		}

		// Measurement: "measure q[0] -> c[0];"
		if matches := measureRegex.FindStringSubmatch(line); matches != nil {
			source, _ := strconv.Atoi(matches[1])
			cbit, _ := strconv.Atoi(matches[2])
			if source != cbit {
				return nil, errors.Wrapf(ErrParse, "line %d: measure q[%d] must target c[%d]", n+1, source, source)
			}
			b.Measure(source)
			continue
		}

		// Classical control: "if (c[0]==1) x q[1];"
		if matches := ifRegex.FindStringSubmatch(line); matches != nil {
			cbit, _ := strconv.Atoi(matches[1])
			gateType := strings.ToUpper(matches[2])
			target, _ := strconv.Atoi(matches[3])
			b.If(cbit, gateType, target)
			continue
		}

		if matches := twoQubitRegex.FindStringSubmatch(line); matches != nil {
			if strings.ToUpper(matches[1]) != GateCX {
				return nil, errors.Wrapf(ErrParse, "line %d: unsupported gate %q", n+1, matches[1])
			}
			control, _ := strconv.Atoi(matches[2])
			target, _ := strconv.Atoi(matches[3])
			b.CX(control, target)
			continue
		}

		if matches := singleGateRegex.FindStringSubmatch(line); matches != nil {
			target, _ := strconv.Atoi(matches[2])
			switch strings.ToUpper(matches[1]) {
			case GateH:
				b.H(target)
			case GateX:
				b.X(target)
			case GateZ:
				b.Z(target)
			default:
				return nil, errors.Wrapf(ErrParse, "line %d: unsupported gate %q", n+1, matches[1])
			}
			continue
		}

		return nil, errors.Wrapf(ErrParse, "line %d: cannot parse %q", n+1, line)
	}

	if b == nil {
		if numQubits < 0 || numCbits < 0 {
			return nil, errors.Wrap(ErrParse, "missing register declarations")
		}
		b = NewBuilder(numQubits, numCbits)
	}
	return b.Build()
}

func parseRegisterSize(s string, minSize int) (int, error) {
	size, err := strconv.Atoi(s)
	if err != nil || size < minSize || size > MaxRegisterSize {
		return 0, errors.Wrapf(ErrParse, "register size %s outside %d..%d", s, minSize, MaxRegisterSize)
	}
	return size, nil
}
