package gonumlp

import (
	"bufio"
	"io"
	"math"
	"strconv"

	"github.com/kilianp07/vrptw/core/milp"
)

// termsPerLine keeps lines well below the 510 character limit of the format.
const termsPerLine = 8

// WriteLP writes the model in CPLEX LP format.
func (m *Model) WriteLP(w io.Writer) error {
	if m.disposed() {
		return milp.ErrDisposed
	}
	bw := bufio.NewWriter(w)
	bw.WriteString(`\ Model ` + m.name + "\n")
	if m.sense == milp.Maximize {
		bw.WriteString("Maximize\n")
	} else {
		bw.WriteString("Minimize\n")
	}
	bw.WriteString(" obj:")
	m.writeTerms(bw, m.obj)
	if m.objConst != 0 {
		bw.WriteString(" " + signed(m.objConst) + " constant")
	}
	bw.WriteString("\nSubject To\n")
	for _, r := range m.rows {
		bw.WriteString(" " + r.name + ":")
		m.writeTerms(bw, r.entries)
		bw.WriteString(" " + r.rel.String() + " " + num(r.rhs) + "\n")
	}

	bw.WriteString("Bounds\n")
	var generals, binaries []string
	for _, v := range m.vars {
		switch v.kind {
		case milp.Binary:
			binaries = append(binaries, v.name)
			continue
		case milp.Integer:
			generals = append(generals, v.name)
		}
		if math.IsInf(v.ub, 1) {
			bw.WriteString(" " + v.name + " >= " + num(v.lb) + "\n")
		} else {
			bw.WriteString(" " + num(v.lb) + " <= " + v.name + " <= " + num(v.ub) + "\n")
		}
	}
	writeSection(bw, "Generals", generals)
	writeSection(bw, "Binaries", binaries)
	bw.WriteString("End\n")
	return bw.Flush()
}

func (m *Model) writeTerms(bw *bufio.Writer, es []entry) {
	if len(es) == 0 && len(m.vars) > 0 {
		bw.WriteString(" 0 " + m.vars[0].name)
		return
	}
	for i, e := range es {
		if i > 0 && i%termsPerLine == 0 {
			bw.WriteString("\n  ")
		}
		bw.WriteString(" " + signed(e.coef) + " " + m.vars[e.col].name)
	}
}

func writeSection(bw *bufio.Writer, title string, names []string) {
	if len(names) == 0 {
		return
	}
	bw.WriteString(title + "\n")
	for i, n := range names {
		if i%termsPerLine == 0 {
			if i > 0 {
				bw.WriteString("\n")
			}
			bw.WriteString(" ")
		}
		bw.WriteString(" " + n)
	}
	bw.WriteString("\n")
}

func signed(v float64) string {
	if v < 0 {
		return "- " + num(-v)
	}
	return "+ " + num(v)
}

func num(v float64) string {
	return strconv.FormatFloat(noNegZero(v), 'g', -1, 64)
}
