// Package trace re-reads generated programs: it follows the modal X, Z, A
// and F words of every motion line so a program can be checked, plotted or
// timed without access to the parameters that produced it.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Move is one G00 or G01 line with the modal state after it.
type Move struct {
	Rapid bool
	X     float64
	Z     float64
	A     float64
	F     float64
	Layer int // 1-based, 0 before the first layer marker
	Line  int // 1-based source line
}

// Program is the trace of a whole program.
type Program struct {
	Moves  []Move
	Rapids int
	Feeds  int
	Layers int
	Pauses int
}

var (
	commentRe = regexp.MustCompile(`\([^)]*\)`)
	motionRe  = regexp.MustCompile(`^G0?([01])(\s|$)`)
	wordRe    = regexp.MustCompile(`([XZAF])(-?\d+(?:\.\d+)?)`)
	layerRe   = regexp.MustCompile(`^\(--- CAMADA (\d+) ---\)$`)
)

// Parse traces a program given as lines.
func Parse(lines []string) (*Program, error) {
	t := tracer{prog: &Program{}}
	for i, l := range lines {
		if err := t.line(i+1, l); err != nil {
			return nil, err
		}
	}
	return t.prog, nil
}

// Read traces a program from r, one line per G-code block.
func Read(r io.Reader) (*Program, error) {
	t := tracer{prog: &Program{}}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		if err := t.line(n, scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read program: %w", err)
	}
	return t.prog, nil
}

type tracer struct {
	prog  *Program
	state Move
}

func (t *tracer) line(n int, l string) error {
	l = strings.TrimSpace(l)

	if m := layerRe.FindStringSubmatch(l); m != nil {
		t.prog.Layers++
		layer, err := strconv.Atoi(m[1])
		if err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
		t.state.Layer = layer
		return nil
	}

	code := strings.TrimSpace(commentRe.ReplaceAllString(l, ""))
	if code == "M01" {
		t.prog.Pauses++
		return nil
	}

	m := motionRe.FindStringSubmatch(code)
	if m == nil {
		// comments, G53 machine moves, M-codes, modal setup
		return nil
	}

	move := t.state
	move.Rapid = m[1] == "0"
	move.Line = n

	for _, w := range wordRe.FindAllStringSubmatch(code, -1) {
		v, err := strconv.ParseFloat(w[2], 64)
		if err != nil {
			return fmt.Errorf("line %d: bad %s word %q: %w", n, w[1], w[2], err)
		}
		switch w[1] {
		case "X":
			move.X = v
		case "Z":
			move.Z = v
		case "A":
			move.A = v
		case "F":
			move.F = v
		}
	}

	if move.Rapid {
		t.prog.Rapids++
	} else {
		t.prog.Feeds++
	}
	t.prog.Moves = append(t.prog.Moves, move)
	t.state = move
	return nil
}

// Bounds returns the X, Z and A extents of all moves.
func (p *Program) Bounds() (min, max Move) {
	if len(p.Moves) == 0 {
		return
	}
	min, max = p.Moves[0], p.Moves[0]
	for _, m := range p.Moves[1:] {
		min.X, max.X = math.Min(min.X, m.X), math.Max(max.X, m.X)
		min.Z, max.Z = math.Min(min.Z, m.Z), math.Max(max.Z, m.Z)
		min.A, max.A = math.Min(min.A, m.A), math.Max(max.A, m.A)
	}
	return
}

// Layer returns the moves of one layer (1-based).
func (p *Program) Layer(n int) []Move {
	var moves []Move
	for _, m := range p.Moves {
		if m.Layer == n {
			moves = append(moves, m)
		}
	}
	return moves
}

// CycleTime estimates the run time in seconds the way a G94 controller
// reads the program: each move covers the combined X, Z and A distance
// (A in degrees) at its feed rate, rapids at rapidFeed. maxVel caps every
// feed when positive.
func (p *Program) CycleTime(rapidFeed, maxVel float64) float64 {
	cycleTime := 0.0

	for i := 1; i < len(p.Moves); i++ {
		prev, cur := p.Moves[i-1], p.Moves[i]
		dx := cur.X - prev.X
		dz := cur.Z - prev.Z
		da := cur.A - prev.A
		dist := math.Sqrt(dx*dx + dz*dz + da*da)

		feedRate := rapidFeed
		if !cur.Rapid {
			feedRate = cur.F
		}
		if maxVel > 0 && feedRate > maxVel {
			feedRate = maxVel
		}
		if feedRate <= 0 {
			continue
		}

		cycleTime += 60 * (dist / feedRate)
	}

	return cycleTime
}
