package toolpath

import (
	"fmt"
	"math"
	"strings"
)

// Word is one axis address of a motion line, e.g. X12.500.
type Word struct {
	Axis  byte
	Value float64
}

func X(v float64) Word { return Word{'X', v} }
func Z(v float64) Word { return Word{'Z', v} }
func A(v float64) Word { return Word{'A', v} }

// Segment accumulates the G-code lines of one deposition layer.
type Segment struct {
	lines []string
}

func NewSegment() Segment {
	return Segment{
		lines: []string{},
	}
}

func (seg *Segment) Lines() []string {
	return seg.lines
}

func (seg *Segment) Append(line string) {
	seg.lines = append(seg.lines, line)
}

func (seg *Segment) AppendSegment(more *Segment) {
	seg.lines = append(seg.lines, more.lines...)
}

func (seg *Segment) Comment(format string, args ...interface{}) {
	seg.Append("(" + fmt.Sprintf(format, args...) + ")")
}

// Rapid emits a G00 move.
func (seg *Segment) Rapid(words ...Word) {
	seg.Append("G00" + formatWords(words))
}

// Feed emits a G01 move at the given feed rate.
func (seg *Segment) Feed(feed float64, words ...Word) {
	seg.Append(fmt.Sprintf("G01 F%s", formatFeed(feed)) + formatWords(words))
}

// Ramp emits a feed move from (x0, a0) to (x1, a1) for the axes given in
// axes ("X", "A" or "XA"), subdivided along fracs. A nil fracs emits a
// single line to the target.
func (seg *Segment) Ramp(feed float64, axes string, x0, x1, a0, a1 float64, fracs []float64) {
	if fracs == nil {
		fracs = []float64{1}
	}
	xs := Interpolate(x0, x1, fracs)
	as := Interpolate(a0, a1, fracs)
	for i := range fracs {
		words := make([]Word, 0, 2)
		if strings.IndexByte(axes, 'X') >= 0 {
			words = append(words, X(xs[i]))
		}
		if strings.IndexByte(axes, 'A') >= 0 {
			words = append(words, A(as[i]))
		}
		seg.Feed(feed, words...)
	}
}

func formatWords(words []Word) string {
	var b strings.Builder
	for _, w := range words {
		b.WriteByte(' ')
		b.WriteByte(w.Axis)
		b.WriteString(formatPosition(w.Value))
	}
	return b.String()
}

// formatPosition prints positions and angles with 3 decimals, without ever
// producing "-0.000".
func formatPosition(v float64) string {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		r = 0
	}
	return fmt.Sprintf("%.3f", r)
}

func formatFeed(v float64) string {
	r := math.Round(v*10) / 10
	if r == 0 {
		r = 0
	}
	return fmt.Sprintf("%.1f", r)
}
