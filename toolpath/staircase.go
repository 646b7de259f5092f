package toolpath

import "math"

// StaircasePattern is the continuous square oscillation: every swing is
// broken into alternating X and A sub-moves, so the part keeps turning while
// the torch travels and each half swing advances half a cycle.
type StaircasePattern struct {
	params Params
}

func (sc *StaircasePattern) Segment(layer int, diameter float64) Segment {
	p := sc.params
	r, ok := newRing(p, layer, diameter)
	if !ok {
		return degenerateSegment(p, layer)
	}

	seg := NewSegment()
	layerHeader(&seg, p, layer, r.zSafe)

	x := r.xStart
	half := r.sign * r.deltaA / 2

	for i := 0; i < r.steps; i++ {
		near, far := r.bounds(i)
		seg.Comment("--- PASSO AXIAL %d/%d ---", i+1, r.steps)

		if i == 0 {
			r.approach(&seg)
			if math.Abs(p.LeadIn) > epsilon {
				seg.Feed(r.feedX, X(near))
				x = near
			}
		}

		if i == r.steps-1 {
			r.closeOut(&seg, x, "Fechamento ate fim do revestimento")
			break
		}

		for k := 0; k < r.cycles; k++ {
			seg.Comment("Passo angular %d/%d", k+1, r.cycles)
			r.staircase(&seg, near, far, half)
			r.staircase(&seg, far, near, half)
		}
		x = r.advance(&seg, i)
	}

	layerFooter(&seg, p, layer, r.zSafe)
	return seg
}

// staircase moves X from x0 to x1 while turning A by da, alternating one X
// line and one A line per stair. The stair count honours the X and A
// granularities, in compact mode too.
func (r *ring) staircase(seg *Segment, x0, x1, da float64) {
	stairs := maxInt(stairCount(x1-x0, r.params.GranX), stairCount(da, r.params.GranA), 1)

	a0 := r.a
	for s := 1; s <= stairs; s++ {
		f := float64(s) / float64(stairs)
		seg.Feed(r.feedX, X(x0+(x1-x0)*f))
		seg.Feed(r.feedA, A(a0+da*f))
	}
	r.a = a0 + da
}

func stairCount(delta, granularity float64) int {
	if granularity <= 0 || math.Abs(delta) < 1e-9 {
		return 0
	}
	return int(math.Ceil(math.Abs(delta) / granularity))
}

func maxInt(vs ...int) int {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
