package toolpath

import "math"

// AxialStep is the axial advance between oscillation windows.
func (p Params) AxialStep() float64 {
	return axialStep(p)
}

// AxialSteps is the number of oscillation windows along the coated length.
func (p Params) AxialSteps() int {
	return axialStepCount(p)
}

// AngularCycles returns how many oscillation cycles make up one turn at the
// given diameter, and the angle of each cycle in degrees. ok is false when
// the circumference or the angular displacement is not positive.
func (p Params) AngularCycles(diameter float64) (cycles int, delta float64, ok bool) {
	circumference := math.Pi * diameter
	displacement := p.AngularStepPct / 100 * p.BeadWidth
	if circumference <= 0 || displacement <= 0 {
		return 0, 0, false
	}
	cycles = int(math.Ceil(circumference / displacement))
	if cycles < 1 {
		cycles = 1
	}
	return cycles, 360 / float64(cycles), true
}

func axialStep(p Params) float64 {
	return math.Max(p.OscLength*(p.Overlap/100), epsilon)
}

func axialStepCount(p Params) int {
	if p.Length <= 0 {
		return 1
	}
	n := math.Ceil(p.Length / axialStep(p))
	if n > maxAxialSteps {
		return maxAxialSteps + 1
	}
	if n < 1 {
		return 1
	}
	return int(n)
}

// ring is the per-layer state shared by the oscillation patterns.
type ring struct {
	params Params

	zLayer, zSafe float64
	xStart, xEnd  float64

	step   float64
	steps  int
	cycles int
	deltaA float64
	sign   float64

	feedX float64
	feedA float64

	// accumulated A angle; only ever moves in the rotation direction
	a float64
}

func newRing(p Params, layer int, diameter float64) (*ring, bool) {
	cycles, delta, ok := p.AngularCycles(diameter)
	if !ok {
		return nil, false
	}

	r := ring{
		params: p,
		step:   axialStep(p),
		steps:  axialStepCount(p),
		cycles: cycles,
		deltaA: delta,
		sign:   p.Rotation.Sign(),
		feedX:  p.linearFeed(),
		feedA:  p.RPM(diameter) * 360,
	}
	r.zLayer, r.zSafe = workHeights(p, diameter)
	r.xStart, r.xEnd = p.Leads()

	// quarter-cycle stagger so consecutive layers start out of phase
	r.a = float64(layer) * r.deltaA * 0.25 * r.sign

	return &r, true
}

// bounds returns the oscillation window of axial step i: near is where each
// swing starts and ends, far is the turning point. Both lie on the part.
func (r *ring) bounds(i int) (near, far float64) {
	p := r.params
	if p.Direction == RightToLeft {
		near = p.Length - float64(i)*r.step
		far = near - p.OscLength
	} else {
		near = float64(i) * r.step
		far = near + p.OscLength
	}
	return clamp(near, 0, p.Length), clamp(far, 0, p.Length)
}

// approach positions the torch at the lead-in point and plunges to the
// working height.
func (r *ring) approach(seg *Segment) {
	seg.Rapid(X(r.xStart), A(r.a))
	seg.Feed(r.feedX*2, Z(r.zLayer))
}

// rotate turns the part by one full cycle set (one revolution) in a single
// rotary move.
func (r *ring) rotate(seg *Segment, fracs []float64) {
	target := r.a + r.sign*r.deltaA*float64(r.cycles)
	seg.Ramp(r.feedA, "A", 0, 0, r.a, target, fracs)
	r.a = target
}

// advance rapids to the window of the next axial step.
func (r *ring) advance(seg *Segment, i int) float64 {
	next, _ := r.bounds(i + 1)
	seg.Rapid(X(next))
	return next
}

// closeOut moves from x to the lead-out position if it is not there yet.
func (r *ring) closeOut(seg *Segment, x float64, comment string) {
	if math.Abs(r.xEnd-x) > epsilon {
		seg.Comment("%s", comment)
		seg.Feed(r.feedX, X(r.xEnd))
	}
}

func degenerateSegment(p Params, layer int) Segment {
	seg := NewSegment()
	seg.Comment("--- CAMADA %d ---", layer+1)
	seg.Append("(ERRO: Diametro ou deslocamento invalido para calculo angular)")
	if layer < p.Layers-1 {
		seg.Append("M01")
	}
	return seg
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// LinearPattern oscillates the torch axially while the part turns one
// revolution per axial step, with ramped lead-in and lead-out.
type LinearPattern struct {
	params Params
}

func (lp *LinearPattern) Segment(layer int, diameter float64) Segment {
	p := lp.params
	r, ok := newRing(p, layer, diameter)
	if !ok {
		return degenerateSegment(p, layer)
	}

	seg := NewSegment()
	layerHeader(&seg, p, layer, r.zSafe)

	fracs := scurve(p, p.SCurveSteps)
	x := r.xStart

	for i := 0; i < r.steps; i++ {
		near, far := r.bounds(i)
		seg.Comment("--- PASSO AXIAL %d/%d ---", i+1, r.steps)

		if i == 0 {
			r.approach(&seg)
			r.rotate(&seg, fracs)
			if math.Abs(p.LeadIn) > epsilon {
				seg.Feed(r.feedX*0.6, X(x+(near-x)*0.3))
				seg.Feed(r.feedX*0.85, X(x+(near-x)*0.7))
				seg.Feed(r.feedX, X(near))
				x = near
			}
		} else {
			r.rotate(&seg, fracs)
		}

		if i == r.steps-1 {
			stepStart := x
			r.closeOut(&seg, x, "Fechamento ate fim do revestimento")
			if math.Abs(p.LeadOut) > epsilon {
				seg.Comment("Movimento lead-out")
				seg.Feed(r.feedX*0.85, X(r.xEnd-(r.xEnd-stepStart)*0.3))
				seg.Feed(r.feedX*0.6, X(r.xEnd))
			}
			break
		}

		for k := 0; k < r.cycles; k++ {
			seg.Comment("Passo angular %d/%d", k+1, r.cycles)
			seg.Ramp(r.feedX, "X", near, far, 0, 0, fracs)
			seg.Ramp(r.feedX, "X", far, near, 0, 0, fracs)
		}
		x = r.advance(&seg, i)
	}

	layerFooter(&seg, p, layer, r.zSafe)
	return seg
}

// SquarePattern is the stepped variant of LinearPattern: swings are
// profiled coarsely, the lead-in is one direct move and the last step closes
// straight to the lead-out position.
type SquarePattern struct {
	params Params
}

func (sq *SquarePattern) Segment(layer int, diameter float64) Segment {
	p := sq.params
	r, ok := newRing(p, layer, diameter)
	if !ok {
		return degenerateSegment(p, layer)
	}

	seg := NewSegment()
	layerHeader(&seg, p, layer, r.zSafe)

	rotation := scurve(p, p.SCurveSteps)
	swing := scurve(p, p.SCurveSteps/2)
	x := r.xStart

	for i := 0; i < r.steps; i++ {
		near, far := r.bounds(i)
		seg.Comment("--- PASSO AXIAL %d/%d ---", i+1, r.steps)

		if i == 0 {
			r.approach(&seg)
			r.rotate(&seg, rotation)
			if math.Abs(p.LeadIn) > epsilon {
				seg.Feed(r.feedX, X(near))
				x = near
			}
		} else {
			r.rotate(&seg, rotation)
		}

		if i == r.steps-1 {
			r.closeOut(&seg, x, "Passo final - posicao de termino")
			break
		}

		for k := 0; k < r.cycles; k++ {
			seg.Comment("Passo angular %d/%d", k+1, r.cycles)
			seg.Ramp(r.feedX, "X", near, far, 0, 0, swing)
			seg.Ramp(r.feedX, "X", far, near, 0, 0, swing)
		}
		x = r.advance(&seg, i)
	}

	layerFooter(&seg, p, layer, r.zSafe)
	return seg
}
