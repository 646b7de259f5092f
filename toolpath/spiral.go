package toolpath

import "math"

// SpiralPattern lays one continuous helix per layer, with a full settling
// turn at each end so the bead closes without a seam.
type SpiralPattern struct {
	params Params
}

// Pitch is the axial advance per turn.
func (p Params) Pitch() float64 {
	return math.Max(p.BeadWidth*(1-p.Overlap/100), epsilon)
}

// RPM is the part speed that gives the deposition speed at the surface of
// the given diameter. Rotation is always slaved to the deposition speed.
func (p Params) RPM(diameter float64) float64 {
	circumference := math.Pi * diameter
	if circumference <= 0 || p.DepositionSpeed <= 0 {
		return 0
	}
	return p.DepositionSpeed / circumference
}

func (sp *SpiralPattern) Segment(layer int, diameter float64) Segment {
	p := sp.params
	seg := NewSegment()

	zLayer, zSafe := workHeights(p, diameter)
	xStart, xEnd := p.Leads()

	sign := p.Rotation.Sign()
	turns := math.Abs(xEnd-xStart) / p.Pitch()
	passAngle := turns * 360 * sign
	settle := 360 * sign

	rpm := p.RPM(diameter)
	feedLinear := p.DepositionSpeed
	if rpm > 0 {
		feedLinear = p.DepositionSpeed / rpm
	}
	feedAngular := rpm * 360

	layerHeader(&seg, p, layer, zSafe)
	seg.Rapid(X(xStart), A(0))
	seg.Feed(feedLinear*2, Z(zLayer))

	fracs := scurve(p, p.SCurveSteps)

	// settling turn before the helix
	seg.Ramp(feedAngular, "A", 0, 0, 0, settle, fracs)

	// helix: X and A together
	seg.Ramp(feedLinear, "XA", xStart, xEnd, settle, passAngle+settle, fracs)

	// settling turn after the helix
	seg.Ramp(feedAngular, "A", 0, 0, passAngle+settle, passAngle+2*settle, fracs)

	if math.Abs(p.LeadOut) > epsilon {
		seg.Feed(feedLinear*0.85, X(xEnd-(xEnd-xStart)*0.3))
	}

	layerFooter(&seg, p, layer, zSafe)

	return seg
}
