package toolpath

import (
	"fmt"
	"math"
	"time"
)

// Summary describes the process a parameter set produces, computed at the
// base diameter.
type Summary struct {
	Strategy Strategy

	RPM         float64 // part speed at the base diameter
	AngularFeed float64 // deg/min

	// spiral
	Pitch     float64 // mm per turn
	Rotations float64 // turns over the coated length
	TotalA    float64 // degrees per layer, settling turns included

	// oscillation
	AxialStep  float64
	AxialSteps int
	Cycles     int     // oscillation cycles per turn
	CycleAngle float64 // degrees per cycle

	LayerMinutes float64
	TotalMinutes float64
}

// Summarize estimates the process for p. It does not generate the program.
func Summarize(p Params) (Summary, error) {
	if err := p.Validate(); err != nil {
		return Summary{}, err
	}
	strategy, err := ResolveStrategy(p.Mode, p.OscillationType)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Strategy:    strategy,
		RPM:         p.RPM(p.Diameter),
		AngularFeed: p.RPM(p.Diameter) * 360,
	}
	circumference := math.Pi * p.Diameter
	leads := p.LeadIn + p.LeadOut

	if strategy == Spiral {
		s.Pitch = p.Pitch()
		s.Rotations = p.Length / s.Pitch
		s.TotalA = s.Rotations*360 + 720

		helix := math.Hypot(circumference, s.Pitch)
		travel := s.Rotations*helix + leads + 2*circumference
		s.LayerMinutes = travel / p.DepositionSpeed
	} else {
		s.AxialStep = p.AxialStep()
		s.AxialSteps = p.AxialSteps()

		cycles, delta, ok := p.AngularCycles(p.Diameter)
		if ok {
			s.Cycles, s.CycleAngle = cycles, delta

			stroke := 2 * p.OscLength / p.DepositionSpeed
			turn := 0.0
			if strategy != ContinuousSquareOscillation && s.AngularFeed > 0 {
				turn = delta / s.AngularFeed
			}
			perRev := (stroke + turn) * float64(cycles)
			s.LayerMinutes = float64(s.AxialSteps)*perRev + leads/p.DepositionSpeed
		}
	}

	s.TotalMinutes = s.LayerMinutes * float64(p.Layers)
	return s, nil
}

// Duration is the total estimated deposition time.
func (s Summary) Duration() time.Duration {
	return time.Duration(s.TotalMinutes * float64(time.Minute))
}

// Clock formats the total time as HH:MM, rounded up to the next minute.
func (s Summary) Clock() string {
	m := int(math.Ceil(s.TotalMinutes))
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
