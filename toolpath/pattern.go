package toolpath

import "fmt"

// Strategy identifies one of the deposition patterns.
type Strategy int

const (
	Spiral Strategy = iota
	LinearOscillation
	SquareOscillation
	ContinuousSquareOscillation
)

func (s Strategy) String() string {
	switch s {
	case Spiral:
		return "spiral"
	case LinearOscillation:
		return "linear oscillation"
	case SquareOscillation:
		return "square oscillation"
	case ContinuousSquareOscillation:
		return "continuous square oscillation"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Pattern builds the motion lines of one layer at one working diameter.
type Pattern interface {
	Segment(layer int, diameter float64) Segment
}

// ResolveStrategy maps welding_mode and oscillation_type onto a Strategy.
// The legacy modes oscilacao_linear and oscilacao_quadrada are kept for old
// presets. In the unified oscillation mode an unrecognised type is linear.
func ResolveStrategy(mode Mode, osc OscillationType) (Strategy, error) {
	switch mode {
	case ModeSpiral:
		return Spiral, nil
	case ModeOscillation:
		switch osc {
		case OscSquare:
			return SquareOscillation, nil
		case OscContinuousSquare:
			return ContinuousSquareOscillation, nil
		default:
			return LinearOscillation, nil
		}
	case ModeLegacyLinear:
		return LinearOscillation, nil
	case ModeLegacySquare:
		return SquareOscillation, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, string(mode))
}

func NewPattern(p Params) (Pattern, error) {
	strategy, err := ResolveStrategy(p.Mode, p.OscillationType)
	if err != nil {
		return nil, err
	}

	switch strategy {
	case Spiral:
		return &SpiralPattern{params: p}, nil
	case LinearOscillation:
		return &LinearPattern{params: p}, nil
	case SquareOscillation:
		return &SquarePattern{params: p}, nil
	case ContinuousSquareOscillation:
		return &StaircasePattern{params: p}, nil
	}
	return nil, fmt.Errorf("%w: no pattern for %v", ErrUnknownMode, strategy)
}

// layerHeader opens every layer segment.
func layerHeader(seg *Segment, p Params, layer int, zSafe float64) {
	seg.Comment("--- CAMADA %d ---", layer+1)
	seg.Comment("SENTIDO: %s", p.Direction)
	seg.Rapid(Z(zSafe))
}

// layerFooter retracts and, except after the last layer, pauses for the
// operator.
func layerFooter(seg *Segment, p Params, layer int, zSafe float64) {
	seg.Rapid(Z(zSafe))
	if layer < p.Layers-1 {
		seg.Append("M01")
	} else {
		seg.Append("")
	}
}

// workHeights returns the working Z for a diameter and the rapid clearance
// height above it.
func workHeights(p Params, diameter float64) (zLayer, zSafe float64) {
	zLayer = diameter/2 + p.Standoff
	return zLayer, zLayer + safetyClearance
}

// scurve returns the fractions for a smoothed move, or nil in compact mode.
func scurve(p Params, n int) []float64 {
	if p.Compact {
		return nil
	}
	return SCurve(n)
}
