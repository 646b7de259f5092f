package toolpath

import "math"

// SCurve returns n ease-in/ease-out fractions in (0,1], ending at exactly 1.
// n is raised to 2 if smaller. Fraction i is 0.5 - 0.5*cos(pi*i/n).
func SCurve(n int) []float64 {
	if n < 2 {
		n = 2
	}
	fracs := make([]float64, n)
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		fracs[i-1] = 0.5 - 0.5*math.Cos(math.Pi*t)
	}
	// cos(pi) is exact but keep the endpoint exact regardless of n
	fracs[n-1] = 1
	return fracs
}

// Interpolate returns the sub-positions of a move from a to b along the
// given fractions.
func Interpolate(a, b float64, fracs []float64) []float64 {
	out := make([]float64, len(fracs))
	for i, f := range fracs {
		out[i] = a + (b-a)*f
	}
	return out
}
