// Package stock models the part after coating, so the deposit can be
// checked in a CAD viewer or fed to a later machining job.
package stock

import (
	"errors"
	"fmt"
	"math"

	"github.com/hschendel/stl"
	"gonum.org/v1/gonum/spatial/r3"

	"ptacam/toolpath"
)

var ErrNoStock = errors.New("no stock to model")

// Envelope returns the coated region as a closed tube along X: inner radius
// is the base diameter, outer radius adds every layer, and it spans the
// coated length. segments is the facet count around the circumference.
func Envelope(p toolpath.Params, segments int) (*stl.Solid, error) {
	inner := p.Diameter / 2
	outer := p.LayerDiameter(p.Layers) / 2
	if segments < 3 {
		return nil, fmt.Errorf("%w: need at least 3 segments, got %d", ErrNoStock, segments)
	}
	if inner <= 0 || outer <= inner || p.Length <= 0 {
		return nil, fmt.Errorf("%w: diameter %g, deposit %g mm over %g mm", ErrNoStock, p.Diameter, outer-inner, p.Length)
	}

	name := p.Name
	if name == "" {
		name = "ptacam"
	}
	solid := &stl.Solid{
		Name:      name,
		Triangles: make([]stl.Triangle, 0, 8*segments),
	}

	x0, x1 := 0.0, p.Length
	for k := 0; k < segments; k++ {
		// the last facet closes on angle 0 exactly
		t0 := 2 * math.Pi * float64(k) / float64(segments)
		t1 := 2 * math.Pi * float64((k+1)%segments) / float64(segments)
		mid := 2 * math.Pi * (float64(k) + 0.5) / float64(segments)
		radial := r3.Vec{Y: math.Cos(mid), Z: math.Sin(mid)}

		// outer and inner surfaces
		solid.Triangles = appendQuad(solid.Triangles, radial,
			point(x0, outer, t0), point(x1, outer, t0), point(x1, outer, t1), point(x0, outer, t1))
		solid.Triangles = appendQuad(solid.Triangles, r3.Scale(-1, radial),
			point(x0, inner, t0), point(x1, inner, t0), point(x1, inner, t1), point(x0, inner, t1))

		// end caps
		solid.Triangles = appendQuad(solid.Triangles, r3.Vec{X: -1},
			point(x0, inner, t0), point(x0, outer, t0), point(x0, outer, t1), point(x0, inner, t1))
		solid.Triangles = appendQuad(solid.Triangles, r3.Vec{X: 1},
			point(x1, inner, t0), point(x1, outer, t0), point(x1, outer, t1), point(x1, inner, t1))
	}

	return solid, nil
}

// Volume is the deposited volume in mm^3.
func Volume(p toolpath.Params) float64 {
	inner := p.Diameter / 2
	outer := p.LayerDiameter(p.Layers) / 2
	return math.Pi * (outer*outer - inner*inner) * p.Length
}

// Write saves the envelope of p as a binary STL file.
func Write(path string, p toolpath.Params, segments int) error {
	solid, err := Envelope(p, segments)
	if err != nil {
		return err
	}
	if err := solid.WriteFile(path); err != nil {
		return fmt.Errorf("write stock %s: %w", path, err)
	}
	return nil
}

func point(x, r, theta float64) r3.Vec {
	return r3.Vec{X: x, Y: r * math.Cos(theta), Z: r * math.Sin(theta)}
}

// appendQuad splits the quad a b c d into two triangles wound so that their
// normals face along facing.
func appendQuad(tris []stl.Triangle, facing r3.Vec, a, b, c, d r3.Vec) []stl.Triangle {
	return append(tris, facet(facing, a, b, c), facet(facing, a, c, d))
}

func facet(facing r3.Vec, a, b, c r3.Vec) stl.Triangle {
	n := r3.Unit(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
	if r3.Dot(n, facing) < 0 {
		b, c = c, b
		n = r3.Scale(-1, n)
	}
	return stl.Triangle{
		Normal:   vec3(n),
		Vertices: [3]stl.Vec3{vec3(a), vec3(b), vec3(c)},
	}
}

func vec3(v r3.Vec) stl.Vec3 {
	return stl.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}
