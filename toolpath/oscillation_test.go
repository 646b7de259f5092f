package toolpath

import (
	"math"
	"reflect"
	"strings"
	"testing"
)

// two axial steps of 5 mm, 42 cycles per turn, X feed distinct from the
// deposition speed
func shortOscillationRaw(kind OscillationType) Raw {
	return with(oscillationRaw(),
		"oscillation_type", string(kind),
		"comprimento_revestir", 10,
		"num_camadas", 1,
		"velocidade_oscilacao_mm_min", 300,
	)
}

func angularFeed(t *testing.T, raw Raw) string {
	t.Helper()
	p, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return "F" + formatFeed(p.RPM(p.Diameter)*360)
}

// swings returns the motion lines following each "(Passo angular" comment.
func swings(body []string) [][]string {
	var out [][]string
	for i, l := range body {
		if !strings.HasPrefix(l, "(Passo angular ") {
			continue
		}
		var cycle []string
		for _, m := range body[i+1:] {
			if strings.HasPrefix(m, "(") || strings.HasPrefix(m, "G00") {
				break
			}
			cycle = append(cycle, m)
		}
		out = append(out, cycle)
	}
	return out
}

// through returns the lines of body up to and including the last retract.
func through(body []string) []string {
	last := 0
	for i, l := range body {
		if strings.HasPrefix(l, "G00 Z") {
			last = i
		}
	}
	return body[:last+1]
}

func TestStaircaseStairs(t *testing.T) {
	cases := []struct {
		granX, granA float64
		compact      bool
		stairs       int
	}{
		{0.5, 1, false, 20}, // 10 mm stroke / 0.5
		{0.5, 1, true, 20},  // compact keeps the staircase
		{5, 0.5, false, 9},  // 4.286 degree half cycle / 0.5
		{100, 100, false, 1},
	}

	for _, c := range cases {
		raw := with(shortOscillationRaw(OscContinuousSquare),
			"osc_test_gran_x", c.granX,
			"osc_test_gran_a", c.granA,
			"compact_gcode", c.compact,
		)
		feedA := angularFeed(t, raw)
		body := layerBodies(generate(t, raw))[0]

		cycles := swings(body)
		if len(cycles) != 42 {
			t.Fatalf("gran %v/%v: got %d cycles, expected 42", c.granX, c.granA, len(cycles))
		}

		for k, cycle := range cycles {
			if len(cycle) != 4*c.stairs {
				t.Errorf("gran %v/%v compact %v: cycle %d has %d lines, expected %d", c.granX, c.granA, c.compact, k+1, len(cycle), 4*c.stairs)
				break
			}
			for i, l := range cycle {
				want := "G01 F300.0 X"
				if i%2 == 1 {
					want = "G01 " + feedA + " A"
				}
				if !strings.HasPrefix(l, want) {
					t.Errorf("gran %v/%v: cycle %d line %d is %q, expected %s...", c.granX, c.granA, k+1, i, l, want)
					break
				}
			}
		}

		// out to the far end of the window and back
		first := cycles[0]
		if first[2*c.stairs-2] != "G01 F300.0 X10.000" || first[4*c.stairs-2] != "G01 F300.0 X0.000" {
			t.Errorf("gran %v/%v: first cycle turns at %q and ends at %q", c.granX, c.granA, first[2*c.stairs-2], first[4*c.stairs-2])
		}
	}
}

func TestStaircaseCycleAngle(t *testing.T) {
	raw := shortOscillationRaw(OscContinuousSquare)
	body := layerBodies(generate(t, raw))[0]

	// each cycle turns A by 360/42 degrees
	cycles := swings(body)
	for k, want := range map[int]float64{0: 360.0 / 42, 20: 21 * 360.0 / 42, 41: 360} {
		as := axisValues(t, cycles[k], 'A', nil)
		if got := as[len(as)-1]; math.Abs(got-want) > 0.001 {
			t.Errorf("cycle %d ends at A%v, expected A%v", k+1, got, want)
		}
	}
}

func TestLinearRotatesOncePerStep(t *testing.T) {
	for _, compact := range []bool{false, true} {
		raw := with(shortOscillationRaw(OscLinear), "compact_gcode", compact)
		feedA := angularFeed(t, raw)
		body := layerBodies(generate(t, raw))[0]

		perStep := 6
		if compact {
			perStep = 1
		}

		rotary := 0
		for _, l := range body {
			if strings.HasPrefix(l, "G01 ") && strings.Contains(l, " A") {
				rotary++
				if !strings.HasPrefix(l, "G01 "+feedA+" A") || strings.Contains(l, "X") {
					t.Errorf("compact %v: rotary line %q", compact, l)
				}
			}
		}
		if rotary != 2*perStep {
			t.Errorf("compact %v: got %d rotary lines, expected %d", compact, rotary, 2*perStep)
		}

		for k, cycle := range swings(body) {
			for _, l := range cycle {
				if !strings.HasPrefix(l, "G01 F300.0 X") || strings.Contains(l, "A") {
					t.Errorf("compact %v: swing %d has line %q", compact, k+1, l)
					break
				}
			}
		}
	}
}

func TestOscillationLeadInAndClose(t *testing.T) {
	rotation := func(from, to float64) []string {
		seg := NewSegment()
		seg.Ramp(573, "A", 0, 0, from, to, SCurve(6))
		return seg.Lines()
	}

	cases := []struct {
		kind   OscillationType
		leadIn []string
		tail   []string
	}{
		{
			OscLinear,
			[]string{"G01 F180.0 X-3.500", "G01 F255.0 X-1.500", "G01 F300.0 X0.000"},
			[]string{
				"(Fechamento ate fim do revestimento)",
				"G01 F300.0 X15.000",
				"(Movimento lead-out)",
				"G01 F255.0 X12.000",
				"G01 F180.0 X15.000",
				"G00 Z45.000",
			},
		},
		{
			OscSquare,
			[]string{"G01 F300.0 X0.000"},
			[]string{
				"(Passo final - posicao de termino)",
				"G01 F300.0 X15.000",
				"G00 Z45.000",
			},
		},
	}

	for _, c := range cases {
		raw := shortOscillationRaw(c.kind)
		if angularFeed(t, raw) != "F573.0" {
			t.Fatalf("angular feed was %s, expected F573.0", angularFeed(t, raw))
		}
		body := through(layerBodies(generate(t, raw))[0])

		want := append([]string{
			"(--- CAMADA 1 ---)",
			"(SENTIDO: esquerda_direita)",
			"G00 Z45.000",
			"(--- PASSO AXIAL 1/2 ---)",
			"G00 X-5.000 A0.000",
			"G01 F600.0 Z15.000",
		}, rotation(0, 360)...)
		want = append(want, c.leadIn...)
		if got := body[:len(want)]; !reflect.DeepEqual(got, want) {
			t.Errorf("%s: layer opens with\n%q\nexpected\n%q", c.kind, got, want)
		}

		want = append([]string{"G00 X5.000", "(--- PASSO AXIAL 2/2 ---)"}, rotation(360, 720)...)
		want = append(want, c.tail...)
		if got := body[len(body)-len(want):]; !reflect.DeepEqual(got, want) {
			t.Errorf("%s: layer closes with\n%q\nexpected\n%q", c.kind, got, want)
		}
	}
}

func TestSquareSwingProfile(t *testing.T) {
	raw := shortOscillationRaw(OscSquare)
	for k, cycle := range swings(layerBodies(generate(t, raw))[0]) {
		// out and back, three S-curve fractions each
		if len(cycle) != 6 || cycle[2] != "G01 F300.0 X10.000" || cycle[5] != "G01 F300.0 X0.000" {
			t.Errorf("cycle %d is %q", k+1, cycle)
			break
		}
	}
}
