package toolpath

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
)

func TestNormalizeLegacySpeed(t *testing.T) {
	raw := Raw{"velocidade_soldagem": 120.0}
	n := Normalize(raw)

	for _, k := range []string{"velocidade_de_deposicao", "taxa_de_deposicao", "velocidade_a_mm_min"} {
		if n[k] != 120.0 {
			t.Errorf("%s was %v, expected 120", k, n[k])
		}
	}

	if _, ok := raw["velocidade_de_deposicao"]; ok {
		t.Errorf("Normalize modified its input")
	}
}

func TestNormalizeTaxa(t *testing.T) {
	n := Normalize(Raw{"taxa_de_deposicao": 80})
	if n["velocidade_de_deposicao"] != 80 {
		t.Errorf("velocidade_de_deposicao was %v, expected 80", n["velocidade_de_deposicao"])
	}
}

func TestNormalizeSyncsTaxa(t *testing.T) {
	n := Normalize(Raw{"velocidade_de_deposicao": 100, "taxa_de_deposicao": 200})
	if n["taxa_de_deposicao"] != 100 || n["velocidade_de_deposicao"] != 100 {
		t.Errorf("speeds were %v/%v, expected both 100", n["velocidade_de_deposicao"], n["taxa_de_deposicao"])
	}
}

func TestDecodeNumericName(t *testing.T) {
	raw := Raw{"nome_procedimento": 42, "diametro": 100, "comprimento_revestir": 50, "largura_cordao": 3, "sobreposicao": 30, "velocidade_de_deposicao": 100}
	p, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Name != "42" {
		t.Errorf("name was %q, expected 42", p.Name)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	once := Normalize(Raw{"velocidade_soldagem": 100.0, "diametro": 50.0})
	twice := Normalize(once)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second Normalize changed the mapping: %v -> %v", once, twice)
	}
}

func TestDecodeDefaults(t *testing.T) {
	p, err := Decode(Raw{
		"diametro":                100,
		"comprimento_revestir":    "50",
		"largura_cordao":          "3,5",
		"sobreposicao":            30,
		"velocidade_de_deposicao": 100,
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if p.Mode != ModeSpiral {
		t.Errorf("mode was %q, expected %q", p.Mode, ModeSpiral)
	}
	if p.BeadWidth != 3.5 {
		t.Errorf("bead width was %v, expected 3.5", p.BeadWidth)
	}
	if p.Length != 50 {
		t.Errorf("length was %v, expected 50", p.Length)
	}
	if p.Layers != 1 || p.SCurveSteps != defaultSCurveSteps {
		t.Errorf("layers/scurve steps were %d/%d, expected 1/%d", p.Layers, p.SCurveSteps, defaultSCurveSteps)
	}
	if p.ASpeed != 100 {
		t.Errorf("A speed was %v, expected 100", p.ASpeed)
	}
	if !p.TorchRetract || p.Compact {
		t.Errorf("torch retract/compact were %v/%v, expected true/false", p.TorchRetract, p.Compact)
	}
	if p.GranX != defaultGranX || p.GranA != defaultGranA {
		t.Errorf("granularity was %v/%v", p.GranX, p.GranA)
	}
	if p.Direction != LeftToRight || p.Rotation != Clockwise {
		t.Errorf("direction/rotation were %s/%s", p.Direction, p.Rotation)
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := map[string]Raw{
		"missing diameter": {"comprimento_revestir": 50, "largura_cordao": 3, "sobreposicao": 30, "velocidade_de_deposicao": 100},
		"bad number":       {"diametro": "abc", "comprimento_revestir": 50, "largura_cordao": 3, "sobreposicao": 30, "velocidade_de_deposicao": 100},
		"bad bool":         {"diametro": 100, "comprimento_revestir": 50, "largura_cordao": 3, "sobreposicao": 30, "velocidade_de_deposicao": 100, "compact_gcode": "maybe"},
		"fractional int":   {"diametro": 100, "comprimento_revestir": 50, "largura_cordao": 3, "sobreposicao": 30, "velocidade_de_deposicao": 100, "num_camadas": 1.5},
		"empty diameter":   {"diametro": "", "comprimento_revestir": 50, "largura_cordao": 3, "sobreposicao": 30, "velocidade_de_deposicao": 100},
		"blank bead":       {"diametro": 100, "comprimento_revestir": 50, "largura_cordao": "  ", "sobreposicao": 30, "velocidade_de_deposicao": 100},
		"nil overlap":      {"diametro": 100, "comprimento_revestir": 50, "largura_cordao": 3, "sobreposicao": nil, "velocidade_de_deposicao": 100},
		"NaN diameter":     {"diametro": "NaN", "comprimento_revestir": 50, "largura_cordao": 3, "sobreposicao": 30, "velocidade_de_deposicao": 100},
		"infinite length":  {"diametro": 100, "comprimento_revestir": "+Inf", "largura_cordao": 3, "sobreposicao": 30, "velocidade_de_deposicao": 100},
		"infinite float":   {"diametro": 100, "comprimento_revestir": math.Inf(1), "largura_cordao": 3, "sobreposicao": 30, "velocidade_de_deposicao": 100},
	}

	for name, raw := range cases {
		if _, err := Decode(raw); !errors.Is(err, ErrInvalidParameters) {
			t.Errorf("%s: got error %v, expected ErrInvalidParameters", name, err)
		}
	}

	if _, err := Decode(nil); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("nil raw: got error %v, expected ErrInvalidParameters", err)
	}
}

func TestValidate(t *testing.T) {
	base, err := Decode(oscillationRaw())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("base parameters rejected: %v", err)
	}

	cases := map[string]func(p *Params){
		"zero bead":        func(p *Params) { p.BeadWidth = 0 },
		"zero speed":       func(p *Params) { p.DepositionSpeed = 0 },
		"overlap 100":      func(p *Params) { p.Overlap = 100 },
		"negative overlap": func(p *Params) { p.Overlap = -1 },
		"no layers":        func(p *Params) { p.Layers = 0 },
		"bad direction":    func(p *Params) { p.Direction = "cima" },
		"bad rotation":     func(p *Params) { p.Rotation = "talvez" },
		"zero stroke":      func(p *Params) { p.OscLength = 0 },
		"zero angular pct": func(p *Params) { p.AngularStepPct = 0 },
		"angular pct 101":  func(p *Params) { p.AngularStepPct = 101 },
		"zero overlap osc": func(p *Params) { p.Overlap = 0 },
	}

	for name, mutate := range cases {
		p := base
		mutate(&p)
		if err := p.Validate(); !errors.Is(err, ErrInvalidParameters) {
			t.Errorf("%s: got error %v, expected ErrInvalidParameters", name, err)
		}
	}

	p := base
	p.Overlap = 0
	if err := p.Validate(); err == nil || !strings.Contains(err.Error(), "axial step count limit") {
		t.Errorf("zero overlap in oscillation gave error %v, expected the step count limit", err)
	}
}

func TestLeads(t *testing.T) {
	p := Params{Length: 50, LeadIn: 5, LeadOut: 3, Direction: LeftToRight}
	checkLeads(t, p, -5, 53)

	p.Direction = RightToLeft
	checkLeads(t, p, 55, -3)
}

func checkLeads(t *testing.T, p Params, wantStart, wantEnd float64) {
	start, end := p.Leads()
	if start != wantStart || end != wantEnd {
		t.Errorf("%s leads were %v..%v, expected %v..%v", p.Direction, start, end, wantStart, wantEnd)
	}
}

func TestLayerDiameter(t *testing.T) {
	p := Params{Diameter: 100, LayerThickness: 2}
	for i, want := range []float64{100, 104, 108} {
		if got := p.LayerDiameter(i); got != want {
			t.Errorf("layer %d diameter was %v, expected %v", i, got, want)
		}
	}
}
