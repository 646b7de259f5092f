package toolpath

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidParameters is returned when a parameter set is missing a
	// required value or violates one of its bounds.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrUnknownMode is returned for a welding_mode that has no pattern.
	ErrUnknownMode = errors.New("unknown welding mode")
)

// Raw is a loosely typed parameter mapping, as read from a preset file or
// assembled by a caller. Keys use the canonical (or legacy) parameter names.
type Raw map[string]interface{}

type Mode string

const (
	ModeSpiral       Mode = "espiral"
	ModeOscillation  Mode = "oscilacao"
	ModeLegacyLinear Mode = "oscilacao_linear"
	ModeLegacySquare Mode = "oscilacao_quadrada"
)

const (
	defaultMode        = ModeSpiral
	defaultSCurveSteps = 6
	defaultGranX       = 0.5
	defaultGranA       = 1.0

	// oscillation parameter sets needing more axial steps than this are rejected
	maxAxialSteps = 100000

	epsilon         = 1e-6
	safetyClearance = 30.0
)

type OscillationType string

const (
	OscLinear           OscillationType = "linear"
	OscSquare           OscillationType = "quadrada"
	OscContinuousSquare OscillationType = "quadrada_continua"
)

type Direction string

const (
	LeftToRight Direction = "esquerda_direita"
	RightToLeft Direction = "direita_esquerda"
)

type Rotation string

const (
	Clockwise        Rotation = "horaria"
	CounterClockwise Rotation = "antihoraria"
)

// Sign is +1 for clockwise rotation and -1 otherwise.
func (r Rotation) Sign() float64 {
	if r == Clockwise {
		return 1
	}
	return -1
}

// Params is a validated, canonical welding parameter set. It is built once
// per generation request and never mutated by the engine.
type Params struct {
	Name            string          `yaml:"nome_procedimento,omitempty"`
	Mode            Mode            `yaml:"welding_mode"`
	OscillationType OscillationType `yaml:"oscillation_type,omitempty"`

	Diameter  float64 `yaml:"diametro"`
	Length    float64 `yaml:"comprimento_revestir"`
	BeadWidth float64 `yaml:"largura_cordao"`
	Overlap   float64 `yaml:"sobreposicao"`
	Standoff  float64 `yaml:"afastamento_tocha"`
	LeadIn    float64 `yaml:"lead_in"`
	LeadOut   float64 `yaml:"lead_out"`

	Layers         int     `yaml:"num_camadas"`
	LayerThickness float64 `yaml:"espessura_camada"`

	DepositionSpeed float64   `yaml:"velocidade_de_deposicao"`
	ASpeed          float64   `yaml:"velocidade_a_mm_min"`
	Direction       Direction `yaml:"direcao_soldagem"`
	Rotation        Rotation  `yaml:"sentido_rotacao"`

	OscLength      float64 `yaml:"oscilacao_comprimento,omitempty"`
	AngularStepPct float64 `yaml:"deslocamento_angular_perc,omitempty"`
	OscSpeed       float64 `yaml:"velocidade_oscilacao_mm_min,omitempty"`
	GranX          float64 `yaml:"osc_test_gran_x,omitempty"`
	GranA          float64 `yaml:"osc_test_gran_a,omitempty"`

	SCurveSteps  int       `yaml:"n_scurve_steps"`
	Compact      bool      `yaml:"compact_gcode"`
	TorchRetract bool      `yaml:"torch_retract_on_ignite"`
	Timestamp    time.Time `yaml:"data_geracao,omitempty"`
}

// Normalize reconciles legacy and alternate parameter names into the
// canonical set. It returns a new mapping and leaves raw untouched; calling
// it on an already normalized mapping returns an equal mapping.
func Normalize(raw Raw) Raw {
	out := make(Raw, len(raw)+3)
	for k, v := range raw {
		out[k] = v
	}

	if _, ok := out["velocidade_de_deposicao"]; !ok {
		if v, ok := out["velocidade_soldagem"]; ok {
			out["velocidade_de_deposicao"] = v
		} else if v, ok := out["taxa_de_deposicao"]; ok {
			out["velocidade_de_deposicao"] = v
		}
	}
	if v, ok := out["velocidade_de_deposicao"]; ok {
		out["taxa_de_deposicao"] = v
		if _, ok := out["velocidade_a_mm_min"]; !ok {
			out["velocidade_a_mm_min"] = v
		}
	}

	return out
}

// Decode normalizes raw and converts it into Params, filling defaults for
// optional values. It does not check bounds; see Validate.
func Decode(raw Raw) (Params, error) {
	if raw == nil {
		return Params{}, fmt.Errorf("%w: no parameters", ErrInvalidParameters)
	}
	d := decoder{raw: Normalize(raw)}

	p := Params{
		Name:            d.str("nome_procedimento", ""),
		Mode:            Mode(d.str("welding_mode", string(defaultMode))),
		OscillationType: OscillationType(d.str("oscillation_type", "")),

		Diameter:  d.required("diametro"),
		Length:    d.required("comprimento_revestir"),
		BeadWidth: d.required("largura_cordao"),
		Overlap:   d.required("sobreposicao"),
		Standoff:  d.number("afastamento_tocha", 0),
		LeadIn:    d.number("lead_in", 0),
		LeadOut:   d.number("lead_out", 0),

		Layers:         d.integer("num_camadas", 1),
		LayerThickness: d.number("espessura_camada", 0),

		DepositionSpeed: d.required("velocidade_de_deposicao"),
		Direction:       Direction(d.str("direcao_soldagem", string(LeftToRight))),
		Rotation:        Rotation(d.str("sentido_rotacao", string(Clockwise))),

		OscLength:      d.number("oscilacao_comprimento", 0),
		AngularStepPct: d.number("deslocamento_angular_perc", 0),
		OscSpeed:       d.number("velocidade_oscilacao_mm_min", 0),
		GranX:          d.number("osc_test_gran_x", defaultGranX),
		GranA:          d.number("osc_test_gran_a", defaultGranA),

		SCurveSteps:  d.integer("n_scurve_steps", defaultSCurveSteps),
		Compact:      d.boolean("compact_gcode", false),
		TorchRetract: d.boolean("torch_retract_on_ignite", true),
		Timestamp:    d.timestamp("data_geracao"),
	}
	p.ASpeed = d.number("velocidade_a_mm_min", p.DepositionSpeed)

	if p.GranX <= 0 {
		p.GranX = defaultGranX
	}
	if p.GranA <= 0 {
		p.GranA = defaultGranA
	}
	if p.SCurveSteps <= 0 {
		p.SCurveSteps = defaultSCurveSteps
	}

	if d.err != nil {
		return Params{}, d.err
	}
	return p, nil
}

// Validate checks the invariants every generator relies on.
func (p Params) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", ErrInvalidParameters, fmt.Sprintf(format, args...))
	}

	if !(p.BeadWidth > 0) {
		return invalid("largura_cordao must be positive, got %g", p.BeadWidth)
	}
	if !(p.DepositionSpeed > 0) {
		return invalid("velocidade_de_deposicao must be positive, got %g", p.DepositionSpeed)
	}
	if !(p.Overlap >= 0 && p.Overlap < 100) {
		return invalid("sobreposicao must be in [0,100), got %g", p.Overlap)
	}
	if p.Layers < 1 {
		return invalid("num_camadas must be at least 1, got %d", p.Layers)
	}
	if p.Direction != LeftToRight && p.Direction != RightToLeft {
		return invalid("unrecognised direcao_soldagem: %s", p.Direction)
	}
	if p.Rotation != Clockwise && p.Rotation != CounterClockwise {
		return invalid("unrecognised sentido_rotacao: %s", p.Rotation)
	}

	if p.Mode.isOscillation() {
		if !(p.OscLength > 0) {
			return invalid("oscilacao_comprimento must be positive, got %g", p.OscLength)
		}
		if !(p.AngularStepPct > 0 && p.AngularStepPct <= 100) {
			return invalid("deslocamento_angular_perc must be in (0,100], got %g", p.AngularStepPct)
		}
		if n := axialStepCount(p); n > maxAxialSteps {
			return invalid("axial step count limit exceeded: a %g mm step over %g mm needs more than %d steps", axialStep(p), p.Length, maxAxialSteps)
		}
	}

	return nil
}

func (m Mode) isOscillation() bool {
	return m == ModeOscillation || m == ModeLegacyLinear || m == ModeLegacySquare
}

// LayerDiameter is the working diameter of layer i (0-indexed).
func (p Params) LayerDiameter(i int) float64 {
	return p.Diameter + float64(i)*2*p.LayerThickness
}

// Leads returns the start and end X positions of a pass, including lead-in
// and lead-out travel, for the configured direction. Lead-in always comes
// before the coated length, so right to left starts at L+lead_in.
func (p Params) Leads() (start, end float64) {
	if p.Direction == RightToLeft {
		return p.Length + p.LeadIn, -p.LeadOut
	}
	return -p.LeadIn, p.Length + p.LeadOut
}

// linearFeed is the oscillation X feed; it falls back to the deposition speed.
func (p Params) linearFeed() float64 {
	if p.OscSpeed > 0 {
		return p.OscSpeed
	}
	return p.DepositionSpeed
}

type decoder struct {
	raw Raw
	err error
}

func (d *decoder) fail(key string, v interface{}) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: %s has unusable value %v (%T)", ErrInvalidParameters, key, v, v)
	}
}

func (d *decoder) required(key string) float64 {
	v, ok := d.raw[key]
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		ok = false
	}
	if !ok || v == nil {
		if d.err == nil {
			d.err = fmt.Errorf("%w: missing %s", ErrInvalidParameters, key)
		}
		return 0
	}
	return d.number(key, 0)
}

func (d *decoder) number(key string, def float64) float64 {
	v, ok := d.raw[key]
	if !ok || v == nil {
		return def
	}
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			d.fail(key, v)
		}
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case uint64:
		return float64(n)
	case string:
		s := strings.TrimSpace(strings.Replace(n, ",", ".", 1))
		if s == "" {
			return def
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			d.fail(key, v)
			return def
		}
		return f
	}
	d.fail(key, v)
	return def
}

func (d *decoder) integer(key string, def int) int {
	if _, ok := d.raw[key]; !ok {
		return def
	}
	f := d.number(key, float64(def))
	if f != math.Trunc(f) {
		d.fail(key, d.raw[key])
	}
	return int(f)
}

func (d *decoder) boolean(key string, def bool) bool {
	v, ok := d.raw[key]
	if !ok || v == nil {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			d.fail(key, v)
			return def
		}
		return parsed
	case int:
		return b != 0
	case float64:
		return b != 0
	}
	d.fail(key, v)
	return def
}

func (d *decoder) str(key string, def string) string {
	v, ok := d.raw[key]
	if !ok || v == nil {
		return def
	}
	switch s := v.(type) {
	case string:
		if s == "" {
			return def
		}
		return s
	case int, int64, float64, bool:
		// YAML and --set turn labels like 42 into numbers
		return fmt.Sprint(s)
	}
	d.fail(key, v)
	return def
}

func (d *decoder) timestamp(key string) time.Time {
	v, ok := d.raw[key]
	if !ok || v == nil {
		return time.Time{}
	}
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			d.fail(key, v)
		}
		return parsed
	}
	d.fail(key, v)
	return time.Time{}
}
