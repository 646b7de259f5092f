package toolpath

import "strings"

const (
	timestampLayout = "02/01/2006 15:04:05"
	separator       = "(----------------------------------------)"
)

// Job generates the complete program for one parameter set.
type Job struct {
	params   Params
	strategy Strategy
	pattern  Pattern

	// Progress, if set, is called after each layer is generated.
	Progress func(done, total int)
}

func NewJob(p Params) (*Job, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	strategy, err := ResolveStrategy(p.Mode, p.OscillationType)
	if err != nil {
		return nil, err
	}
	pattern, err := NewPattern(p)
	if err != nil {
		return nil, err
	}

	return &Job{
		params:   p,
		strategy: strategy,
		pattern:  pattern,
	}, nil
}

// Generate decodes raw, validates it and returns the program lines.
func Generate(raw Raw) ([]string, error) {
	p, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	j, err := NewJob(p)
	if err != nil {
		return nil, err
	}
	return j.Lines(), nil
}

// Lines returns the header, one segment per layer, then the footer.
func (j *Job) Lines() []string {
	p := j.params

	seg := j.Preamble()
	for layer := 0; layer < p.Layers; layer++ {
		body := j.pattern.Segment(layer, p.LayerDiameter(layer))
		seg.AppendSegment(&body)
		if j.Progress != nil {
			j.Progress(layer+1, p.Layers)
		}
	}
	post := j.Postamble()
	seg.AppendSegment(&post)

	return seg.Lines()
}

// Gcode is Lines joined with newlines, with a trailing newline.
func (j *Job) Gcode() string {
	return strings.Join(j.Lines(), "\n") + "\n"
}

func (j *Job) Preamble() Segment {
	p := j.params
	seg := NewSegment()

	seg.Append("%")
	seg.Comment("G-CODE GERADO PELO PTACAM")
	if p.Timestamp.IsZero() {
		seg.Comment("Data: N/A")
	} else {
		seg.Comment("Data: %s", p.Timestamp.Format(timestampLayout))
	}
	seg.Append(separator)

	name := p.Name
	if name == "" {
		name = "N/A"
	}
	seg.Comment(" PROCEDIMENTO: %s ", name)
	seg.Comment(" MODO DE SOLDAGEM: %s ", strings.ToUpper(string(p.Mode)))
	seg.Comment(" DIAMETRO: %.3f mm", p.Diameter)
	seg.Comment(" COMPRIMENTO: %.3f mm ", p.Length)
	seg.Comment(" SENTIDO: %s ", p.Direction)
	seg.Comment(" SENTIDO ROTACAO: %s ", strings.ToUpper(string(p.Rotation)))
	seg.Comment(" CAMADAS: %d de %.2fmm ", p.Layers, p.LayerThickness)

	if j.strategy != Spiral {
		seg.Comment(" OSCILACAO: %s ", oscillationLabel(j.strategy))
		seg.Comment("   - COMPRIMENTO OSC.: %.2f mm", p.OscLength)
		seg.Comment("   - DESLOC. ANGULAR: %.1f%% Larg. Cordao", p.AngularStepPct)
	}

	seg.Comment(" LEAD-IN: %.2f mm, LEAD-OUT: %.2f mm ", p.LeadIn, p.LeadOut)
	seg.Append(separator)
	seg.Append("G21 G90 G94")
	seg.Append("")

	seg.Comment("PREPARO DA TOCHA")
	if p.TorchRetract {
		seg.Append("G53 G0 Z0 Y0 (Ir ao Z&Y=0 maquina)")
	}
	seg.Append("M101 (LIGAR Output#1 - tocha)")
	seg.Append("M0 (Confirme e pressione Cycle Start)")
	seg.Append("G90 G0 Y0 (Ir ao Y=0 peca)")
	seg.Append("")

	return seg
}

func (j *Job) Postamble() Segment {
	seg := NewSegment()
	seg.Append("")
	seg.Comment("RETORNO AO ZERO MAQUINA")
	seg.Append("G90")
	seg.Append("G53 G0 Z0 Y0 (Ir ao Z&Y=0 maquina)")
	seg.Append("M102 (DESLIGAR Output#1 - tocha)")
	seg.Append("G53 G0 X0 Y0 (Ir ao X&Y=0 maquina)")
	seg.Append("M30 (FIM DO PROGRAMA)")
	seg.Append("%")
	return seg
}

func oscillationLabel(s Strategy) string {
	switch s {
	case SquareOscillation:
		return "QUADRADA"
	case ContinuousSquareOscillation:
		return "QUADRADA CONTINUA"
	}
	return "LINEAR"
}
