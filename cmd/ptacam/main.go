package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/cheggaaa/pb"
	flag "github.com/spf13/pflag"

	"ptacam/preset"
	"ptacam/stock"
	"ptacam/toolpath"
	"ptacam/trace"
)

func main() {
	presetPath := flag.String("preset", "", "Read welding parameters from a preset file (.yaml, .yml, .json or .json5).")
	settings := flag.StringArray("set", nil, "Override one parameter as key=value, e.g. --set num_camadas=3. May be repeated.")
	compact := flag.Bool("compact", false, "Emit one line per logical move instead of S-curve subdivided moves.")

	outPath := flag.String("out", "", "Write the program to this file (e.g. part.tap) instead of stdout.")
	writeStockPath := flag.String("write-stock", "", "Write the as-coated stock envelope to an STL file.")
	stockSegments := flag.Int("stock-segments", 96, "Set the number of facets around the circumference of the stock envelope.")
	printParams := flag.Bool("print-params", false, "Print the canonical parameter set as YAML and exit.")

	rapidFeed := flag.Float64("rapid-feed-rate", 10000, "Set the feed rate assumed for rapid travel in cycle time estimation.")
	quiet := flag.Bool("quiet", false, "Suppress the process summary and progress.")

	cpuProfile := flag.String("cpuprofile", "", "Write CPU profile to file.")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ptacam [flags] [PRESETFILE]\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "Ptacam generates PTA hardfacing programs for rotary parts: spiral or oscillating deposition, one block per layer.\n")
	}

	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	args := flag.Args()
	if len(args) > 1 || (len(args) == 1 && *presetPath != "") {
		flag.Usage()
		os.Exit(1)
	}
	if len(args) == 1 {
		*presetPath = args[0]
	}

	raw := toolpath.Raw{}
	if *presetPath != "" {
		var err error
		raw, err = preset.Load(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}

	overrides := *settings
	if *compact {
		overrides = append(overrides, "compact_gcode=true")
	}
	raw, err := preset.ApplyOverrides(raw, overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if _, ok := raw["data_geracao"]; !ok {
		raw["data_geracao"] = time.Now()
	}

	params, err := toolpath.Decode(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if *printParams {
		out, err := preset.Marshal(params)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(out)
		return
	}

	job, err := toolpath.NewJob(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if !*quiet {
		printSummary(params)
	}

	var bar *pb.ProgressBar
	if !*quiet {
		bar = pb.New(params.Layers)
		bar.Output = os.Stderr
		bar.Prefix("Layers ")
		bar.Format("[=> ]")
		bar.Start()
		job.Progress = func(done, total int) {
			bar.Set(done)
		}
	}

	gcode := job.Gcode()

	if bar != nil {
		bar.Finish()
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(gcode), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	} else {
		os.Stdout.WriteString(gcode)
	}

	if *writeStockPath != "" {
		if err := stock.Write(*writeStockPath, params, *stockSegments); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		if !*quiet {
			fmt.Fprintf(os.Stderr, "Stock envelope written to %s (%.0f mm^3 deposited).\n", *writeStockPath, stock.Volume(params))
		}
	}

	if !*quiet {
		prog, err := trace.Read(strings.NewReader(gcode))
		if err != nil {
			fmt.Fprintf(os.Stderr, "trace: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "%d feed moves, %d rapids over %d layers.\n", prog.Feeds, prog.Rapids, prog.Layers)
		fmt.Fprintf(os.Stderr, "Controller cycle time estimate: %g secs\n", prog.CycleTime(*rapidFeed, 0))
	}
}

func printSummary(p toolpath.Params) {
	s, err := toolpath.Summarize(p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "summary: %v\n", err)
		return
	}

	fmt.Fprintf(os.Stderr, "%s, %d layer(s) on %g mm diameter over %g mm.\n", s.Strategy, p.Layers, p.Diameter, p.Length)
	fmt.Fprintf(os.Stderr, "Part speed is %.3f RPM (%.1f deg/min).\n", s.RPM, s.AngularFeed)
	if s.Strategy == toolpath.Spiral {
		fmt.Fprintf(os.Stderr, "Pitch is %.3f mm: %.2f turns, %.1f degrees of A per layer.\n", s.Pitch, s.Rotations, s.TotalA)
	} else {
		fmt.Fprintf(os.Stderr, "Axial step is %.3f mm: %d steps of %d cycles at %.3f degrees.\n", s.AxialStep, s.AxialSteps, s.Cycles, s.CycleAngle)
	}
	fmt.Fprintf(os.Stderr, "Deposition time estimate: %s (%.1f min per layer).\n", s.Clock(), s.LayerMinutes)
}
