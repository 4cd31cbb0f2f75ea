// Command layout evaluates a layout script without the desktop app and
// prints the resulting design document and its price.
//
//	layout -script reef.lisp -out reef.json
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chazu/aquascape/pkg/catalog"
	"github.com/chazu/aquascape/pkg/config"
	"github.com/chazu/aquascape/pkg/document"
	"github.com/chazu/aquascape/pkg/engine"
	"github.com/chazu/aquascape/pkg/session"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("layout", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", config.Path, "Path to aquascape.yaml")
	scriptFile := fs.String("script", "", "Layout script to evaluate (default: first argument)")
	outFile := fs.String("out", "", "Write the design document here instead of stdout")
	quiet := fs.Bool("q", false, "Do not print the price summary")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *scriptFile == "" && fs.NArg() > 0 {
		*scriptFile = fs.Arg(0)
	}
	if *scriptFile == "" {
		fmt.Fprintln(stderr, "Error: no script given. Use -script or pass a file name.")
		return 2
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}
	cat, err := catalog.Load(cfg.Catalog)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading catalog: %v\n", err)
		return 1
	}
	source, err := os.ReadFile(*scriptFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading script: %v\n", err)
		return 1
	}

	doc, evalErrs, err := engine.NewEngine(cat, cfg.Script.Timeout).Evaluate(string(source))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintf(stderr, "%s:%d:%d: %s\n", *scriptFile, e.Line, e.Col, e.Message)
		}
		return 1
	}

	findings := document.Validate(*doc, cfg.Tank)
	for _, f := range findings {
		fmt.Fprintln(stderr, f.Error())
	}
	if document.HasErrors(findings) {
		return 1
	}

	// Round the script output through a session so ids, defaults and the
	// stored total match what the desktop app would save.
	s := session.New(session.Config{
		HistoryCap: cfg.HistoryCap,
		Bounds:     cfg.Tank,
		Camera:     cfg.Camera,
	})
	s.LoadState(*doc)

	data, err := document.Marshal(s.ExportState())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if *outFile != "" {
		if err := os.WriteFile(*outFile, data, 0o644); err != nil {
			fmt.Fprintf(stderr, "Error writing document: %v\n", err)
			return 1
		}
	} else {
		fmt.Fprintln(stdout, string(data))
	}

	if !*quiet {
		b := s.Breakdown()
		t := s.Bounds()
		fmt.Fprintf(stderr, "Tank: %gx%gx%g %s  $%.2f\n", t.Width, t.Height, t.Depth, t.Glass, b.Tank)
		fmt.Fprintf(stderr, "Items: %d  $%.2f\n", b.ItemCount, b.Items)
		fmt.Fprintf(stderr, "Total: $%.2f\n", b.Total)
	}
	return 0
}
