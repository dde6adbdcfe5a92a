// Command stitchwork evaluates a pattern script, assembles it and writes the
// result as JSON, SVG or DXF.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chazu/stitchwork/pkg/config"
	"github.com/chazu/stitchwork/pkg/export"
	"github.com/chazu/stitchwork/pkg/pattern"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("stitchwork", flag.ContinueOnError)
	fs.SetOutput(stderr)
	designPath := fs.String("design", "", "Path to the pattern script")
	configPath := fs.String("config", "", "Path to a YAML configuration file")
	jsonPath := fs.String("out", "", "Write the assembled pattern as JSON to this path (- for stdout)")
	svgPath := fs.String("svg", "", "Write the flat panel layout as SVG to this path")
	dxfPath := fs.String("dxf", "", "Write the flat panel layout as DXF to this path")
	report := fs.Bool("report", false, "Print the evaluation report as JSON instead of exporting")
	verbose := fs.Bool("v", false, "Log debug output")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *designPath == "" {
		fmt.Fprintln(stderr, "Usage: stitchwork -design <script> [-config cfg.yaml] [-out pattern.json] [-svg sheet.svg] [-dxf sheet.dxf]")
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	pattern.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
	log := pattern.Logger()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return 1
		}
	}

	source, err := os.ReadFile(*designPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to read design: %v\n", err)
		return 1
	}

	result := NewAppWith(cfg).EvaluateContext(context.Background(), string(source))

	if *report {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(stderr, "Failed to write report: %v\n", err)
			return 1
		}
		if len(result.Errors) > 0 {
			return 1
		}
		return 0
	}

	for _, w := range result.Warnings {
		log.Warn(w.Message, "where", w.Where)
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			if e.Line > 0 {
				fmt.Fprintf(stderr, "%s:%d: %s\n", *designPath, e.Line, e.Message)
			} else {
				fmt.Fprintf(stderr, "%s: %s\n", *designPath, e.Message)
			}
		}
		return 1
	}
	if result.Spec == nil {
		fmt.Fprintf(stderr, "%s: defines no panels\n", *designPath)
		return 1
	}
	log.Info("assembled pattern",
		"root", result.Root, "panels", len(result.Spec.Panels), "stitches", len(result.Spec.Stitches))

	if err := write(result.Spec, *jsonPath, *svgPath, *dxfPath, stdout); err != nil {
		fmt.Fprintf(stderr, "Export failed: %v\n", err)
		return 1
	}
	return 0
}

// write exports s to every requested destination. With none requested the
// JSON goes to stdout.
func write(s *pattern.Spec, jsonPath, svgPath, dxfPath string, stdout io.Writer) error {
	if jsonPath == "" && svgPath == "" && dxfPath == "" {
		jsonPath = "-"
	}
	switch jsonPath {
	case "":
	case "-":
		if err := export.WriteJSON(stdout, s); err != nil {
			return err
		}
	default:
		if err := export.SaveJSON(jsonPath, s); err != nil {
			return err
		}
	}
	opts := export.DefaultSVGOptions()
	if svgPath != "" {
		if err := export.SaveSVG(svgPath, s, opts); err != nil {
			return err
		}
	}
	if dxfPath != "" {
		if err := export.SaveDXF(dxfPath, s, opts.Margin, opts.Tolerance); err != nil {
			return err
		}
	}
	return nil
}
