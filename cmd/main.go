// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"golang.org/x/term"

	"scrub-scan/internal/config"
	"scrub-scan/internal/detector"
	"scrub-scan/internal/detectors/nermodel"
	"scrub-scan/internal/engine"
	"scrub-scan/internal/formatters"
	_ "scrub-scan/internal/formatters/csv"
	_ "scrub-scan/internal/formatters/json"
	_ "scrub-scan/internal/formatters/text"
	"scrub-scan/internal/observability"
	"scrub-scan/internal/parallel"
	"scrub-scan/internal/preprocessors"
	"scrub-scan/internal/version"
)

func main() {
	inputFile := flag.String("file", "", "Path to the input file (PDF, image or text); omit to read stdin")
	inputText := flag.String("text", "", "Scan a literal text argument instead of a file")
	configFile := flag.String("config", "", "Path to configuration file (YAML)")
	outputFormat := flag.String("format", "", "Output format: text, json, csv (default: text)")
	outputFile := flag.String("output", "", "Path to output file (if not specified, output to stdout)")
	redact := flag.Bool("redact", false, "Emit the redacted text instead of a findings report")
	token := flag.String("token", "", "Replacement token for redaction (default from config)")
	verbose := flag.Bool("verbose", false, "Display detailed information for each finding")
	debug := flag.Bool("debug", false, "Enable debug logging of detector operations")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	showMatch := flag.Bool("show-match", false, "Display the actual matched text in findings")
	recursive := flag.Bool("recursive", false, "When -file is a directory, descend into subdirectories")
	workers := flag.Int("workers", 0, "Worker count for directory scans (default: number of CPUs)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	cfg := config.LoadConfigOrDefault(*configFile)

	level := observability.ObservabilityMetrics
	if *debug || cfg.Defaults.Debug {
		level = observability.ObservabilityDebug
	}
	observer := observability.NewStandardObserver(level, os.Stderr)

	eng := buildEngine(cfg, observer)

	out := os.Stdout
	if *outputFile != "" {
		f, err := os.Create(*outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot create output file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	format := *outputFormat
	if format == "" {
		format = cfg.Defaults.Format
	}
	options := formatters.FormatterOptions{
		Verbose:  *verbose || cfg.Defaults.Verbose,
		NoColor:  *noColor || cfg.Defaults.NoColor || !isTerminal(out),
		ShowText: *showMatch,
	}

	if *inputFile != "" && !*redact {
		if info, err := os.Stat(*inputFile); err == nil && info.IsDir() {
			total := scanDirectory(*inputFile, *recursive, *workers, format, options, cfg, eng, observer, out)
			if total > 0 {
				os.Exit(1)
			}
			return
		}
	}

	text, err := readInput(*inputFile, *inputText, cfg, observer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if *redact {
		opts := engine.RedactOptions{
			Token:         cfg.Redaction.Token,
			PreserveLastN: cfg.Redaction.PreserveLastN,
		}
		if *token != "" {
			opts.Token = *token
		}
		redacted, report := eng.Redact(ctx, text, opts)
		fmt.Fprintln(out, redacted)
		if *verbose {
			fmt.Fprintf(os.Stderr, "redacted %d entities\n", report.Summary.Total)
		}
		return
	}

	report := eng.Detect(ctx, text)

	rendered, err := formatters.Export(format, report, options)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintln(out, rendered)

	if report.Summary.Total > 0 {
		os.Exit(1)
	}
}

// buildEngine wires the optional detector capabilities the config enables.
// A capability that fails to construct is reported and skipped; scanning
// proceeds with whatever remains.
func buildEngine(cfg *config.Config, observer *observability.StandardObserver) *engine.Engine {
	var externals []detector.External

	if cfg.Detectors.NERModel.Enabled {
		model, err := nermodel.Load(nermodel.Config{
			BundleDir: cfg.Detectors.NERModel.BundleDir,
			SeqLen:    cfg.Detectors.NERModel.SeqLen,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: NER model unavailable, continuing without it: %v\n", err)
		} else {
			externals = append(externals, model)
		}
	}

	// The cloud detector needs a service client from the hosting
	// environment; the standalone CLI runs without one.

	opts := []engine.Option{engine.WithObserver(observer)}
	for _, ext := range externals {
		opts = append(opts, engine.WithExternal(ext))
	}
	return engine.New(opts...)
}

// scanDirectory scans every readable file under dir over a worker pool
// and renders a per-file report. Returns the total finding count.
func scanDirectory(dir string, recursive bool, workers int, format string, options formatters.FormatterOptions, cfg *config.Config, eng *engine.Engine, observer *observability.StandardObserver, out *os.File) int {
	var paths []string
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			return nil
		}
		if d.IsDir() {
			if !recursive && path != dir {
				return fs.SkipDir
			}
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if len(paths) == 0 {
		fmt.Fprintln(out, "No files to scan.")
		return 0
	}

	manager := preprocessors.DefaultManager(observer)
	pool := parallel.NewPool(workers, observer)
	results := pool.ScanFiles(context.Background(), paths, func(ctx context.Context, path string) (*detector.Report, error) {
		if !cfg.Defaults.EnablePreprocessors {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			return eng.Detect(ctx, string(data)), nil
		}
		content, err := manager.ProcessFile(path)
		if err != nil {
			return nil, err
		}
		if !content.Success {
			return nil, fmt.Errorf("no preprocessor could handle %s", path)
		}
		return eng.Detect(ctx, content.Text), nil
	})

	total := 0
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping %s: %v\n", r.Path, r.Err)
			continue
		}
		total += r.Report.Summary.Total
		if r.Report.Summary.Total == 0 && !options.Verbose {
			continue
		}
		rendered, err := formatters.Export(format, r.Report, options)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(out, "== %s ==\n%s\n", r.Path, rendered)
	}
	return total
}

// readInput resolves the scan text from a flag, a file or stdin.
func readInput(inputFile, inputText string, cfg *config.Config, observer *observability.StandardObserver) (string, error) {
	if inputText != "" {
		return inputText, nil
	}

	if inputFile != "" {
		if !cfg.Defaults.EnablePreprocessors {
			data, err := os.ReadFile(inputFile)
			if err != nil {
				return "", fmt.Errorf("cannot read %s: %w", inputFile, err)
			}
			return string(data), nil
		}
		manager := preprocessors.DefaultManager(observer)
		content, err := manager.ProcessFile(inputFile)
		if err != nil {
			return "", fmt.Errorf("cannot extract text from %s: %w", inputFile, err)
		}
		if !content.Success {
			return "", fmt.Errorf("no preprocessor could handle %s", inputFile)
		}
		return content.Text, nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("cannot read stdin: %w", err)
	}
	return string(data), nil
}

// isTerminal reports whether the writer is an interactive terminal, so
// piped output never carries color escapes.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func init() {
	// Respect NO_COLOR and dumb terminals regardless of flags.
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		color.NoColor = true
	}
}
