// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Command index builds and queries the local embedding index. Documents
// are run through the redaction engine before indexing, so the stored
// chunks never contain raw identifiers.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"scrub-scan/internal/config"
	"scrub-scan/internal/embeddings"
	"scrub-scan/internal/engine"
	"scrub-scan/internal/observability"
	"scrub-scan/internal/preprocessors"
	"scrub-scan/internal/security"
	"scrub-scan/internal/vectorindex"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = runBuild(os.Args[2:])
	case "query":
		err = runQuery(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  index build -out <base> [-chunk-chars N] [-no-redact] <file>...")
	fmt.Fprintln(os.Stderr, "  index query -index <base> -query <text> [-k N]")
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	out := fs.String("out", "", "Base path for the index artifacts (required)")
	configFile := fs.String("config", "", "Path to configuration file (YAML)")
	chunkChars := fs.Int("chunk-chars", 0, "Chunk size in characters for long documents (default from config)")
	noRedact := fs.Bool("no-redact", false, "Index raw text without redacting detected entities first")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("-out is required")
	}
	files := fs.Args()
	if len(files) == 0 {
		return fmt.Errorf("no input files given")
	}

	cfg := config.LoadConfigOrDefault(*configFile)
	chunk := *chunkChars
	if chunk == 0 {
		chunk = cfg.Index.ChunkChars
	}

	observer := observability.NewStandardObserver(observability.ObservabilityMetrics, os.Stderr)
	manager := preprocessors.DefaultManager(observer)
	eng := engine.New(engine.WithObserver(observer))
	embedder := embeddings.New(cfg.Embeddings.Dimension, embeddings.WithObserver(observer))

	idx, err := vectorindex.New(embedder, vectorindex.WithObserver(observer))
	if err != nil {
		return err
	}

	ctx := context.Background()
	var docs []vectorindex.Document
	for _, path := range files {
		content, err := manager.ProcessFile(path)
		if err != nil || !content.Success {
			fmt.Fprintf(os.Stderr, "Warning: skipping %s: %v\n", path, err)
			continue
		}

		// Hold the extracted text in a scrubbing wrapper; once the
		// redacted form exists the raw value is cleared.
		raw := security.NewSecureString(content.Text)
		content.Text = ""

		text := raw.String()
		redactedCount := 0
		if !*noRedact {
			redacted, rep := eng.Redact(ctx, text, engine.RedactOptions{
				Token:         cfg.Redaction.Token,
				PreserveLastN: cfg.Redaction.PreserveLastN,
			})
			text = redacted
			redactedCount = rep.Summary.Total
		}
		raw.Clear()

		docs = append(docs, vectorindex.Document{
			ID:   filepath.Base(path),
			Text: text,
			Meta: map[string]any{
				"path":             path,
				"processor":        content.ProcessorType,
				"redacted_spans":   redactedCount,
				"source_char_size": content.CharCount,
			},
		})
	}
	if len(docs) == 0 {
		return fmt.Errorf("no readable input files")
	}

	ids, err := idx.Add(ctx, docs, chunk)
	if err != nil {
		return err
	}
	if err := idx.Save(*out); err != nil {
		return err
	}

	fmt.Printf("Indexed %d chunks from %d files at %s\n", len(ids), len(docs), *out)
	return nil
}

func runQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	base := fs.String("index", "", "Base path of the index artifacts (required)")
	query := fs.String("query", "", "Query text (required)")
	configFile := fs.String("config", "", "Path to configuration file (YAML)")
	k := fs.Int("k", 5, "Number of results")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *base == "" || *query == "" {
		return fmt.Errorf("-index and -query are required")
	}

	cfg := config.LoadConfigOrDefault(*configFile)
	embedder := embeddings.New(cfg.Embeddings.Dimension)

	idx, err := vectorindex.Load(*base, embedder)
	if err != nil {
		return err
	}

	results := idx.NearestK(context.Background(), *query, *k)
	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%2d. %-30s score=%.4f meta=%v\n", i+1, r.ID, r.Score, r.Meta)
	}
	return nil
}
