// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"strings"
	"testing"

	"scrub-scan/internal/detector"
	"scrub-scan/internal/formatters"
)

func sampleReport() *detector.Report {
	text := "reach jane@example.com or 555-123-4567"
	return detector.NewReport(text, []detector.Entity{
		{Type: "EMAIL", Score: 0.95, Start: 6, End: 22, Text: "jane@example.com", Source: detector.SourceRegex},
		{Type: "PHONE", Score: 0.70, Start: 26, End: 38, Text: "555-123-4567", Source: detector.SourceRegex},
	})
}

func TestFormat_Summary(t *testing.T) {
	out, err := NewFormatter().Format(sampleReport(), formatters.FormatterOptions{NoColor: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Found 2 entities") {
		t.Errorf("expected summary header, got %q", out)
	}
	if !strings.Contains(out, "[EMAIL]") || !strings.Contains(out, "[PHONE]") {
		t.Errorf("expected entity lines, got %q", out)
	}
	if strings.Contains(out, "jane@example.com") {
		t.Error("default output leaks detected text")
	}
}

func TestFormat_VerboseIncludesSpans(t *testing.T) {
	out, err := NewFormatter().Format(sampleReport(), formatters.FormatterOptions{NoColor: true, Verbose: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "span=6:22") || !strings.Contains(out, "source=regex") {
		t.Errorf("expected span and source in verbose output, got %q", out)
	}
}

func TestFormat_NoEntities(t *testing.T) {
	out, err := NewFormatter().Format(detector.NewReport("clean text", nil), formatters.FormatterOptions{NoColor: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "No entities found." {
		t.Errorf("got %q", out)
	}
}

func TestConfidenceLevel(t *testing.T) {
	if confidenceLevel(0.98) != "high" || confidenceLevel(0.70) != "medium" || confidenceLevel(0.35) != "low" {
		t.Error("unexpected confidence bucketing")
	}
}
