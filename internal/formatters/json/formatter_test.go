// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"encoding/json"
	"strings"
	"testing"

	"scrub-scan/internal/detector"
	"scrub-scan/internal/formatters"
)

func sampleReport() *detector.Report {
	text := "reach jane@example.com"
	return detector.NewReport(text, []detector.Entity{
		{Type: "EMAIL", Score: 0.95, Start: 6, End: 22, Text: "jane@example.com", Source: detector.SourceRegex},
	})
}

func TestFormat_MasksByDefault(t *testing.T) {
	out, err := NewFormatter().Format(sampleReport(), formatters.FormatterOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "jane@example.com") {
		t.Error("default output leaks detected text")
	}

	var decoded detector.Report
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Summary.Total != 1 {
		t.Errorf("expected summary to survive, got %+v", decoded.Summary)
	}
	if decoded.Text != "" {
		t.Error("expected source text to be dropped by default")
	}
}

func TestFormat_ShowTextKeepsValues(t *testing.T) {
	out, err := NewFormatter().Format(sampleReport(), formatters.FormatterOptions{ShowText: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "jane@example.com") {
		t.Error("expected detected text with ShowText")
	}
}

func TestFormat_VerboseIsIndented(t *testing.T) {
	out, err := NewFormatter().Format(sampleReport(), formatters.FormatterOptions{Verbose: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "\n  ") {
		t.Error("expected indented JSON in verbose mode")
	}
}

func TestFormat_NilReport(t *testing.T) {
	if _, err := NewFormatter().Format(nil, formatters.FormatterOptions{}); err == nil {
		t.Error("expected error for nil report")
	}
}

func TestFormat_DoesNotMutateReport(t *testing.T) {
	report := sampleReport()
	if _, err := NewFormatter().Format(report, formatters.FormatterOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Entities[0].Text != "jane@example.com" {
		t.Error("formatter mutated the caller's report")
	}
}
