// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"scrub-scan/internal/detector"
	"scrub-scan/internal/formatters"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"high":   color.New(color.FgRed),
			"medium": color.New(color.FgYellow),
			"low":    color.New(color.FgGreen),
			"header": color.New(color.FgCyan, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with colors"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(report *detector.Report, options formatters.FormatterOptions) (string, error) {
	if report == nil {
		return "", fmt.Errorf("text formatter: nil report")
	}

	// Disable colors if requested
	if options.NoColor {
		color.NoColor = true
	}

	if report.Summary.Total == 0 {
		return "No entities found.", nil
	}

	var builder strings.Builder
	f.appendHeader(&builder, report)
	for _, entity := range report.Entities {
		f.appendEntity(&builder, entity, options)
	}
	return builder.String(), nil
}

func (f *Formatter) appendHeader(builder *strings.Builder, report *detector.Report) {
	header := f.colors["header"].Sprintf("Found %d entities in %d bytes", report.Summary.Total, report.Length)
	builder.WriteString(header)
	builder.WriteString("\n")

	var parts []string
	for entityType, count := range report.Summary.Counts {
		parts = append(parts, fmt.Sprintf("%s=%d", entityType, count))
	}
	if len(parts) > 0 {
		builder.WriteString("  ")
		builder.WriteString(strings.Join(parts, " "))
		builder.WriteString("\n")
	}
}

func (f *Formatter) appendEntity(builder *strings.Builder, entity detector.Entity, options formatters.FormatterOptions) {
	level := confidenceLevel(entity.Score)
	label := f.colors[level].Sprintf("[%s]", entity.Type)

	text := formatters.MaskText(entity.Text)
	if options.ShowText {
		text = entity.Text
	}

	if options.Verbose {
		fmt.Fprintf(builder, "%s score=%.2f span=%d:%d source=%s text=%s\n",
			label, entity.Score, entity.Start, entity.End, entity.Source, text)
		return
	}
	fmt.Fprintf(builder, "%s %.2f %s\n", label, entity.Score, text)
}

// confidenceLevel buckets a score the way the summary output groups
// findings.
func confidenceLevel(score float64) string {
	switch {
	case score >= 0.9:
		return "high"
	case score >= 0.6:
		return "medium"
	default:
		return "low"
	}
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
