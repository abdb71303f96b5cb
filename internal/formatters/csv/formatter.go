// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"scrub-scan/internal/detector"
	"scrub-scan/internal/formatters"
)

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values for spreadsheet analysis"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(report *detector.Report, options formatters.FormatterOptions) (string, error) {
	if report == nil {
		return "", fmt.Errorf("csv formatter: nil report")
	}

	var builder strings.Builder
	w := csv.NewWriter(&builder)

	if err := w.Write([]string{"type", "score", "start", "end", "source", "text"}); err != nil {
		return "", fmt.Errorf("csv formatter: %w", err)
	}
	for _, entity := range report.Entities {
		text := formatters.MaskText(entity.Text)
		if options.ShowText {
			text = entity.Text
		}
		record := []string{
			entity.Type,
			strconv.FormatFloat(entity.Score, 'f', 2, 64),
			strconv.Itoa(entity.Start),
			strconv.Itoa(entity.End),
			entity.Source,
			text,
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("csv formatter: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("csv formatter: %w", err)
	}
	return builder.String(), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
