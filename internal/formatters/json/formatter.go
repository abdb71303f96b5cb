// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"encoding/json"
	"fmt"

	"scrub-scan/internal/detector"
	"scrub-scan/internal/formatters"
)

// Formatter implements JSON output formatting
type Formatter struct{}

// NewFormatter creates a new JSON formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "json"
}

func (f *Formatter) Description() string {
	return "Structured JSON output for programmatic consumption"
}

func (f *Formatter) FileExtension() string {
	return ".json"
}

// Format renders the full report. Entity text is masked unless ShowText
// is set; the JSON artifact is often attached to tickets and logs, which
// must not re-leak the detected values.
func (f *Formatter) Format(report *detector.Report, options formatters.FormatterOptions) (string, error) {
	if report == nil {
		return "", fmt.Errorf("json formatter: nil report")
	}

	out := *report
	if !options.ShowText {
		out.Text = ""
		entities := make([]detector.Entity, len(report.Entities))
		copy(entities, report.Entities)
		for i := range entities {
			entities[i].Text = formatters.MaskText(entities[i].Text)
		}
		out.Entities = entities
	}

	var data []byte
	var err error
	if options.Verbose {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}
	if err != nil {
		return "", fmt.Errorf("json formatter: %w", err)
	}
	return string(data), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
