// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package patterns implements the fixed regex detector table. Each pattern
// carries a fixed confidence weight that is part of the engine's contract.
// The CREDIT_CARD and US_DRIVER_LICENSE patterns are deliberately permissive;
// their low confidence reflects the expected false-positive rate, and the
// merge step resolves conflicts with higher-confidence detections.
package patterns

import (
	"regexp"

	"scrub-scan/internal/detector"
)

// Pattern is one (type, regex, confidence) detector.
type Pattern struct {
	Type       string
	Confidence float64
	regex      *regexp.Regexp
}

// Regex returns the compiled expression, mainly for tests and docs output.
func (p Pattern) Regex() *regexp.Regexp {
	return p.regex
}

// defaultTable is the ordered detector table. Order is table order only:
// priority between overlapping matches comes from score and span length
// during merge, never from position in this table.
var defaultTable = []Pattern{
	{Type: "EMAIL", Confidence: 0.95, regex: regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`)},
	// The phone pattern is boundary-anchored so it cannot fire inside a
	// longer digit run; a 16-digit card number yields a CREDIT_CARD
	// candidate only, instead of a higher-scoring partial PHONE match
	// that would shadow it during merge.
	{Type: "PHONE", Confidence: 0.70, regex: regexp.MustCompile(`\b(?:\+?\d{1,3}[-.\s]?)?(?:\(?\d{2,4}\)?[-.\s]?)?\d{3,4}[-.\s]?\d{3,4}\b`)},
	{Type: "SSN", Confidence: 0.98, regex: regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{Type: "CREDIT_CARD", Confidence: 0.60, regex: regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`)},
	{Type: "IP_ADDRESS", Confidence: 0.90, regex: regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)},
	{Type: "URL", Confidence: 0.90, regex: regexp.MustCompile(`https?://[^\s]+|www\.[^\s]+`)},
	{Type: "US_DRIVER_LICENSE", Confidence: 0.35, regex: regexp.MustCompile(`\b[A-Z]{1,2}\d{4,8}\b`)},
}

// DefaultTable returns the built-in detector table.
func DefaultTable() []Pattern {
	return defaultTable
}

// Detect runs every pattern independently over text and returns all raw
// candidates. Matches may overlap across types; zero-length matches are
// discarded. Candidates are not merged here.
func Detect(text string) []detector.Entity {
	var entities []detector.Entity
	for _, p := range defaultTable {
		for _, loc := range p.regex.FindAllStringIndex(text, -1) {
			start, end := loc[0], loc[1]
			if end <= start {
				continue
			}
			entities = append(entities, detector.Entity{
				Type:   p.Type,
				Score:  p.Confidence,
				Start:  start,
				End:    end,
				Text:   text[start:end],
				Source: detector.SourceRegex,
			})
		}
	}
	return entities
}
