// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import "context"

// Source tags identify which detector produced an entity. Kept as plain
// strings so integrations can introduce their own tags.
const (
	SourceRegex      = "regex"
	SourceComprehend = "comprehend"
	SourceNERModel   = "ner_model"
)

// Entity represents a detected sensitive-data span.
//
// Start and End are half-open byte offsets into the scanned text
// (0 <= Start < End <= len(text)). Text is the literal substring
// text[Start:End], denormalized for audit convenience.
type Entity struct {
	Type   string  `json:"type"`
	Score  float64 `json:"score"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Text   string  `json:"text"`
	Source string  `json:"source"`
}

// Length returns the span length in bytes.
func (e Entity) Length() int {
	return e.End - e.Start
}

// Overlaps reports whether two half-open spans intersect.
func (e Entity) Overlaps(other Entity) bool {
	return !(e.End <= other.Start || e.Start >= other.End)
}

// Summary aggregates accepted entities per type.
type Summary struct {
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

// Report is the audit-friendly result of one detection call.
//
// Entities are pairwise non-overlapping and sorted by Start ascending;
// the merge step guarantees both. A Report is a value object: built once,
// never mutated afterwards.
type Report struct {
	Text     string   `json:"text"`
	Length   int      `json:"length"`
	Entities []Entity `json:"entities"`
	Summary  Summary  `json:"summary"`
}

// NewReport assembles a Report from already-merged entities.
func NewReport(text string, entities []Entity) *Report {
	counts := make(map[string]int, len(entities))
	for _, e := range entities {
		counts[e.Type]++
	}
	return &Report{
		Text:     text,
		Length:   len(text),
		Entities: entities,
		Summary:  Summary{Counts: counts, Total: len(entities)},
	}
}

// External is the capability contract for optional detectors (cloud PII
// services, local NER models). Implementations return candidate entities
// using their own offsets and confidence values verbatim; label mapping to
// local types happens inside the implementation, before merging.
//
// An External that fails must return an error; the engine treats any
// error as "this detector contributed zero candidates" and proceeds.
type External interface {
	// Name identifies the detector in logs and entity Source tags.
	Name() string

	// DetectEntities scans text and returns raw candidates.
	DetectEntities(ctx context.Context, text string) ([]Entity, error)
}
