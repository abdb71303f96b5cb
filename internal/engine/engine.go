// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package engine combines the regex detector table with optional external
// detector capabilities and exposes the detect and redact operations.
//
// External detectors degrade rather than abort: a failing capability
// contributes zero candidates and the failure is recorded through the
// observer. The regex table always runs.
package engine

import (
	"context"
	"strings"

	"scrub-scan/internal/detector"
	"scrub-scan/internal/observability"
	"scrub-scan/internal/patterns"
)

// DefaultRedactionToken replaces detected spans when no token is given.
const DefaultRedactionToken = "[REDACTED]"

// Engine orchestrates detection and redaction over one or more detector
// sources. The zero-value Engine is not usable; construct with New.
type Engine struct {
	externals []detector.External
	observer  *observability.StandardObserver
}

// Option configures an Engine.
type Option func(*Engine)

// WithExternal attaches an optional detector capability. Nil handles are
// ignored so callers can pass the result of a failed construction without
// branching.
func WithExternal(ext detector.External) Option {
	return func(e *Engine) {
		if ext != nil {
			e.externals = append(e.externals, ext)
		}
	}
}

// WithObserver attaches an observer for operation records.
func WithObserver(o *observability.StandardObserver) Option {
	return func(e *Engine) { e.observer = o }
}

// New creates an engine with the built-in regex table plus any attached
// external capabilities.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Detect scans text with every available detector and returns a report of
// merged, non-overlapping entities sorted by start offset.
func (e *Engine) Detect(ctx context.Context, text string) *detector.Report {
	finish := e.observer.StartTiming("engine", "detect")

	groups := make([][]detector.Entity, 0, 1+len(e.externals))
	groups = append(groups, patterns.Detect(text))

	for _, ext := range e.externals {
		candidates, err := ext.DetectEntities(ctx, text)
		if err != nil {
			// Degraded capability: log and continue with what we have.
			e.observer.LogError(ext.Name(), "detect_entities", err)
			continue
		}
		groups = append(groups, candidates)
	}

	report := detector.NewReport(text, detector.MergeEntities(groups...))
	finish(true, map[string]any{
		"text_bytes":   len(text),
		"entity_count": report.Summary.Total,
	})
	return report
}

// DetectBatch scans each text independently and returns reports in input
// order. A nil or empty input yields an empty slice, never nil.
func (e *Engine) DetectBatch(ctx context.Context, texts []string) []*detector.Report {
	reports := make([]*detector.Report, 0, len(texts))
	for _, text := range texts {
		reports = append(reports, e.Detect(ctx, text))
	}
	return reports
}

// RedactOptions controls replacement output.
type RedactOptions struct {
	// Token replaces each detected span. Empty means DefaultRedactionToken.
	Token string

	// PreserveLastN keeps the trailing N characters of a span visible after
	// the token, keyed by entity type. Counted in runes so a multi-byte
	// tail is never split. A fragment of N or fewer characters is kept
	// whole after the token.
	PreserveLastN map[string]int
}

// Redact detects entities in text and replaces each accepted span. The
// returned report describes the original text, not the redacted output,
// so offsets in it remain valid against the input.
func (e *Engine) Redact(ctx context.Context, text string, opts RedactOptions) (string, *detector.Report) {
	report := e.Detect(ctx, text)
	if len(report.Entities) == 0 {
		return text, report
	}

	token := opts.Token
	if token == "" {
		token = DefaultRedactionToken
	}

	var b strings.Builder
	cursor := 0
	for _, ent := range report.Entities {
		start, end := ent.Start, ent.End
		// Entities arrive sorted and non-overlapping; the clamp guards
		// against malformed offsets from a misbehaving external source.
		if start < cursor {
			start = cursor
		}
		if end > len(text) {
			end = len(text)
		}
		if end <= start {
			continue
		}

		b.WriteString(text[cursor:start])
		b.WriteString(replacementFor(text[start:end], ent.Type, token, opts.PreserveLastN))
		cursor = end
	}
	b.WriteString(text[cursor:])

	return b.String(), report
}

// replacementFor builds the redacted form of one span.
func replacementFor(fragment, entityType, token string, preserveLastN map[string]int) string {
	n, ok := preserveLastN[entityType]
	if !ok || n <= 0 {
		return token
	}
	runes := []rune(fragment)
	if len(runes) <= n {
		return token + fragment
	}
	return token + string(runes[len(runes)-n:])
}
