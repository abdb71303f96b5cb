// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package cloudpii adapts a managed PII detection service (Amazon
// Comprehend or compatible) to the detector.External capability contract.
// The service client is an opaque handle injected at construction; this
// package never builds cloud credentials or SDK sessions itself.
package cloudpii

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scrub-scan/internal/detector"
	"scrub-scan/internal/observability"
	"scrub-scan/internal/resilience"
)

// RawEntity is one span as reported by the service, offsets and score
// verbatim.
type RawEntity struct {
	Type        string
	Score       float64
	BeginOffset int
	EndOffset   int
}

// Client is the capability handle for the managed service. The excluded
// orchestration layer supplies a concrete implementation (an SDK wrapper,
// an HTTP shim, a test fake); the engine only needs present-or-absent.
type Client interface {
	DetectPIIEntities(ctx context.Context, text string) ([]RawEntity, error)
}

// labelMap folds service-specific entity labels into local types at the
// integration boundary, before candidates reach the merge step. Unmapped
// labels pass through unchanged.
var labelMap = map[string]string{
	"CREDIT_DEBIT_NUMBER": "CREDIT_CARD",
	"CREDIT_DEBIT_CVV":    "CREDIT_CARD",
	"NAME":                "PERSON",
	"ADDRESS":             "LOCATION",
	"PHONE":               "PHONE",
	"EMAIL":               "EMAIL",
	"SSN":                 "SSN",
	"URL":                 "URL",
	"IP_ADDRESS":          "IP_ADDRESS",
	"DRIVER_ID":           "US_DRIVER_LICENSE",
	"BANK_ACCOUNT_NUMBER": "BANK_ACCOUNT",
}

// Detector implements detector.External over a Client handle.
type Detector struct {
	client   Client
	timeout  time.Duration
	observer *observability.StandardObserver
}

// Option configures a Detector.
type Option func(*Detector)

// WithTimeout bounds each service call. Zero keeps the package default.
func WithTimeout(d time.Duration) Option {
	return func(det *Detector) { det.timeout = d }
}

// WithObserver attaches an observer for call timing records.
func WithObserver(o *observability.StandardObserver) Option {
	return func(det *Detector) { det.observer = o }
}

// New creates a cloud PII detector over the given client handle.
func New(client Client, opts ...Option) (*Detector, error) {
	if client == nil {
		return nil, errors.New("cloudpii: client handle is required")
	}
	d := &Detector{
		client:  client,
		timeout: resilience.DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Name implements detector.External.
func (d *Detector) Name() string {
	return detector.SourceComprehend
}

// DetectEntities calls the service under a deadline and maps its labels
// into local types. Offsets and scores are passed through verbatim; spans
// that fall outside the text are dropped as malformed.
func (d *Detector) DetectEntities(ctx context.Context, text string) ([]detector.Entity, error) {
	var finish func(bool, map[string]any)
	if d.observer != nil {
		finish = d.observer.StartTiming("cloudpii", "detect_entities")
	}

	raw, err := resilience.CallBounded(ctx, d.timeout, func(ctx context.Context) ([]RawEntity, error) {
		return d.client.DetectPIIEntities(ctx, text)
	})
	if err != nil {
		if finish != nil {
			finish(false, map[string]any{"error": err.Error()})
		}
		return nil, fmt.Errorf("cloudpii: %w", err)
	}

	entities := make([]detector.Entity, 0, len(raw))
	for _, r := range raw {
		if r.BeginOffset < 0 || r.EndOffset > len(text) || r.BeginOffset >= r.EndOffset {
			continue
		}
		entityType := r.Type
		if mapped, ok := labelMap[r.Type]; ok {
			entityType = mapped
		}
		entities = append(entities, detector.Entity{
			Type:   entityType,
			Score:  r.Score,
			Start:  r.BeginOffset,
			End:    r.EndOffset,
			Text:   text[r.BeginOffset:r.EndOffset],
			Source: detector.SourceComprehend,
		})
	}

	if finish != nil {
		finish(true, map[string]any{"entity_count": len(entities)})
	}
	return entities, nil
}
