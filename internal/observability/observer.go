// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"encoding/json"
	"io"
	"time"
)

// StandardObserver records operation timings and outcomes for engine
// components. External detector failures are reported here rather than
// propagated, so a degraded run still leaves an audit trail.
type StandardObserver struct {
	level  ObservabilityLevel
	writer io.Writer
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// NewStandardObserver creates an observer writing to the given writer.
// A nil writer silences output regardless of level.
func NewStandardObserver(level ObservabilityLevel, writer io.Writer) *StandardObserver {
	return &StandardObserver{
		level:  level,
		writer: writer,
	}
}

// StartTiming returns a completion function that records the operation.
func (o *StandardObserver) StartTiming(component, operation string) func(success bool, metadata map[string]any) {
	start := time.Now()

	return func(success bool, metadata map[string]any) {
		duration := time.Since(start)

		o.LogOperation(OperationRecord{
			Component:  component,
			Operation:  operation,
			DurationMs: duration.Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		})
	}
}

// LogError records a failed operation without timing.
func (o *StandardObserver) LogError(component, operation string, err error) {
	o.LogOperation(OperationRecord{
		Component: component,
		Operation: operation,
		Success:   false,
		Error:     err.Error(),
	})
}

// LogOperation writes the record if debug output is enabled.
func (o *StandardObserver) LogOperation(record OperationRecord) {
	if o == nil || o.level == ObservabilityOff || o.writer == nil {
		return
	}

	if o.level == ObservabilityDebug {
		json.NewEncoder(o.writer).Encode(record)
	}
}

// OperationRecord is one structured log line.
type OperationRecord struct {
	Component  string         `json:"component"`
	Operation  string         `json:"operation"`
	DurationMs int64          `json:"duration_ms,omitempty"`
	Success    bool           `json:"success"`
	Error      string         `json:"error,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}
