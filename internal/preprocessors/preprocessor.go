// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package preprocessors turns input files into scannable text. Each
// preprocessor handles a family of formats; the manager picks the first
// one that claims a file and falls through on failure.
package preprocessors

import (
	"path/filepath"
	"strings"

	"scrub-scan/internal/observability"
)

// ProcessedContent represents content that has been processed by a preprocessor
type ProcessedContent struct {
	// Original file information
	OriginalPath string
	Filename     string

	// Extracted content
	Text string

	// Content metadata
	Format    string
	PageCount int
	WordCount int
	CharCount int
	LineCount int

	// Processing information
	ProcessorType string
	Success       bool
	Error         error

	// Additional metadata for media files and other extensions
	Metadata map[string]interface{}
}

// Preprocessor interface defines methods for preprocessing files
type Preprocessor interface {
	// CanProcess checks if this preprocessor can handle the given file
	CanProcess(filePath string) bool

	// Process extracts content from the file
	Process(filePath string) (*ProcessedContent, error)

	// GetName returns the name of this preprocessor
	GetName() string

	// GetSupportedExtensions returns the file extensions this preprocessor supports
	GetSupportedExtensions() []string

	// SetObserver sets the observability component
	SetObserver(observer *observability.StandardObserver)
}

// Manager manages all available preprocessors
type Manager struct {
	preprocessors []Preprocessor
}

// NewManager creates a new preprocessor manager
func NewManager() *Manager {
	return &Manager{
		preprocessors: make([]Preprocessor, 0),
	}
}

// DefaultManager returns a manager with every built-in preprocessor
// registered in priority order.
func DefaultManager(observer *observability.StandardObserver) *Manager {
	m := NewManager()
	for _, p := range []Preprocessor{
		NewPDFTextPreprocessor(),
		NewImageMetadataPreprocessor(),
		NewPlainTextPreprocessor(),
	} {
		p.SetObserver(observer)
		m.Register(p)
	}
	return m
}

// Register adds a preprocessor to the manager
func (m *Manager) Register(p Preprocessor) {
	m.preprocessors = append(m.preprocessors, p)
}

// GetPreprocessor returns the appropriate preprocessor for a file, or nil if none found
func (m *Manager) GetPreprocessor(filePath string) Preprocessor {
	for _, p := range m.preprocessors {
		if p.CanProcess(filePath) {
			return p
		}
	}
	return nil
}

// ProcessFile processes a file with the first preprocessor that succeeds.
func (m *Manager) ProcessFile(filePath string) (*ProcessedContent, error) {
	var lastError error
	matched := false

	for _, p := range m.preprocessors {
		if !p.CanProcess(filePath) {
			continue
		}
		matched = true
		result, err := p.Process(filePath)
		if err == nil && result != nil && result.Success {
			return result, nil
		}
		lastError = err
	}

	if !matched {
		return &ProcessedContent{
			OriginalPath:  filePath,
			Filename:      filepath.Base(filePath),
			ProcessorType: "none",
			Success:       false,
		}, nil
	}

	return &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		ProcessorType: "failed",
		Success:       false,
		Error:         lastError,
	}, lastError
}

// GetAvailablePreprocessors returns all registered preprocessors
func (m *Manager) GetAvailablePreprocessors() []Preprocessor {
	return m.preprocessors
}

// hasExtension reports whether the file path carries one of the given
// extensions, case-insensitively.
func hasExtension(filePath string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, candidate := range extensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

// countStats fills word, char and line counts for extracted text.
func countStats(content *ProcessedContent) {
	content.CharCount = len(content.Text)
	content.WordCount = len(strings.Fields(content.Text))
	content.LineCount = strings.Count(content.Text, "\n")
	if content.Text != "" && !strings.HasSuffix(content.Text, "\n") {
		content.LineCount++
	}
}
