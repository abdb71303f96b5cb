// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"scrub-scan/internal/observability"
)

// maxPlainTextBytes caps how much of a file is scanned. Larger files are
// truncated rather than rejected.
const maxPlainTextBytes = 10 * 1024 * 1024

var plainTextExtensions = []string{
	".txt", ".md", ".log", ".csv", ".tsv", ".json", ".yaml", ".yml",
	".xml", ".html", ".htm", ".ini", ".conf", ".cfg", ".env",
}

// PlainTextPreprocessor reads text files directly. It also accepts files
// with unknown extensions when their leading bytes look like text, so the
// manager can scan extension-less exports and dumps.
type PlainTextPreprocessor struct {
	observer *observability.StandardObserver
}

// NewPlainTextPreprocessor creates a new plain text preprocessor
func NewPlainTextPreprocessor() *PlainTextPreprocessor {
	return &PlainTextPreprocessor{}
}

func (p *PlainTextPreprocessor) GetName() string {
	return "plaintext"
}

func (p *PlainTextPreprocessor) GetSupportedExtensions() []string {
	return plainTextExtensions
}

func (p *PlainTextPreprocessor) SetObserver(observer *observability.StandardObserver) {
	p.observer = observer
}

func (p *PlainTextPreprocessor) CanProcess(filePath string) bool {
	if hasExtension(filePath, plainTextExtensions) {
		return true
	}
	return looksLikeText(filePath)
}

func (p *PlainTextPreprocessor) Process(filePath string) (*ProcessedContent, error) {
	var finish func(bool, map[string]any)
	if p.observer != nil {
		finish = p.observer.StartTiming("preprocessor", "plaintext")
	}

	content := &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Format:        "text",
		ProcessorType: p.GetName(),
	}

	data, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		content.Error = err
		if finish != nil {
			finish(false, map[string]any{"error": err.Error()})
		}
		return content, fmt.Errorf("error reading file: %w", err)
	}
	if len(data) > maxPlainTextBytes {
		data = data[:maxPlainTextBytes]
	}

	content.Text = string(data)
	content.Success = true
	countStats(content)

	if finish != nil {
		finish(true, map[string]any{"chars": content.CharCount})
	}
	return content, nil
}

// looksLikeText sniffs the first bytes of a file for binary content.
func looksLikeText(filePath string) bool {
	f, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if n == 0 || (err != nil && n <= 0) {
		return false
	}
	return !bytes.ContainsRune(buf[:n], 0)
}
