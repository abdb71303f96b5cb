// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"path/filepath"

	"scrub-scan/internal/observability"
	"scrub-scan/internal/preprocessors/pdftextlib"
)

// PDFTextPreprocessor extracts scannable text from PDF documents.
type PDFTextPreprocessor struct {
	observer *observability.StandardObserver
}

// NewPDFTextPreprocessor creates a new PDF text preprocessor
func NewPDFTextPreprocessor() *PDFTextPreprocessor {
	return &PDFTextPreprocessor{}
}

func (p *PDFTextPreprocessor) GetName() string {
	return "pdf_text"
}

func (p *PDFTextPreprocessor) GetSupportedExtensions() []string {
	return []string{".pdf"}
}

func (p *PDFTextPreprocessor) SetObserver(observer *observability.StandardObserver) {
	p.observer = observer
}

func (p *PDFTextPreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, p.GetSupportedExtensions())
}

func (p *PDFTextPreprocessor) Process(filePath string) (*ProcessedContent, error) {
	var finish func(bool, map[string]any)
	if p.observer != nil {
		finish = p.observer.StartTiming("preprocessor", "pdf_text")
	}

	content := &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Format:        "pdf",
		ProcessorType: p.GetName(),
	}

	extracted, err := pdftextlib.ExtractText(filePath)
	if err != nil {
		content.Error = err
		if finish != nil {
			finish(false, map[string]any{"error": err.Error()})
		}
		return content, fmt.Errorf("pdf text extraction failed: %w", err)
	}

	content.Text = extracted.Text
	content.PageCount = extracted.PageCount
	content.Success = true
	countStats(content)

	if finish != nil {
		finish(true, map[string]any{"pages": content.PageCount, "chars": content.CharCount})
	}
	return content, nil
}
