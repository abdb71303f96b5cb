// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdftextlib

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxPages caps per-document processing time. Pages past the cap are not
// scanned.
const maxPages = 50

// TextContent represents the extracted text content from a PDF document
type TextContent struct {
	Filename  string
	Text      string
	PageCount int
}

// ExtractText extracts text from a PDF document page by page.
func ExtractText(filePath string) (*TextContent, error) {
	content := &TextContent{
		Filename: filepath.Base(filePath),
	}

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return content, fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	content.PageCount = r.NumPage()
	pages := content.PageCount
	if pages > maxPages {
		pages = maxPages
	}

	var buf bytes.Buffer
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// A damaged page does not fail the document; the rest is
			// still worth scanning.
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n--- PAGE BREAK ---\n")
		}
		buf.WriteString(text)
	}

	content.Text = normalizeWhitespace(buf.String())
	return content, nil
}

// normalizeWhitespace collapses runs of blank lines and trims trailing
// spaces so span offsets stay stable across extractor versions.
func normalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
