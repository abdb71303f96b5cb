// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"path/filepath"

	"scrub-scan/internal/observability"
	"scrub-scan/internal/preprocessors/exiflib"
)

var imageExtensions = []string{".jpg", ".jpeg", ".tiff", ".tif", ".png", ".webp", ".heic"}

// ImageMetadataPreprocessor renders image EXIF metadata as text. The
// pixels are never scanned; only the embedded metadata is.
type ImageMetadataPreprocessor struct {
	observer *observability.StandardObserver
}

// NewImageMetadataPreprocessor creates a new image metadata preprocessor
func NewImageMetadataPreprocessor() *ImageMetadataPreprocessor {
	return &ImageMetadataPreprocessor{}
}

func (p *ImageMetadataPreprocessor) GetName() string {
	return "image_metadata"
}

func (p *ImageMetadataPreprocessor) GetSupportedExtensions() []string {
	return imageExtensions
}

func (p *ImageMetadataPreprocessor) SetObserver(observer *observability.StandardObserver) {
	p.observer = observer
}

func (p *ImageMetadataPreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, imageExtensions)
}

func (p *ImageMetadataPreprocessor) Process(filePath string) (*ProcessedContent, error) {
	var finish func(bool, map[string]any)
	if p.observer != nil {
		finish = p.observer.StartTiming("preprocessor", "image_metadata")
	}

	content := &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Format:        "image",
		ProcessorType: p.GetName(),
	}

	data, err := exiflib.ExtractExif(filePath)
	if err != nil {
		content.Error = err
		if finish != nil {
			finish(false, map[string]any{"error": err.Error()})
		}
		return content, fmt.Errorf("exif extraction failed: %w", err)
	}

	content.Text = data.AsText()
	content.Success = true
	countStats(content)
	content.Metadata = map[string]interface{}{
		"tag_count": len(data.Tags),
	}

	if finish != nil {
		finish(true, map[string]any{"tags": len(data.Tags)})
	}
	return content, nil
}
