// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package exiflib extracts EXIF metadata from images. Camera metadata
// routinely carries personal data (GPS coordinates, author and owner
// names, serial numbers), which makes it scannable text for the engine.
package exiflib

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// ExifData represents the extracted EXIF metadata
type ExifData struct {
	FilePath string
	Tags     map[string]string
}

// exifWalker implements the Walker interface to extract all EXIF tags
type exifWalker struct {
	tags map[string]string
}

// Walk implements the Walker interface
func (w *exifWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if tag != nil {
		w.tags[string(name)] = tag.String()
	}
	return nil
}

// ExtractExif extracts EXIF data from an image file
func ExtractExif(filePath string) (*ExifData, error) {
	f, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("no EXIF data found: %w", err)
	}

	result := &ExifData{
		FilePath: filePath,
		Tags:     make(map[string]string),
	}

	walker := &exifWalker{tags: result.Tags}
	if err := x.Walk(walker); err != nil {
		return nil, fmt.Errorf("error walking EXIF tags: %w", err)
	}

	// Decimal GPS coordinates are the highest-signal fields for a
	// privacy scan; surface them alongside the raw rationals.
	if lat, long, err := x.LatLong(); err == nil {
		result.Tags["GPSLatitudeDecimal"] = fmt.Sprintf("%.6f", lat)
		result.Tags["GPSLongitudeDecimal"] = fmt.Sprintf("%.6f", long)
	}

	return result, nil
}

// AsText renders the tags as stable "name: value" lines for scanning.
func (d *ExifData) AsText() string {
	names := make([]string, 0, len(d.Tags))
	for name := range d.Tags {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %s\n", name, d.Tags[name])
	}
	return b.String()
}
