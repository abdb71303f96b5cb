// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters

import (
	"strings"
	"testing"

	"scrub-scan/internal/detector"
)

type fakeFormatter struct{ name string }

func (f *fakeFormatter) Name() string          { return f.name }
func (f *fakeFormatter) Description() string   { return "fake" }
func (f *fakeFormatter) FileExtension() string { return ".fake" }
func (f *fakeFormatter) Format(report *detector.Report, options FormatterOptions) (string, error) {
	return f.name, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeFormatter{name: "alpha"})

	got, ok := r.Get("alpha")
	if !ok || got.Name() != "alpha" {
		t.Errorf("expected registered formatter back, got %v %v", got, ok)
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("expected miss for unregistered name")
	}
	if len(r.List()) != 1 {
		t.Errorf("expected one name, got %v", r.List())
	}
}

func TestExport_UnknownFormat(t *testing.T) {
	report := detector.NewReport("", nil)
	if _, err := Export("definitely-not-registered", report, FormatterOptions{}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestMaskText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"a", "*"},
		{"ab", "**"},
		{"abcd", "ab**"},
		{"jane@example.com", "ja********"},
	}
	for _, tt := range tests {
		if got := MaskText(tt.in); got != tt.want {
			t.Errorf("MaskText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMaskText_NeverEchoesFullValue(t *testing.T) {
	secret := "4111111111111111"
	if strings.Contains(MaskText(secret), secret[2:]) {
		t.Error("masked output leaks the value")
	}
}
