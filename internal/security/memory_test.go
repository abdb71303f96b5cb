// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package security

import "testing"

func TestSecureString_RoundTrip(t *testing.T) {
	ss := NewSecureString("ssn 123-45-6789")
	if got := ss.String(); got != "ssn 123-45-6789" {
		t.Errorf("unexpected value: %q", got)
	}
	if ss.Len() != len("ssn 123-45-6789") {
		t.Errorf("unexpected length: %d", ss.Len())
	}
}

func TestSecureString_CopiesInput(t *testing.T) {
	src := []byte("mutable source")
	ss := NewSecureString(string(src))
	src[0] = 'X'
	if got := ss.String(); got != "mutable source" {
		t.Errorf("expected an independent copy, got %q", got)
	}
}

func TestSecureString_Clear(t *testing.T) {
	ss := NewSecureString("jane@example.com")
	ss.Clear()
	if ss.String() != "" || ss.Len() != 0 {
		t.Error("expected cleared value to read empty")
	}
	// Clearing twice must not panic.
	ss.Clear()
}

func TestSecureString_Empty(t *testing.T) {
	ss := NewSecureString("")
	if ss.String() != "" || ss.Len() != 0 {
		t.Error("expected empty value")
	}
	ss.Clear()
}
