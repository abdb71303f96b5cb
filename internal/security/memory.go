// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package security holds small helpers for handling sensitive text in
// memory. Extracted document text can carry raw identifiers before
// redaction runs, so callers keep it in a SecureString and clear it as
// soon as the redacted form exists.
package security

// SecureString wraps sensitive text with best-effort scrubbing on Clear.
//
// The runtime may copy or move memory, and converting back to a string
// produces an immutable copy that cannot be zeroed. Clear shrinks the
// exposure window; it is not a guarantee that no copy survives.
type SecureString struct {
	data []byte
}

// NewSecureString copies s into a mutable buffer.
func NewSecureString(s string) *SecureString {
	data := make([]byte, len(s))
	copy(data, s)
	return &SecureString{data: data}
}

// String returns the held value. Each call allocates an immutable copy
// outside the reach of Clear, so call it as few times as possible.
func (ss *SecureString) String() string {
	return string(ss.data)
}

// Len returns the byte length without materializing a string copy.
func (ss *SecureString) Len() int {
	return len(ss.data)
}

// Clear zeroes the buffer and releases it. After Clear the value reads
// as the empty string.
func (ss *SecureString) Clear() {
	for i := range ss.data {
		ss.data[i] = 0
	}
	ss.data = nil
}
