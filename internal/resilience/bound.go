// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package resilience bounds calls to external detector capabilities.
// The engine's contract is degrade-not-abort: a detector that hangs must
// surface as a timeout error at the call site, where it is treated the
// same as any other detector failure. Retry policy belongs to the
// integration layer, not here.
package resilience

import (
	"context"
	"fmt"
	"time"
)

// DefaultCallTimeout bounds one external detector call when the caller
// does not configure a timeout.
const DefaultCallTimeout = 10 * time.Second

// BoundedFunc is an operation returning a value, run under a deadline.
type BoundedFunc[T any] func(ctx context.Context) (T, error)

// CallBounded runs fn under a deadline derived from ctx. A non-positive
// timeout falls back to DefaultCallTimeout. The operation runs in its own
// goroutine so a hung call cannot block the caller past the deadline; the
// goroutine's eventual result is discarded after timeout.
func CallBounded[T any](ctx context.Context, timeout time.Duration, fn BoundedFunc[T]) (T, error) {
	var zero T
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		value, err := fn(ctx)
		done <- outcome{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		return zero, fmt.Errorf("bounded call: %w", ctx.Err())
	case out := <-done:
		return out.value, out.err
	}
}
