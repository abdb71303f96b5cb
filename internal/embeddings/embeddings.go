// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package embeddings produces fixed-dimension text vectors for the vector
// index. An optional Provider capability (a hosted embedding model) can be
// attached; when it is absent or failing, a deterministic local generator
// takes over so indexing always succeeds offline.
package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strconv"

	"scrub-scan/internal/observability"
)

// DefaultDimension is the vector width of the local generator.
const DefaultDimension = 512

// Provider is the capability handle for an external embedding model.
type Provider interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Embedder converts text to unit-length vectors of a fixed dimension.
type Embedder struct {
	dim      int
	provider Provider
	observer *observability.StandardObserver
}

// Option configures an Embedder.
type Option func(*Embedder)

// WithProvider attaches an external embedding capability. Nil is ignored.
func WithProvider(p Provider) Option {
	return func(e *Embedder) {
		if p != nil {
			e.provider = p
		}
	}
}

// WithObserver attaches an observer for fallback records.
func WithObserver(o *observability.StandardObserver) Option {
	return func(e *Embedder) { e.observer = o }
}

// New creates an embedder. A non-positive dim selects DefaultDimension.
func New(dim int, opts ...Option) *Embedder {
	if dim <= 0 {
		dim = DefaultDimension
	}
	e := &Embedder{dim: dim}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dimension returns the vector width.
func (e *Embedder) Dimension() int {
	return e.dim
}

// Embed returns a unit-length vector for text. The provider is tried first
// when attached; any failure or dimension mismatch falls back to the local
// deterministic generator.
func (e *Embedder) Embed(ctx context.Context, text string) []float32 {
	if e.provider != nil {
		vec, err := e.provider.Embed(ctx, text)
		if err == nil && len(vec) == e.dim {
			return vec
		}
		if err != nil {
			e.observer.LogError(e.provider.Name(), "embed", err)
		}
	}
	return fallbackEmbed(text, e.dim)
}

// EmbedBatch embeds each text independently, preserving input order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) [][]float32 {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		out = append(out, e.Embed(ctx, text))
	}
	return out
}

// fallbackEmbed derives a unit vector from iterative SHA-256 hashing. Each
// dimension hashes the text plus a NUL separator and the dimension index,
// takes the first 4 digest bytes as a big-endian uint32 scaled to [0,1),
// and centers it around zero. The result is L2-normalized, so identical
// inputs always map to identical vectors.
func fallbackEmbed(text string, dim int) []float32 {
	buf := make([]float64, dim)
	textBytes := []byte(text)

	var norm float64
	for i := 0; i < dim; i++ {
		h := sha256.New()
		h.Write(textBytes)
		h.Write([]byte{0x00})
		h.Write([]byte(strconv.Itoa(i)))
		digest := h.Sum(nil)

		v := binary.BigEndian.Uint32(digest[:4])
		f := float64(v)/float64(1<<32) - 0.5
		buf[i] = f
		norm += f * f
	}

	out := make([]float32, dim)
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i, f := range buf {
		out[i] = float32(f / norm)
	}
	return out
}
