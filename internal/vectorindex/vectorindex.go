// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package vectorindex stores text embeddings with metadata and answers
// cosine-similarity queries. The built-in backend is an exact linear scan;
// an approximate-nearest-neighbor Backend can be attached and the index
// falls back to the scan whenever the backend fails.
//
// Long documents are chunked into overlapping character windows before
// embedding, so a query can land on the relevant part of a transcript
// instead of its average.
package vectorindex

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"scrub-scan/internal/embeddings"
	"scrub-scan/internal/observability"
)

// vectorFileMagic identifies the on-disk vector artifact format.
var vectorFileMagic = [4]byte{'S', 'C', 'R', 'B'}

// Backend is an optional ANN engine. Search returns candidate positions
// into the index's id/meta tables with their similarity scores.
type Backend interface {
	Add(vectors [][]float32) error
	Search(query []float32, k int) (positions []int, scores []float32, err error)
}

// Result is one query hit.
type Result struct {
	ID    string         `json:"id"`
	Meta  map[string]any `json:"meta"`
	Score float64        `json:"score"`
}

// Document is one item to index.
type Document struct {
	ID   string
	Text string
	Meta map[string]any
}

// Index holds vectors, ids and metadata in aligned order.
type Index struct {
	embedder *embeddings.Embedder
	backend  Backend
	observer *observability.StandardObserver

	dim     int
	vectors [][]float32
	ids     []string
	meta    []map[string]any
}

// Option configures an Index.
type Option func(*Index)

// WithBackend attaches an ANN backend. Nil is ignored.
func WithBackend(b Backend) Option {
	return func(idx *Index) {
		if b != nil {
			idx.backend = b
		}
	}
}

// WithObserver attaches an observer for degraded-backend records.
func WithObserver(o *observability.StandardObserver) Option {
	return func(idx *Index) { idx.observer = o }
}

// New creates an empty index over the given embedder.
func New(embedder *embeddings.Embedder, opts ...Option) (*Index, error) {
	if embedder == nil {
		return nil, errors.New("vectorindex: embedder is required")
	}
	idx := &Index{
		embedder: embedder,
		dim:      embedder.Dimension(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx, nil
}

// Len returns the number of stored vectors.
func (idx *Index) Len() int {
	return len(idx.ids)
}

// Add embeds and stores the documents. Documents longer than chunkChars
// characters are split into overlapping windows (the step is 80% of the
// window, so consecutive chunks share a 20% overlap); each chunk carries
// its position and source document id in metadata. chunkChars <= 0
// disables chunking. Returns the ids actually stored, chunk ids included.
func (idx *Index) Add(ctx context.Context, docs []Document, chunkChars int) ([]string, error) {
	var texts []string
	var ids []string
	var metas []map[string]any

	for _, doc := range docs {
		id := doc.ID
		if id == "" {
			id = uuid.NewString()
		}

		runes := []rune(doc.Text)
		if chunkChars > 0 && len(runes) > chunkChars {
			step := chunkChars * 8 / 10
			if step < 1 {
				step = 1
			}
			chunkIdx := 0
			for start := 0; start < len(runes); start += step {
				end := start + chunkChars
				if end > len(runes) {
					end = len(runes)
				}
				meta := make(map[string]any, len(doc.Meta)+2)
				for k, v := range doc.Meta {
					meta[k] = v
				}
				meta["_chunk_index"] = chunkIdx
				meta["_source_id"] = id

				texts = append(texts, string(runes[start:end]))
				ids = append(ids, fmt.Sprintf("%s_c%d", id, chunkIdx))
				metas = append(metas, meta)
				chunkIdx++
			}
		} else {
			meta := doc.Meta
			if meta == nil {
				meta = map[string]any{}
			}
			texts = append(texts, doc.Text)
			ids = append(ids, id)
			metas = append(metas, meta)
		}
	}

	if len(texts) == 0 {
		return nil, nil
	}

	vecs := idx.embedder.EmbedBatch(ctx, texts)
	for _, vec := range vecs {
		if len(vec) != idx.dim {
			return nil, fmt.Errorf("vectorindex: embedding dimension mismatch: index dim %d vs %d", idx.dim, len(vec))
		}
	}

	if idx.backend != nil {
		if err := idx.backend.Add(vecs); err != nil {
			// The linear scan still works from the in-memory copy.
			idx.observer.LogError("vectorindex", "backend_add", err)
		}
	}

	idx.vectors = append(idx.vectors, vecs...)
	idx.ids = append(idx.ids, ids...)
	idx.meta = append(idx.meta, metas...)
	return ids, nil
}

// NearestK embeds the query and returns up to k hits ordered by cosine
// similarity descending. An empty index yields no hits.
func (idx *Index) NearestK(ctx context.Context, query string, k int) []Result {
	if k <= 0 || len(idx.vectors) == 0 {
		return nil
	}

	qvec := idx.embedder.Embed(ctx, query)

	if idx.backend != nil {
		positions, scores, err := idx.backend.Search(qvec, k)
		if err == nil {
			return idx.collect(positions, scores)
		}
		idx.observer.LogError("vectorindex", "backend_search", err)
	}

	return idx.linearScan(qvec, k)
}

// linearScan computes cosine similarity against every stored vector.
func (idx *Index) linearScan(qvec []float32, k int) []Result {
	positions := make([]int, len(idx.vectors))
	scores := make([]float32, len(idx.vectors))
	for i, vec := range idx.vectors {
		positions[i] = i
		scores[i] = cosineSimilarity(qvec, vec)
	}

	sort.SliceStable(positions, func(a, b int) bool {
		return scores[positions[a]] > scores[positions[b]]
	})
	if len(positions) > k {
		positions = positions[:k]
	}

	ordered := make([]float32, len(positions))
	for i, pos := range positions {
		ordered[i] = scores[pos]
	}
	return idx.collect(positions, ordered)
}

// collect maps backend positions to results, dropping out-of-range hits.
func (idx *Index) collect(positions []int, scores []float32) []Result {
	results := make([]Result, 0, len(positions))
	for i, pos := range positions {
		if pos < 0 || pos >= len(idx.ids) {
			continue
		}
		results = append(results, Result{
			ID:    idx.ids[pos],
			Meta:  idx.meta[pos],
			Score: float64(scores[i]),
		})
	}
	return results
}

// cosineSimilarity returns the cosine of the angle between two vectors,
// clamped to [-1, 1]. Zero vectors score zero.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if sim > 1 {
		sim = 1
	}
	if sim < -1 {
		sim = -1
	}
	return float32(sim)
}

// Save persists the index next to base: base.bin holds the raw vectors,
// base_ids.json and base_meta.json hold the aligned tables.
func (idx *Index) Save(base string) error {
	if base == "" {
		return errors.New("vectorindex: base path is required")
	}
	if err := os.MkdirAll(filepath.Dir(base), 0750); err != nil {
		return fmt.Errorf("vectorindex: create index dir: %w", err)
	}

	if err := writeJSON(base+"_ids.json", idx.ids); err != nil {
		return err
	}
	if err := writeJSON(base+"_meta.json", idx.meta); err != nil {
		return err
	}
	return idx.writeVectors(base + ".bin")
}

// Load restores an index saved by Save. The embedder must produce vectors
// of the same dimension the index was built with.
func Load(base string, embedder *embeddings.Embedder, opts ...Option) (*Index, error) {
	idx, err := New(embedder, opts...)
	if err != nil {
		return nil, err
	}

	if err := readJSON(base+"_ids.json", &idx.ids); err != nil {
		return nil, err
	}
	if err := readJSON(base+"_meta.json", &idx.meta); err != nil {
		return nil, err
	}
	if err := idx.readVectors(base + ".bin"); err != nil {
		return nil, err
	}

	if len(idx.ids) != len(idx.vectors) || len(idx.meta) != len(idx.vectors) {
		return nil, fmt.Errorf("vectorindex: inconsistent artifact at %s: %d ids, %d metas, %d vectors",
			base, len(idx.ids), len(idx.meta), len(idx.vectors))
	}

	if idx.backend != nil && len(idx.vectors) > 0 {
		if err := idx.backend.Add(idx.vectors); err != nil {
			idx.observer.LogError("vectorindex", "backend_add", err)
		}
	}
	return idx, nil
}

func (idx *Index) writeVectors(path string) error {
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("vectorindex: create vector file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(vectorFileMagic[:]); err != nil {
		return fmt.Errorf("vectorindex: write vector file: %w", err)
	}
	header := []uint32{uint32(len(idx.vectors)), uint32(idx.dim)}
	if err := binary.Write(f, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("vectorindex: write vector header: %w", err)
	}
	for _, vec := range idx.vectors {
		if err := binary.Write(f, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("vectorindex: write vectors: %w", err)
		}
	}
	return nil
}

func (idx *Index) readVectors(path string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("vectorindex: open vector file: %w", err)
	}
	defer f.Close()

	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return fmt.Errorf("vectorindex: read vector magic: %w", err)
	}
	if magic != vectorFileMagic {
		return fmt.Errorf("vectorindex: %s is not a vector artifact", path)
	}

	var header [2]uint32
	if err := binary.Read(f, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("vectorindex: read vector header: %w", err)
	}
	count, dim := int(header[0]), int(header[1])
	if dim != idx.dim {
		return fmt.Errorf("vectorindex: stored dimension %d does not match embedder dimension %d", dim, idx.dim)
	}

	idx.vectors = make([][]float32, 0, count)
	for i := 0; i < count; i++ {
		vec := make([]float32, dim)
		if err := binary.Read(f, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("vectorindex: read vector %d: %w", i, err)
		}
		idx.vectors = append(idx.vectors, vec)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("vectorindex: encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("vectorindex: write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("vectorindex: read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("vectorindex: decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
