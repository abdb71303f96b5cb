// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package nermodel runs a local ONNX token-classification model as an
// optional detector capability. The model bundle is a directory holding
// the exported model, a label map and a wordpiece vocab:
//
//	ner.onnx        token-classification model (input_ids, attention_mask -> logits)
//	label_map.json  BIO label list, index-aligned with the logits axis
//	vocab.txt       wordpiece vocabulary
//
// Predicted BIO tags are decoded back into byte spans via the tokenizer's
// offset mapping, then folded into local entity types.
package nermodel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"scrub-scan/internal/detector"
)

// nerTypeMap folds common NER tag families into local entity types, the
// same conservative mapping applied to any external NER source. Tags not
// listed here are ignored rather than guessed at.
var nerTypeMap = map[string]string{
	"PER":    "PERSON",
	"PERSON": "PERSON",
	"LOC":    "LOCATION",
	"GPE":    "LOCATION",
	"ORG":    "ORG",
	"MONEY":  "MONEY",
}

// Config locates the model bundle.
type Config struct {
	// BundleDir is the directory holding ner.onnx, label_map.json and vocab.txt.
	BundleDir string

	// SeqLen is the model input length; zero defaults to 256.
	SeqLen int

	// SharedLibraryPath overrides onnxruntime shared library discovery.
	SharedLibraryPath string
}

// Detector implements detector.External over an ONNX session. Tensors are
// preallocated at load time and guarded by a mutex; the session processes
// one text at a time.
type Detector struct {
	session   *ort.AdvancedSession
	tokenizer *wordpieceTokenizer
	labels    []string
	seqLen    int

	inputIDs      *ort.Tensor[int64]
	attentionMask *ort.Tensor[int64]
	logits        *ort.Tensor[float32]

	mu sync.Mutex
}

// Load initializes the ONNX session from a model bundle. A missing bundle
// or runtime is an error here, at construction time; the caller decides
// whether to continue without the capability.
func Load(cfg Config) (*Detector, error) {
	if cfg.BundleDir == "" {
		return nil, errors.New("nermodel: bundle dir is empty")
	}
	seqLen := cfg.SeqLen
	if seqLen <= 0 {
		seqLen = 256
	}

	libPath := cfg.SharedLibraryPath
	if libPath == "" {
		libPath = findSharedLibrary(cfg.BundleDir)
	}
	if libPath == "" {
		return nil, errors.New("nermodel: onnxruntime shared library not found")
	}
	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("nermodel: initialize onnxruntime: %w", err)
		}
	}

	modelPath := filepath.Join(cfg.BundleDir, "ner.onnx")
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("nermodel: model file missing at %s: %w", modelPath, err)
	}

	labels, err := loadLabels(filepath.Join(cfg.BundleDir, "label_map.json"))
	if err != nil {
		return nil, fmt.Errorf("nermodel: load labels: %w", err)
	}

	tokenizer, err := loadWordpieceTokenizer(filepath.Join(cfg.BundleDir, "vocab.txt"))
	if err != nil {
		return nil, fmt.Errorf("nermodel: load tokenizer: %w", err)
	}

	inputShape := ort.NewShape(1, int64(seqLen))
	inputIDs, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, fmt.Errorf("nermodel: allocate input_ids tensor: %w", err)
	}
	attnMask, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, fmt.Errorf("nermodel: allocate attention_mask tensor: %w", err)
	}
	logits, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(seqLen), int64(len(labels))))
	if err != nil {
		return nil, fmt.Errorf("nermodel: allocate logits tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"logits"},
		[]ort.Value{inputIDs, attnMask},
		[]ort.Value{logits},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("nermodel: create onnx session: %w", err)
	}

	return &Detector{
		session:       session,
		tokenizer:     tokenizer,
		labels:        labels,
		seqLen:        seqLen,
		inputIDs:      inputIDs,
		attentionMask: attnMask,
		logits:        logits,
	}, nil
}

// Name implements detector.External.
func (d *Detector) Name() string {
	return detector.SourceNERModel
}

// DetectEntities runs inference and decodes BIO predictions to spans.
func (d *Detector) DetectEntities(ctx context.Context, text string) ([]detector.Entity, error) {
	if d == nil || d.session == nil {
		return nil, errors.New("nermodel: not initialized")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	ids, attn, spans := d.tokenizer.encode(text, d.seqLen)

	d.mu.Lock()
	defer d.mu.Unlock()

	copy(d.inputIDs.GetData(), ids)
	copy(d.attentionMask.GetData(), attn)

	if err := d.session.Run(); err != nil {
		return nil, fmt.Errorf("nermodel: onnx run: %w", err)
	}

	preds := d.decodeTokens(attn, d.logits.GetData())
	return d.assembleSpans(text, preds, spans), nil
}

// tokenPrediction is the argmax tag for one token plus its probability.
type tokenPrediction struct {
	tag   string
	score float64
}

// decodeTokens computes per-token softmax and argmax over the logits.
func (d *Detector) decodeTokens(attn []int64, raw []float32) []tokenPrediction {
	numLabels := len(d.labels)
	preds := make([]tokenPrediction, d.seqLen)
	for i := 0; i < d.seqLen; i++ {
		if attn[i] == 0 {
			preds[i] = tokenPrediction{tag: "O"}
			continue
		}
		offset := i * numLabels
		if offset+numLabels > len(raw) {
			preds[i] = tokenPrediction{tag: "O"}
			continue
		}

		best, denom, maxLogit := 0, 0.0, float64(raw[offset])
		for j := 1; j < numLabels; j++ {
			if float64(raw[offset+j]) > maxLogit {
				maxLogit = float64(raw[offset+j])
				best = j
			}
		}
		for j := 0; j < numLabels; j++ {
			denom += math.Exp(float64(raw[offset+j]) - maxLogit)
		}
		preds[i] = tokenPrediction{
			tag:   d.labels[best],
			score: 1.0 / denom,
		}
	}
	return preds
}

// assembleSpans folds consecutive B-/I- tagged tokens into entities. The
// entity score is the minimum token probability across the span, a
// conservative estimate passed through verbatim to the merge step.
func (d *Detector) assembleSpans(text string, preds []tokenPrediction, spans []tokenSpan) []detector.Entity {
	var entities []detector.Entity

	flush := func(tag string, start, end int, score float64) {
		if start < 0 || end <= start || end > len(text) {
			return
		}
		mapped, ok := nerTypeMap[tag]
		if !ok {
			return
		}
		entities = append(entities, detector.Entity{
			Type:   mapped,
			Score:  score,
			Start:  start,
			End:    end,
			Text:   text[start:end],
			Source: detector.SourceNERModel,
		})
	}

	curTag := ""
	curStart, curEnd := -1, -1
	curScore := 1.0
	reset := func() {
		curTag, curStart, curEnd, curScore = "", -1, -1, 1.0
	}

	for i, p := range preds {
		if i >= len(spans) {
			break
		}
		span := spans[i]
		tag, kind := splitBIO(p.tag)

		// Special tokens and outside tags end any open span.
		if span.Start < 0 || kind == "O" {
			flush(curTag, curStart, curEnd, curScore)
			reset()
			continue
		}

		if kind == "I" && tag == curTag && curStart >= 0 {
			curEnd = span.End
			if p.score < curScore {
				curScore = p.score
			}
			continue
		}

		// A begin tag, or a stray inside tag that doesn't match the open
		// span, starts a new entity.
		flush(curTag, curStart, curEnd, curScore)
		curTag, curStart, curEnd, curScore = tag, span.Start, span.End, p.score
	}
	flush(curTag, curStart, curEnd, curScore)

	return entities
}

// splitBIO separates a BIO tag like "B-PER" into kind and base tag.
func splitBIO(tag string) (base, kind string) {
	switch {
	case tag == "O" || tag == "":
		return "", "O"
	case strings.HasPrefix(tag, "B-"):
		return tag[2:], "B"
	case strings.HasPrefix(tag, "I-"):
		return tag[2:], "I"
	default:
		// Some exports drop the prefix entirely; treat as a begin tag.
		return tag, "B"
	}
}

func loadLabels(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil && len(arr) > 0 {
		return arr, nil
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	out := make([]string, len(m))
	for k, v := range m {
		var idx int
		if _, err := fmt.Sscanf(k, "%d", &idx); err != nil {
			return nil, fmt.Errorf("invalid label index %q", k)
		}
		if idx < 0 || idx >= len(m) {
			return nil, fmt.Errorf("label index %d out of range", idx)
		}
		out[idx] = v
	}
	return out, nil
}

// findSharedLibrary probes common locations for the onnxruntime shared
// library. ONNXRUNTIME_SHARED_LIBRARY_PATH wins when set.
func findSharedLibrary(bundleDir string) string {
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}

	names := []string{
		"libonnxruntime.so",
		"onnxruntime.so",
		"libonnxruntime.dylib",
		"onnxruntime.dylib",
		"onnxruntime.dll",
	}
	dirs := []string{
		bundleDir,
		filepath.Join(bundleDir, "lib"),
		".",
		"/usr/local/lib",
		"/usr/lib",
		"/opt/homebrew/lib",
	}

	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
