// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package nermodel

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// tokenSpan maps one wordpiece back to its byte range in the source text.
// Special and padding tokens carry {-1, -1}.
type tokenSpan struct {
	Start int
	End   int
}

// wordpieceTokenizer is a minimal BERT-style tokenizer that keeps byte
// offsets through sub-word splitting, which the span decoder needs to
// recover character positions from token-level predictions.
type wordpieceTokenizer struct {
	vocab        map[string]int64
	lowerCase    bool
	continuation string
	clsID        int64
	sepID        int64
	padID        int64
	unkID        int64
}

// loadWordpieceTokenizer builds the tokenizer from a vocab.txt file where
// line number equals token id.
func loadWordpieceTokenizer(path string) (*wordpieceTokenizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocab: %w", err)
	}
	defer f.Close()

	vocab := make(map[string]int64)
	sc := bufio.NewScanner(f)
	var idx int64
	for sc.Scan() {
		token := strings.TrimSpace(sc.Text())
		if token == "" {
			continue
		}
		vocab[token] = idx
		idx++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan vocab: %w", err)
	}

	return &wordpieceTokenizer{
		vocab:        vocab,
		lowerCase:    true,
		continuation: "##",
		clsID:        vocab["[CLS]"],
		sepID:        vocab["[SEP]"],
		padID:        vocab["[PAD]"],
		unkID:        vocab["[UNK]"],
	}, nil
}

// encode converts text into token ids, an attention mask and per-token
// byte spans, all of length seqLen.
func (t *wordpieceTokenizer) encode(text string, seqLen int) ([]int64, []int64, []tokenSpan) {
	if seqLen <= 0 {
		return nil, nil, nil
	}

	tokens := []int64{t.clsID}
	spans := []tokenSpan{{Start: -1, End: -1}}

	for _, w := range splitWords(text) {
		word := w.Text
		if t.lowerCase {
			word = strings.ToLower(word)
		}
		for _, p := range t.pieces(word) {
			tokens = append(tokens, p.id)
			spans = append(spans, tokenSpan{Start: w.Start + p.start, End: w.Start + p.end})
			if len(tokens) >= seqLen-1 {
				break
			}
		}
		if len(tokens) >= seqLen-1 {
			break
		}
	}

	tokens = append(tokens, t.sepID)
	spans = append(spans, tokenSpan{Start: -1, End: -1})

	attn := make([]int64, seqLen)
	for i := 0; i < len(tokens) && i < seqLen; i++ {
		attn[i] = 1
	}
	for len(tokens) < seqLen {
		tokens = append(tokens, t.padID)
		spans = append(spans, tokenSpan{Start: -1, End: -1})
	}

	return tokens, attn, spans
}

type piece struct {
	id    int64
	start int
	end   int
}

// pieces splits one word into wordpieces with intra-word byte offsets.
// A word with no decomposition collapses to a single [UNK] covering it.
func (t *wordpieceTokenizer) pieces(word string) []piece {
	if id, ok := t.vocab[word]; ok {
		return []piece{{id: id, start: 0, end: len(word)}}
	}

	var out []piece
	start := 0
	for start < len(word) {
		end := len(word)
		matched := false
		for end > start {
			sub := word[start:end]
			if start > 0 {
				sub = t.continuation + sub
			}
			if id, ok := t.vocab[sub]; ok {
				out = append(out, piece{id: id, start: start, end: end})
				start = end
				matched = true
				break
			}
			end--
		}
		if !matched {
			return []piece{{id: t.unkID, start: 0, end: len(word)}}
		}
	}
	if len(out) == 0 {
		return []piece{{id: t.unkID, start: 0, end: len(word)}}
	}
	return out
}

type wordSpan struct {
	Text  string
	Start int
	End   int
}

// splitWords whitespace-splits text while tracking byte offsets.
func splitWords(text string) []wordSpan {
	if text == "" {
		return nil
	}
	var spans []wordSpan
	start := -1
	for idx, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				spans = append(spans, wordSpan{Text: text[start:idx], Start: start, End: idx})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = idx
		}
	}
	if start >= 0 {
		spans = append(spans, wordSpan{Text: text[start:], Start: start, End: len(text)})
	}
	return spans
}
