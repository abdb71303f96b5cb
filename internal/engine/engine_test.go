// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"scrub-scan/internal/detector"
)

type stubExternal struct {
	name     string
	entities []detector.Entity
	err      error
	calls    int
}

func (s *stubExternal) Name() string { return s.name }

func (s *stubExternal) DetectEntities(ctx context.Context, text string) ([]detector.Entity, error) {
	s.calls++
	return s.entities, s.err
}

func TestDetect_EmailAndPhone(t *testing.T) {
	e := New()
	report := e.Detect(context.Background(), "Contact me at jane@example.com or 555-123-4567.")

	if report.Summary.Total != 2 {
		t.Fatalf("expected 2 entities, got %d: %v", report.Summary.Total, report.Entities)
	}

	first, second := report.Entities[0], report.Entities[1]
	if first.Type != "EMAIL" || first.Text != "jane@example.com" || first.Score != 0.95 {
		t.Errorf("unexpected first entity: %+v", first)
	}
	if second.Type != "PHONE" || second.Text != "555-123-4567" || second.Score != 0.70 {
		t.Errorf("unexpected second entity: %+v", second)
	}
	if first.Start >= second.Start {
		t.Errorf("entities not in start order: %+v, %+v", first, second)
	}
}

func TestDetect_SSNWinsTheInterval(t *testing.T) {
	e := New()
	report := e.Detect(context.Background(), "My SSN is 123-45-6789.")

	if report.Summary.Total != 1 {
		t.Fatalf("expected exactly one entity, got %v", report.Entities)
	}
	got := report.Entities[0]
	if got.Type != "SSN" || got.Score != 0.98 || got.Text != "123-45-6789" {
		t.Errorf("unexpected entity: %+v", got)
	}
}

func TestDetect_EmptyText(t *testing.T) {
	e := New()
	report := e.Detect(context.Background(), "")

	if report.Length != 0 {
		t.Errorf("expected length 0, got %d", report.Length)
	}
	if len(report.Entities) != 0 {
		t.Errorf("expected no entities, got %v", report.Entities)
	}
	if report.Summary.Total != 0 {
		t.Errorf("expected total 0, got %d", report.Summary.Total)
	}
}

func TestDetect_Deterministic(t *testing.T) {
	e := New()
	text := "jane@example.com, 192.168.1.10, license D1234567, https://example.com/x"

	first := e.Detect(context.Background(), text)
	second := e.Detect(context.Background(), text)

	if !reflect.DeepEqual(first.Entities, second.Entities) {
		t.Errorf("detect is not deterministic:\n%v\n%v", first.Entities, second.Entities)
	}
}

func TestDetect_ExternalFailureDegrades(t *testing.T) {
	broken := &stubExternal{name: "broken", err: errors.New("service unavailable")}
	e := New(WithExternal(broken))

	report := e.Detect(context.Background(), "reach jane@example.com")

	if broken.calls != 1 {
		t.Fatalf("expected external to be called once, got %d", broken.calls)
	}
	// Regex results still come through.
	if report.Summary.Total != 1 || report.Entities[0].Type != "EMAIL" {
		t.Errorf("expected the regex EMAIL entity to survive, got %v", report.Entities)
	}
}

func TestDetect_ExternalCandidatesMerge(t *testing.T) {
	text := "Jane Doe wrote to jane@example.com"
	ext := &stubExternal{
		name: "ner",
		entities: []detector.Entity{
			{Type: "PERSON", Score: 0.85, Start: 0, End: 8, Text: "Jane Doe", Source: "ner"},
		},
	}
	e := New(WithExternal(ext))

	report := e.Detect(context.Background(), text)

	if report.Summary.Counts["PERSON"] != 1 || report.Summary.Counts["EMAIL"] != 1 {
		t.Errorf("expected PERSON and EMAIL entities, got %v", report.Entities)
	}
	for i := 1; i < len(report.Entities); i++ {
		if report.Entities[i-1].End > report.Entities[i].Start {
			t.Errorf("entities overlap or out of order: %v", report.Entities)
		}
	}
}

func TestDetect_NilExternalIgnored(t *testing.T) {
	e := New(WithExternal(nil))
	report := e.Detect(context.Background(), "jane@example.com")
	if report.Summary.Total != 1 {
		t.Errorf("expected one entity, got %v", report.Entities)
	}
}

func TestDetectBatch_PreservesOrder(t *testing.T) {
	e := New()
	texts := []string{
		"first jane@example.com",
		"",
		"third 192.168.1.10",
	}

	reports := e.DetectBatch(context.Background(), texts)

	if len(reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(reports))
	}
	if reports[0].Entities[0].Type != "EMAIL" {
		t.Errorf("report 0: expected EMAIL, got %v", reports[0].Entities)
	}
	if reports[1].Summary.Total != 0 {
		t.Errorf("report 1: expected empty, got %v", reports[1].Entities)
	}
	if reports[2].Entities[0].Type != "IP_ADDRESS" {
		t.Errorf("report 2: expected IP_ADDRESS, got %v", reports[2].Entities)
	}
}

func TestDetectBatch_EmptyInput(t *testing.T) {
	e := New()
	if got := e.DetectBatch(context.Background(), nil); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func TestRedact_DefaultToken(t *testing.T) {
	e := New()
	redacted, report := e.Redact(context.Background(), "Contact me at jane@example.com or 555-123-4567.", RedactOptions{})

	want := "Contact me at [REDACTED] or [REDACTED]."
	if redacted != want {
		t.Errorf("expected %q, got %q", want, redacted)
	}
	if report.Summary.Total != 2 {
		t.Errorf("expected 2 entities in report, got %v", report.Entities)
	}
}

func TestRedact_CustomToken(t *testing.T) {
	e := New()
	redacted, _ := e.Redact(context.Background(), "mail jane@example.com", RedactOptions{Token: "<pii>"})
	if redacted != "mail <pii>" {
		t.Errorf("got %q", redacted)
	}
}

func TestRedact_PreserveLastFourOfCard(t *testing.T) {
	e := New()
	redacted, report := e.Redact(context.Background(), "card 4111111111111111 on file", RedactOptions{
		PreserveLastN: map[string]int{"CREDIT_CARD": 4},
	})

	want := "card [REDACTED]1111 on file"
	if redacted != want {
		t.Errorf("expected %q, got %q", want, redacted)
	}
	if report.Entities[0].Type != "CREDIT_CARD" {
		t.Errorf("expected CREDIT_CARD entity, got %+v", report.Entities[0])
	}
}

func TestRedact_ShortFragmentKeptWholeAfterToken(t *testing.T) {
	// A fragment of N or fewer characters is emitted in full after the
	// token rather than truncated.
	if got := replacementFor("abc", "X", "[REDACTED]", map[string]int{"X": 4}); got != "[REDACTED]abc" {
		t.Errorf("got %q", got)
	}
	if got := replacementFor("abcd", "X", "[REDACTED]", map[string]int{"X": 4}); got != "[REDACTED]abcd" {
		t.Errorf("got %q", got)
	}
	if got := replacementFor("abcde", "X", "[REDACTED]", map[string]int{"X": 4}); got != "[REDACTED]bcde" {
		t.Errorf("got %q", got)
	}
}

func TestRedact_PreserveCountsRunes(t *testing.T) {
	if got := replacementFor("héllo", "X", "*", map[string]int{"X": 2}); got != "*lo" {
		t.Errorf("got %q", got)
	}
}

func TestRedact_PreservePolicyIgnoredForOtherTypes(t *testing.T) {
	e := New()
	redacted, _ := e.Redact(context.Background(), "mail jane@example.com", RedactOptions{
		PreserveLastN: map[string]int{"CREDIT_CARD": 4},
	})
	if redacted != "mail [REDACTED]" {
		t.Errorf("got %q", redacted)
	}
}

func TestRedact_NoEntitiesReturnsInputUnchanged(t *testing.T) {
	e := New()
	text := "nothing sensitive here"
	redacted, report := e.Redact(context.Background(), text, RedactOptions{})
	if redacted != text {
		t.Errorf("expected input unchanged, got %q", redacted)
	}
	if report.Summary.Total != 0 {
		t.Errorf("expected empty report, got %v", report.Entities)
	}
}

func TestRedact_TextOutsideSpansUnchanged(t *testing.T) {
	e := New()
	text := "a jane@example.com b 192.168.1.10 c"
	redacted, report := e.Redact(context.Background(), text, RedactOptions{Token: "#"})

	if report.Summary.Total != 2 {
		t.Fatalf("expected 2 entities, got %v", report.Entities)
	}
	if redacted != "a # b # c" {
		t.Errorf("got %q", redacted)
	}
}

func TestRedact_ClampsMalformedExternalSpan(t *testing.T) {
	// An external source reporting an end past the text must not panic
	// the cursor walk.
	ext := &stubExternal{
		name: "bad",
		entities: []detector.Entity{
			{Type: "PERSON", Score: 0.99, Start: 2, End: 500, Text: "oops", Source: "bad"},
		},
	}
	e := New(WithExternal(ext))

	redacted, _ := e.Redact(context.Background(), "hi there", RedactOptions{})
	if redacted != "hi[REDACTED]" {
		t.Errorf("got %q", redacted)
	}
}
