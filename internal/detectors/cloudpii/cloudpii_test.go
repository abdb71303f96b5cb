// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cloudpii

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrub-scan/internal/detector"
)

type fakeClient struct {
	entities []RawEntity
	err      error
	delay    time.Duration
}

func (f *fakeClient) DetectPIIEntities(ctx context.Context, text string) ([]RawEntity, error) {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.entities, f.err
}

func TestNew_RequiresClient(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestDetectEntities_LabelMapping(t *testing.T) {
	text := "card 4111111111111111 for Jane Doe"
	client := &fakeClient{entities: []RawEntity{
		{Type: "CREDIT_DEBIT_NUMBER", Score: 0.99, BeginOffset: 5, EndOffset: 21},
		{Type: "NAME", Score: 0.87, BeginOffset: 26, EndOffset: 34},
	}}

	d, err := New(client)
	require.NoError(t, err)

	got, err := d.DetectEntities(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "CREDIT_CARD", got[0].Type)
	assert.Equal(t, 0.99, got[0].Score)
	assert.Equal(t, "4111111111111111", got[0].Text)
	assert.Equal(t, detector.SourceComprehend, got[0].Source)

	assert.Equal(t, "PERSON", got[1].Type)
	assert.Equal(t, "Jane Doe", got[1].Text)
}

func TestDetectEntities_UnmappedLabelPassesThrough(t *testing.T) {
	client := &fakeClient{entities: []RawEntity{
		{Type: "PASSPORT_NUMBER", Score: 0.8, BeginOffset: 0, EndOffset: 4},
	}}
	d, err := New(client)
	require.NoError(t, err)

	got, err := d.DetectEntities(context.Background(), "N123 issued")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "PASSPORT_NUMBER", got[0].Type)
}

func TestDetectEntities_MalformedSpansDropped(t *testing.T) {
	client := &fakeClient{entities: []RawEntity{
		{Type: "EMAIL", Score: 0.9, BeginOffset: -1, EndOffset: 3},
		{Type: "EMAIL", Score: 0.9, BeginOffset: 2, EndOffset: 100},
		{Type: "EMAIL", Score: 0.9, BeginOffset: 4, EndOffset: 4},
	}}
	d, err := New(client)
	require.NoError(t, err)

	got, err := d.DetectEntities(context.Background(), "short text")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDetectEntities_ServiceErrorPropagates(t *testing.T) {
	client := &fakeClient{err: errors.New("throttled")}
	d, err := New(client)
	require.NoError(t, err)

	_, err = d.DetectEntities(context.Background(), "anything")
	require.Error(t, err)
}

func TestDetectEntities_TimeoutBecomesError(t *testing.T) {
	client := &fakeClient{delay: 5 * time.Second}
	d, err := New(client, WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	_, err = d.DetectEntities(context.Background(), "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
