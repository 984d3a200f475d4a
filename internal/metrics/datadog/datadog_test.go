package datadog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaviermathew/Aragog/internal/metrics"
)

type sent struct {
	kind  string
	name  string
	value float64
	tags  []string
}

type fakeClient struct {
	sent    []sent
	flushed int
	closed  bool
}

func (f *fakeClient) Count(name string, value int64, tags []string, _ float64) error {
	f.sent = append(f.sent, sent{"count", name, float64(value), tags})
	return nil
}

func (f *fakeClient) Histogram(name string, value float64, tags []string, _ float64) error {
	f.sent = append(f.sent, sent{"histogram", name, value, tags})
	return nil
}

func (f *fakeClient) Flush() error { f.flushed++; return nil }

func (f *fakeClient) Close() error {
	if f.closed {
		return errors.New("already closed")
	}
	f.closed = true
	return nil
}

func TestBackendSends(t *testing.T) {
	t.Parallel()

	fc := &fakeClient{}
	b := &Backend{client: fc}

	b.IncCounter(metrics.RecordsTotal, 42.9, metrics.Labels{"dataset": "orders"})
	b.ObserveHistogram(metrics.StepDuration, 0.25, metrics.Labels{"step": "build", "dataset": "orders"})
	require.NoError(t, b.Flush())
	require.NoError(t, b.Close())

	assert.Equal(t, []sent{
		{"count", metrics.RecordsTotal, 42, []string{"dataset:orders"}},
		{"histogram", metrics.StepDuration, 0.25, []string{"dataset:orders", "step:build"}},
	}, fc.sent)
	assert.Equal(t, 1, fc.flushed)
	assert.True(t, fc.closed)
}

func TestLabelsToTags(t *testing.T) {
	t.Parallel()

	assert.Nil(t, labelsToTags(nil))
	assert.Equal(t, []string{"a:1", "b:2"}, labelsToTags(metrics.Labels{"b": "2", "a": "1"}))
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	b, err := NewBackend(Config{Addr: "127.0.0.1:8125", Namespace: "aragog.", Tags: []string{"env:test"}})
	require.NoError(t, err)
	b.IncCounter(metrics.RecordsTotal, 1, nil)
	require.NoError(t, b.Close())
}
