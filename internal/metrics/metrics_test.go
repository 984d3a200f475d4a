package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name   string
	value  float64
	labels Labels
}

// fakeBackend records every call in memory.
type fakeBackend struct {
	mu         sync.Mutex
	counters   []call
	histograms []call
	flushes    int
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = append(f.counters, call{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histograms = append(f.histograms, call{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	return nil
}

// install swaps in a fake for the duration of a test. Tests using it do not
// run in parallel because the backend is process-wide.
func install(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}
	SetBackend(fb)
	t.Cleanup(func() { SetBackend(nil) })
	return fb
}

func TestRecordStep(t *testing.T) {
	fb := install(t)

	RecordStep("orders", "build", nil, 2*time.Second)
	RecordStep("orders", "finalize", errors.New("ambiguous"), 1500*time.Millisecond)

	require.Len(t, fb.counters, 2)
	require.Len(t, fb.histograms, 2)

	assert.Equal(t, call{StepTotal, 1, Labels{"dataset": "orders", "step": "build", "status": "success"}}, fb.counters[0])
	assert.Equal(t, "failure", fb.counters[1].labels["status"])
	assert.Equal(t, StepDuration, fb.histograms[1].name)
	assert.InDelta(t, 1.5, fb.histograms[1].value, 1e-9)
}

func TestRecordCounters(t *testing.T) {
	fb := install(t)

	RecordRecords("orders", 120)
	RecordRecords("orders", 0)
	RecordPartitions("orders", "cached", 3)
	RecordPartitions("orders", "built", -1)
	RecordOverflowed("orders", 2)

	assert.Equal(t, []call{
		{RecordsTotal, 120, Labels{"dataset": "orders"}},
		{PartitionsTotal, 3, Labels{"dataset": "orders", "source": "cached"}},
		{OverflowedTotal, 2, Labels{"dataset": "orders"}},
	}, fb.counters)
}

func TestFlushAndDefault(t *testing.T) {
	fb := install(t)
	require.NoError(t, Flush())
	assert.Equal(t, 1, fb.flushes)

	SetBackend(nil)
	RecordStep("x", "read", nil, time.Millisecond)
	require.NoError(t, Flush())
	assert.Equal(t, 1, fb.flushes)
}
