package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend is an in-memory Backend.
type fakeBackend struct {
	mu sync.Mutex

	counters   []call
	histograms []call
	flushes    int
	closes     int
	flushErr   error
}

type call struct {
	name   string
	value  float64
	labels Labels
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
	return f.flushErr
}

// closingBackend also implements io.Closer.
type closingBackend struct{ *fakeBackend }

func (c closingBackend) Close() error {
	c.closes++
	return nil
}

func install(t *testing.T, b Backend) {
	t.Helper()
	prev := SetBackend(b)
	t.Cleanup(func() { backend = prev })
}

func TestRecordStep_SuccessAndFailure(t *testing.T) {
	fb := &fakeBackend{}
	install(t, fb)

	RecordStep("listings", "extract", nil, 2*time.Second)
	RecordStep("listings", "load", errors.New("boom"), 1500*time.Millisecond)

	require.Len(t, fb.counters, 2)
	require.Len(t, fb.histograms, 2)

	assert.Equal(t, call{"etl_step_total", 1, Labels{"job": "listings", "step": "extract", "status": "success"}}, fb.counters[0])
	assert.Equal(t, "failure", fb.counters[1].labels["status"])
	assert.Equal(t, "etl_step_duration_seconds", fb.histograms[0].name)
	assert.InDelta(t, 2.0, fb.histograms[0].value, 1e-3)
	assert.InDelta(t, 1.5, fb.histograms[1].value, 1e-3)
}

func TestStartStep(t *testing.T) {
	fb := &fakeBackend{}
	install(t, fb)

	done := StartStep("listings", "transform")
	done(nil)

	require.Len(t, fb.histograms, 1)
	assert.Equal(t, "transform", fb.histograms[0].labels["step"])
	assert.GreaterOrEqual(t, fb.histograms[0].value, 0.0)
}

func TestRecordRowAndBatches(t *testing.T) {
	fb := &fakeBackend{}
	install(t, fb)

	RecordRow("listings", KindExtracted, 3)
	RecordRow("listings", KindDropped, 0) // ignored
	RecordRow("listings", KindLoaded, 5)
	RecordBatches("listings", 2)
	RecordBatches("listings", -1) // ignored

	assert.Equal(t, []call{
		{"etl_records_total", 3, Labels{"job": "listings", "kind": "extracted"}},
		{"etl_records_total", 5, Labels{"job": "listings", "kind": "loaded"}},
		{"etl_batches_total", 2, Labels{"job": "listings"}},
	}, fb.counters)
}

func TestSetBackendFlushAndClose(t *testing.T) {
	fb := &fakeBackend{}
	install(t, fb)

	assert.Same(t, fb, SetBackend(nil), "nil keeps the backend")
	assert.Same(t, fb, backend)

	require.NoError(t, Flush())
	assert.Equal(t, 1, fb.flushes)

	cb := closingBackend{&fakeBackend{flushErr: errors.New("gateway down")}}
	SetBackend(cb)
	assert.EqualError(t, Close(), "gateway down")
	assert.Equal(t, 1, cb.flushes)
	assert.Equal(t, 1, cb.closes)
	assert.Equal(t, nopBackend{}, backend)
}
