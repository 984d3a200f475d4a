package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaviermathew/Aragog/internal/metrics"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	require.NotNil(t, m.GetCounter())
	return m.GetCounter().GetValue()
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		jobName     string
		gatewayURL  string
		wantErr     bool
		wantJobName string
	}{
		{name: "missing_gateway", jobName: "x", wantErr: true},
		{name: "default_job", gatewayURL: "http://pushgateway:9091", wantJobName: "aragog"},
		{name: "explicit_job", jobName: "nightly", gatewayURL: "http://pushgateway:9091", wantJobName: "nightly"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewBackend(tt.jobName, tt.gatewayURL)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantJobName, b.jobName)
		})
	}
}

func TestIncCounter(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("job", "http://example.com")
	require.NoError(t, err)

	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"dataset": "d", "step": "build", "status": "success"})
	b.IncCounter(metrics.StepTotal, 2, metrics.Labels{"dataset": "d", "step": "build", "status": "success"})
	b.IncCounter(metrics.RecordsTotal, 500, metrics.Labels{"dataset": "d"})
	b.IncCounter(metrics.PartitionsTotal, 3, metrics.Labels{"dataset": "d", "source": "cached"})
	b.IncCounter(metrics.OverflowedTotal, 1, metrics.Labels{"dataset": "d"})
	b.IncCounter("unknown_metric", 9, nil)

	assert.Equal(t, 3.0, counterValue(t, b.stepCounter.WithLabelValues("d", "build", "success")))
	assert.Equal(t, 500.0, counterValue(t, b.recordCounter.WithLabelValues("d")))
	assert.Equal(t, 3.0, counterValue(t, b.partitionCounter.WithLabelValues("d", "cached")))
	assert.Equal(t, 1.0, counterValue(t, b.overflowedCounter.WithLabelValues("d")))
}

func TestObserveHistogram(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("job", "http://example.com")
	require.NoError(t, err)

	lbls := metrics.Labels{"dataset": "d", "step": "merge", "status": "success"}
	b.ObserveHistogram(metrics.StepDuration, 1.5, lbls)
	b.ObserveHistogram("other", 2, lbls)

	m := &dto.Metric{}
	obs, ok := b.stepDuration.WithLabelValues("d", "merge", "success").(prometheus.Metric)
	require.True(t, ok)
	require.NoError(t, obs.Write(m))
	assert.Equal(t, uint64(1), m.GetSummary().GetSampleCount())
	assert.Equal(t, 1.5, m.GetSummary().GetSampleSum())
}

func TestFlush(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		path string
		body string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		path, body = r.URL.Path, string(b)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b, err := NewBackend("nightly", srv.URL)
	require.NoError(t, err)
	b.IncCounter(metrics.RecordsTotal, 10, metrics.Labels{"dataset": "d"})
	require.NoError(t, b.Flush())

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, strings.HasSuffix(path, "/job/nightly"), path)
	assert.NotEmpty(t, body)
}

func TestFlush_GatewayError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	b, err := NewBackend("nightly", srv.URL)
	require.NoError(t, err)
	require.Error(t, b.Flush())
}
