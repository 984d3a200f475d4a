package httpds

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient records backoff waits instead of sleeping.
func newTestClient(cfg Config) (*Client, *[]time.Duration) {
	c := NewClient(cfg)
	var waits []time.Duration
	c.wait = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return c, &waits
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{InsecureSkipVerify: true, MaxRetries: -1})

	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
	assert.Equal(t, 0, c.maxRetries)
	assert.Equal(t, 200*time.Millisecond, c.initialBackoff)
	assert.Equal(t, 5*time.Second, c.maxBackoff)

	tp, ok := c.httpClient.Transport.(*http.Transport)
	require.True(t, ok, "got %T", c.httpClient.Transport)
	require.NotNil(t, tp.TLSClientConfig)
	assert.True(t, tp.TLSClientConfig.InsecureSkipVerify)
}

func TestNewClient_CustomTransportWins(t *testing.T) {
	t.Parallel()

	custom := &http.Transport{TLSClientConfig: &tls.Config{}}
	c := NewClient(Config{Transport: custom, InsecureSkipVerify: true})

	assert.Same(t, custom, c.httpClient.Transport)
	assert.False(t, custom.TLSClientConfig.InsecureSkipVerify)
}

func TestDo_Retries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statuses   []int // per attempt; last repeats
		maxRetries int
		wantHits   int32
		wantStatus int
		wantErr    bool
		wantWaits  int
	}{
		{name: "ok_first_try", statuses: []int{200}, maxRetries: 3, wantHits: 1, wantStatus: 200},
		{name: "5xx_then_ok", statuses: []int{500, 502, 200}, maxRetries: 3, wantHits: 3, wantStatus: 200, wantWaits: 2},
		{name: "429_then_ok", statuses: []int{429, 200}, maxRetries: 1, wantHits: 2, wantStatus: 200, wantWaits: 1},
		{name: "exhausted", statuses: []int{503}, maxRetries: 2, wantHits: 3, wantErr: true, wantWaits: 2},
		{name: "400_not_retried", statuses: []int{400}, maxRetries: 5, wantHits: 1, wantStatus: 400},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var hits int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := int(atomic.AddInt32(&hits, 1)) - 1
				if n >= len(tt.statuses) {
					n = len(tt.statuses) - 1
				}
				w.WriteHeader(tt.statuses[n])
			}))
			defer srv.Close()

			c, waits := newTestClient(Config{
				MaxRetries:     tt.maxRetries,
				InitialBackoff: time.Millisecond,
				MaxBackoff:     4 * time.Millisecond,
			})

			resp, err := c.Get(context.Background(), srv.URL, nil)
			if tt.wantErr {
				require.Error(t, err)
				var se *StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, 503, se.Code)
			} else {
				require.NoError(t, err)
				defer resp.Body.Close()
				assert.Equal(t, tt.wantStatus, resp.StatusCode)
			}
			assert.Equal(t, tt.wantHits, atomic.LoadInt32(&hits))
			assert.Len(t, *waits, tt.wantWaits)
		})
	}
}

func TestDo_HeadersAndBasicAuth(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "reader" || pass != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprintf(w, "%s|%s", r.Header.Get("X-Tenant"), r.Header.Get("Accept"))
	}))
	defer srv.Close()

	c := NewClient(Config{
		Username:    "reader",
		Password:    "s3cret",
		BaseHeaders: http.Header{"X-Tenant": {"acme"}, "Accept": {"text/plain"}},
	})

	resp, err := c.Get(context.Background(), srv.URL, http.Header{"Accept": {"application/json"}})
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "acme|application/json", string(b))
}

func TestDo_Validation(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{})
	_, err := c.Do(context.Background(), "", "http://x", nil, nil)
	require.Error(t, err)
	_, err = c.Do(context.Background(), http.MethodGet, "", nil, nil)
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Get(ctx, "http://127.0.0.1:1", nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestGetJSON(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count": 12345678901234, "name": "x"}`)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/garbage", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{not json`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(Config{})
	ctx := context.Background()

	var got map[string]any
	require.NoError(t, c.GetJSON(ctx, srv.URL+"/ok", &got))
	assert.Equal(t, "12345678901234", fmt.Sprint(got["count"]))
	assert.IsType(t, json.Number(""), got["count"])

	var se *StatusError
	err := c.GetJSON(ctx, srv.URL+"/missing", &got)
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)

	require.Error(t, c.GetJSON(ctx, srv.URL+"/garbage", &got))
}

func TestURLOpen(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusGone)
			return
		}
		fmt.Fprint(w, "a,b\n1,2\n")
	}))
	defer srv.Close()

	c := NewClient(Config{})

	rc, err := URL{Client: c, Href: srv.URL + "/data.csv"}.Open(context.Background())
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "a,b\n1,2\n", string(b))

	_, err = URL{Client: c, Href: srv.URL + "/gone"}.Open(context.Background())
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusGone, se.Code)
}

func TestBackoffDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		initial time.Duration
		attempt int
		want    time.Duration
	}{
		{100 * time.Millisecond, 0, 100 * time.Millisecond},
		{100 * time.Millisecond, 1, 200 * time.Millisecond},
		{100 * time.Millisecond, 2, 400 * time.Millisecond},
		{600 * time.Millisecond, 1, time.Second},
		{100 * time.Millisecond, 62, time.Second},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(fmt.Sprintf("%v/%d", tt.initial, tt.attempt), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, backoffDuration(tt.initial, tt.attempt, time.Second))
		})
	}
}

func TestWaitContext_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, waitContext(ctx, time.Minute), context.Canceled)
	require.NoError(t, waitContext(context.Background(), time.Millisecond))
}
