package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/marketbrief/internal/core/domain"
)

func testSettings() domain.FetchSettings {
	return domain.FetchSettings{
		Timeout:   2 * time.Second,
		Retries:   3,
		Backoff:   time.Millisecond,
		UserAgent: "marketbrief-test/1.0",
	}
}

func TestFetcher_SendsUserAgent(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	var got string
	err := New(testSettings()).Get(context.Background(), "Test", srv.URL, func(b []byte) error {
		got = string(b)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, "marketbrief-test/1.0", ua)
}

func TestFetcher_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	err := New(testSettings()).Get(context.Background(), "Test", srv.URL, func([]byte) error { return nil })

	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
}

func TestFetcher_ExhaustionIsLabelled(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := New(testSettings()).Get(context.Background(), "CoinDesk", srv.URL, func([]byte) error { return nil })

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceFailed)
	var se *domain.SourceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "CoinDesk", se.Source)
	assert.Equal(t, 3, se.Attempts)
	assert.Contains(t, err.Error(), "CoinDesk: failed after 3 attempts")
	assert.Equal(t, int32(3), hits.Load())

	var status *StatusError
	require.True(t, errors.As(err, &status))
	assert.Equal(t, http.StatusServiceUnavailable, status.Code)
}

func TestFetcher_ClientErrorsAreNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := New(testSettings()).Get(context.Background(), "Gone", srv.URL, func([]byte) error { return nil })

	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetcher_TooManyRequestsIsRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	err := New(testSettings()).Get(context.Background(), "Busy", srv.URL, func([]byte) error { return nil })

	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetcher_DecodeErrorIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	err := New(testSettings()).Get(context.Background(), "Broken", srv.URL, func([]byte) error {
		return errors.New("not a feed")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a feed")
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetcher_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	settings := testSettings()
	settings.Timeout = 20 * time.Millisecond
	settings.Retries = 1

	err := New(settings).Get(context.Background(), "Slow", srv.URL, func([]byte) error { return nil })
	assert.ErrorIs(t, err, domain.ErrSourceFailed)
}

func TestHostLimiter_SpacesRequests(t *testing.T) {
	limiter := NewHostLimiter(20) // one every 50ms
	ctx := context.Background()

	start := time.Now()
	for range 3 {
		require.NoError(t, limiter.Wait(ctx, "https://a.example/feed"))
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)

	// A different host has its own budget.
	start = time.Now()
	require.NoError(t, limiter.Wait(ctx, "https://b.example/feed"))
	assert.Less(t, time.Since(start), 40*time.Millisecond)
}

func TestHostLimiter_Disabled(t *testing.T) {
	limiter := NewHostLimiter(0)
	start := time.Now()
	for range 50 {
		require.NoError(t, limiter.Wait(context.Background(), "https://a.example/"))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestHostLimiter_RejectsMissingHost(t *testing.T) {
	err := NewHostLimiter(1).Wait(context.Background(), "/relative/path")
	assert.Error(t, err)
}
