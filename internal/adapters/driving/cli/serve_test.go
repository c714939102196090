package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func TestServeCmd_StopsOnCancel(t *testing.T) {
	rt := newTestRuntime()
	setDeps(t, Dependencies{Bootstrap: rt.bootstrap})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, _, err := execute(t, ctx, "serve")
		errCh <- err
	}()

	waitFor(t, func() bool { return len(rt.options()) == 1 })
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not stop")
	}
	assert.False(t, rt.options()[0].SkipRunOnStart)
	waitFor(t, func() bool {
		rt.mu.Lock()
		defer rt.mu.Unlock()
		return rt.closed == 1
	})
}

func TestServeCmd_ReloadsOnConfigChange(t *testing.T) {
	rt := newTestRuntime()
	changes := make(chan func(error), 4)
	setDeps(t, Dependencies{
		Bootstrap: rt.bootstrap,
		WatchConfig: func(ctx context.Context, path string, onChange func(error)) error {
			assert.Equal(t, "/tmp/marketbrief/config.toml", path)
			changes <- onChange
			<-ctx.Done()
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() {
		_, _, err := execute(t, ctx, "serve")
		errCh <- err
	}()

	first := <-changes
	// A rejected file keeps the current generation.
	first(errors.New("invalid configuration"))
	first(nil)

	second := <-changes
	require.NotNil(t, second)

	opts := rt.options()
	require.Len(t, opts, 2)
	assert.False(t, opts[0].SkipRunOnStart)
	assert.True(t, opts[1].SkipRunOnStart)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestServeCmd_BootstrapError(t *testing.T) {
	rt := newTestRuntime()
	rt.bootErr = errors.New("open store: locked")
	setDeps(t, Dependencies{Bootstrap: rt.bootstrap})

	_, _, err := execute(t, context.Background(), "serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "open store: locked")
}
