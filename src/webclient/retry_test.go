package webclient_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cryptiklemur/discordarr/src/webclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoWithRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	status, body, err := webclient.DoWithRetry(context.Background(), 3, time.Millisecond, func() (int, []byte, error) {
		calls++
		return 200, []byte("ok"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Equal(t, []byte("ok"), body)
	assert.Equal(t, 1, calls)
}

func TestDoWithRetryRetriesServerErrors(t *testing.T) {
	calls := 0
	status, _, err := webclient.DoWithRetry(context.Background(), 3, time.Millisecond, func() (int, []byte, error) {
		calls++
		if calls < 3 {
			return 503, nil, nil
		}
		return 200, nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Equal(t, 3, calls)
}

func TestDoWithRetryRetriesRateLimits(t *testing.T) {
	calls := 0
	status, _, err := webclient.DoWithRetry(context.Background(), 2, time.Millisecond, func() (int, []byte, error) {
		calls++
		if calls == 1 {
			return 429, nil, nil
		}
		return 200, nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Equal(t, 2, calls)
}

func TestDoWithRetryClientErrorsArePermanent(t *testing.T) {
	calls := 0
	status, _, err := webclient.DoWithRetry(context.Background(), 3, time.Millisecond, func() (int, []byte, error) {
		calls++
		return 404, nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 404, status)
	assert.Equal(t, 1, calls)
}

func TestDoWithRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("connection reset")
	_, _, err := webclient.DoWithRetry(context.Background(), 3, time.Millisecond, func() (int, []byte, error) {
		calls++
		return 0, nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestDoWithRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := webclient.DoWithRetry(ctx, 5, time.Hour, func() (int, []byte, error) {
		return 500, nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
