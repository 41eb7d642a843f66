package ratelimiter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLimiter は固定時刻と待機時間の記録を持つRateLimiterを生成します。
func newTestLimiter(limit int, interval time.Duration, start time.Time) (*RateLimiter, *[]time.Duration) {
	var (
		mu    sync.Mutex
		waits []time.Duration
	)
	rl := NewRateLimiter(limit, interval)
	rl.windowStart = start
	rl.now = func() time.Time { return start }
	rl.sleep = func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		defer mu.Unlock()
		waits = append(waits, d)
		return nil
	}
	return rl, &waits
}

// TestRateLimiter_WithinLimit は上限内の呼び出しが待機しないことを検証します。
func TestRateLimiter_WithinLimit(t *testing.T) {
	t.Parallel()

	rl, waits := newTestLimiter(3, time.Second, time.Unix(1000, 0))

	for i := 0; i < 3; i++ {
		require.NoError(t, rl.Wait(context.Background()))
	}
	assert.Empty(t, *waits)
}

// TestRateLimiter_ExceedingLimitWaitsForNextWindow は上限超過時に次のウィンドウまで待機することを検証します。
func TestRateLimiter_ExceedingLimitWaitsForNextWindow(t *testing.T) {
	t.Parallel()

	rl, waits := newTestLimiter(2, time.Second, time.Unix(1000, 0))

	for i := 0; i < 5; i++ {
		require.NoError(t, rl.Wait(context.Background()))
	}

	// 3,4回目は1秒後のウィンドウ、5回目は2秒後のウィンドウ
	assert.Equal(t, []time.Duration{time.Second, time.Second, 2 * time.Second}, *waits)
}

// TestRateLimiter_WindowResets はinterval経過後にカウントがリセットされることを検証します。
func TestRateLimiter_WindowResets(t *testing.T) {
	t.Parallel()

	start := time.Unix(1000, 0)
	rl, waits := newTestLimiter(1, time.Second, start)

	require.NoError(t, rl.Wait(context.Background()))
	rl.now = func() time.Time { return start.Add(1500 * time.Millisecond) }
	require.NoError(t, rl.Wait(context.Background()))

	assert.Empty(t, *waits)
}

// TestRateLimiter_Unlimited はlimitが0以下の場合に制限しないことを検証します。
func TestRateLimiter_Unlimited(t *testing.T) {
	t.Parallel()

	rl, waits := newTestLimiter(0, time.Second, time.Unix(1000, 0))

	for i := 0; i < 10; i++ {
		require.NoError(t, rl.Wait(context.Background()))
	}
	assert.Empty(t, *waits)
}

// TestRateLimiter_CanceledWhileWaiting は待機中のキャンセルでエラーが返ることを検証します。
func TestRateLimiter_CanceledWhileWaiting(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, time.Hour)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
