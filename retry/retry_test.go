package retry

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestVerifySettings(t *testing.T) {
	for _, tc := range []struct {
		desc          string
		settings      Settings
		expectedError string
	}{
		{
			desc:     "default settings",
			settings: DefaultSettings(),
		},
		{
			desc:          "initial backoff bad settings",
			settings:      Settings{},
			expectedError: "initial backoff must be set to >= 0, got 0s",
		},
		{
			desc:          "multiplier bad",
			settings:      Settings{InitialBackoff: time.Second},
			expectedError: "multiplier must be >= 1, got 0",
		},
		{
			desc:          "max backoff bad",
			settings:      Settings{InitialBackoff: time.Second, Multiplier: 5, MaxBackoff: time.Millisecond},
			expectedError: "initial backoff (1s) must be less than max backoff (1ms)",
		},
		{
			desc:          "negative retries",
			settings:      Settings{InitialBackoff: time.Second, Multiplier: 2, MaxRetries: -1},
			expectedError: "max retries must be >= 0, got -1",
		},
		{
			desc:     "everything valid",
			settings: Settings{InitialBackoff: time.Second, Multiplier: 5, MaxBackoff: time.Hour},
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			err := tc.settings.Verify()
			if tc.expectedError != "" {
				require.EqualError(t, err, tc.expectedError)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestBackoff(t *testing.T) {
	for _, tc := range []struct {
		desc     string
		settings Settings
		expected []time.Duration
	}{
		{
			desc:     "uncapped",
			settings: Settings{InitialBackoff: time.Second, Multiplier: 2},
			expected: []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second},
		},
		{
			desc:     "capped",
			settings: Settings{InitialBackoff: time.Second, Multiplier: 2, MaxBackoff: 3 * time.Second},
			expected: []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second},
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			for i, expected := range tc.expected {
				require.Equal(t, expected, tc.settings.Backoff(i+1))
			}
		})
	}
}

func withFakeSleep(t *testing.T) *[]time.Duration {
	var waits []time.Duration
	old := sleep
	sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	t.Cleanup(func() { sleep = old })
	return &waits
}

func TestDo(t *testing.T) {
	settings := Settings{InitialBackoff: time.Second, Multiplier: 2, MaxRetries: 3}
	boom := errors.New("boom")

	t.Run("succeeds after failures", func(t *testing.T) {
		waits := withFakeSleep(t)
		var attempts []int
		calls := 0
		err := Do(context.Background(), settings, func(attempt int, err error) {
			attempts = append(attempts, attempt)
		}, func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return boom
			}
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 3, calls)
		require.Equal(t, []int{1, 2}, attempts)
		require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *waits)
	})

	t.Run("gives up", func(t *testing.T) {
		withFakeSleep(t)
		calls := 0
		err := Do(context.Background(), settings, nil, func(ctx context.Context) error {
			calls++
			return boom
		})
		require.EqualError(t, err, "giving up after 3 attempts: boom")
		require.True(t, errors.Is(err, boom))
		require.Equal(t, 3, calls)
	})

	t.Run("permanent error", func(t *testing.T) {
		withFakeSleep(t)
		calls := 0
		err := Do(context.Background(), settings, nil, func(ctx context.Context) error {
			calls++
			return Permanent(boom)
		})
		require.True(t, IsPermanent(err))
		require.True(t, errors.Is(err, boom))
		require.Equal(t, 1, calls)
	})

	t.Run("cancelled context", func(t *testing.T) {
		withFakeSleep(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := Do(ctx, settings, nil, func(ctx context.Context) error {
			return boom
		})
		require.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("bad settings", func(t *testing.T) {
		require.Error(t, Do(context.Background(), Settings{}, nil, func(ctx context.Context) error {
			return nil
		}))
	})
}
