// Package retry re-runs operations against remote sources with exponential
// backoff.
package retry

import (
	"context"
	"math"
	"time"

	"github.com/cockroachdb/errors"
)

type Settings struct {
	InitialBackoff time.Duration
	Multiplier     int
	MaxBackoff     time.Duration
	// MaxRetries is the maximum number of attempts. Zero retries forever.
	MaxRetries int
}

func (s Settings) Verify() error {
	if s.InitialBackoff <= 0 {
		return errors.Newf("initial backoff must be set to >= 0, got %s", s.InitialBackoff)
	}
	if s.Multiplier < 1 {
		return errors.Newf("multiplier must be >= 1, got %d", s.Multiplier)
	}
	if s.MaxBackoff > 0 && s.InitialBackoff > s.MaxBackoff {
		return errors.Newf("initial backoff (%s) must be less than max backoff (%s)", s.InitialBackoff, s.MaxBackoff)
	}
	if s.MaxRetries < 0 {
		return errors.Newf("max retries must be >= 0, got %d", s.MaxRetries)
	}
	return nil
}

func DefaultSettings() Settings {
	return Settings{
		InitialBackoff: 250 * time.Millisecond,
		Multiplier:     2,
		MaxBackoff:     5 * time.Second,
		MaxRetries:     4,
	}
}

// Backoff returns how long to wait after the given 1-based attempt failed.
func (s Settings) Backoff(attempt int) time.Duration {
	d := s.InitialBackoff * time.Duration(math.Pow(float64(s.Multiplier), float64(attempt-1)))
	if s.MaxBackoff > 0 && d > s.MaxBackoff {
		d = s.MaxBackoff
	}
	return d
}

var errPermanent = errors.New("permanent error")

// Permanent marks an error as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return errors.Mark(err, errPermanent)
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	return errors.Is(err, errPermanent)
}

// sleep is swapped out in tests.
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do runs fn until it succeeds, returns a permanent error, the context is
// done or the attempts run out. onRetry, if set, is called before each
// wait with the attempt that failed.
func Do(
	ctx context.Context,
	settings Settings,
	onRetry func(attempt int, err error),
	fn func(ctx context.Context) error,
) error {
	if err := settings.Verify(); err != nil {
		return err
	}
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return err
		}
		if settings.MaxRetries > 0 && attempt >= settings.MaxRetries {
			return errors.Wrapf(err, "giving up after %d attempts", attempt)
		}
		if onRetry != nil {
			onRetry(attempt, err)
		}
		if sleepErr := sleep(ctx, settings.Backoff(attempt)); sleepErr != nil {
			return errors.WithSecondaryError(sleepErr, err)
		}
	}
}
