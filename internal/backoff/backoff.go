// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package backoff polls a readiness probe with exponential backoff.
package backoff

import (
	"context"
	"fmt"
	"math"
	"time"
)

// BaseDelay is the wait after the first failed probe. Each following wait
// doubles it: 500 ms, 1 s, 2 s, 4 s. Tests override this to avoid real sleeps.
var BaseDelay = 500 * time.Millisecond

const defaultAttempts = 5

// Poll calls probe until it returns nil, at most attempts times. When
// attempts is 0 the default (5) is used. If the context is cancelled during
// a wait, Poll returns ctx.Err(). After the last failed attempt the probe's
// error is returned wrapped with the attempt count.
func Poll(ctx context.Context, attempts int, probe func(context.Context) error) error {
	if attempts <= 0 {
		attempts = defaultAttempts
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = probe(ctx); err == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}

		wait := time.Duration(math.Pow(2, float64(attempt))) * BaseDelay
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("not ready after %d attempt(s): %w", attempts, err)
}
