// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Use a tiny base delay so tests finish quickly.
	BaseDelay = 1 * time.Millisecond
}

func TestPoll_ImmediateSuccess(t *testing.T) {
	calls := 0
	err := Poll(context.Background(), 3, func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPoll_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Poll(context.Background(), 5, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("starting")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPoll_ExhaustsAttempts(t *testing.T) {
	probeErr := errors.New("soffice not found")
	calls := 0
	err := Poll(context.Background(), 3, func(context.Context) error {
		calls++
		return probeErr
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, probeErr)
	assert.Contains(t, err.Error(), "3 attempt(s)")
	assert.Equal(t, 3, calls)
}

func TestPoll_DefaultAttempts(t *testing.T) {
	calls := 0
	_ = Poll(context.Background(), 0, func(context.Context) error {
		calls++
		return errors.New("down")
	})
	assert.Equal(t, defaultAttempts, calls)
}

func TestPoll_ContextCancelled(t *testing.T) {
	orig := BaseDelay
	BaseDelay = 1 * time.Second
	defer func() { BaseDelay = orig }()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := Poll(ctx, 5, func(context.Context) error {
		calls++
		return errors.New("down")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}
