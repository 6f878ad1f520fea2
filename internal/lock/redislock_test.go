package lock_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pos-terminal/internal/lock"
)

func newLocker(t *testing.T) lock.Locker {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return lock.Locker{R: client, RetryBackoff: 5 * time.Millisecond}
}

func TestTryWithLockRejectsSecondHolder(t *testing.T) {
	locker := newLocker(t)
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- locker.TryWithLock(ctx, "checkout:cart-1", time.Second, func(context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered
	err := locker.TryWithLock(ctx, "checkout:cart-1", time.Second, func(context.Context) error {
		t.Fatal("second holder must not run")
		return nil
	})
	require.ErrorIs(t, err, lock.ErrHeld)

	close(release)
	require.NoError(t, <-done)

	// Released lock is acquirable again.
	err = locker.TryWithLock(ctx, "checkout:cart-1", time.Second, func(context.Context) error { return nil })
	require.NoError(t, err)
}

func TestTryWithLockReleasesOnError(t *testing.T) {
	locker := newLocker(t)
	ctx := context.Background()

	failure := locker.TryWithLock(ctx, "checkout:cart-2", time.Second, func(context.Context) error {
		return context.DeadlineExceeded
	})
	require.ErrorIs(t, failure, context.DeadlineExceeded)

	err := locker.TryWithLock(ctx, "checkout:cart-2", time.Second, func(context.Context) error { return nil })
	require.NoError(t, err, "lock must be released after a failing callback")
}

func TestWithLockWaits(t *testing.T) {
	locker := newLocker(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	entered := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = locker.TryWithLock(ctx, "demo", time.Second, func(context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered
	acquired := make(chan error, 1)
	go func() {
		acquired <- locker.WithLock(ctx, "demo", time.Second, func(context.Context) error { return nil })
	}()

	close(release)
	require.NoError(t, <-acquired)
}
