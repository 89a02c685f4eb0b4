package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsJob(t *testing.T) {
	s := New(nil)
	var calls atomic.Int32
	_, err := s.Add("@every 1s", func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, JobOptions{Name: "count"})
	require.NoError(t, err)

	s.Start()
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := New(nil)
	_, err := s.Add("not a schedule", func(context.Context) error { return nil }, JobOptions{Name: "bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"bad"`)
}

func TestScheduler_FailingAndPanickingJobs(t *testing.T) {
	s := New(nil)
	var failed, panicked atomic.Int32
	_, err := s.Add("@every 1s", func(context.Context) error {
		failed.Add(1)
		return errors.New("boom")
	}, JobOptions{Name: "fail"})
	require.NoError(t, err)
	_, err = s.Add("@every 1s", func(context.Context) error {
		panicked.Add(1)
		panic("boom")
	}, JobOptions{Name: "panic"})
	require.NoError(t, err)

	s.Start()
	require.Eventually(t, func() bool {
		return failed.Load() >= 2 && panicked.Load() >= 2
	}, 4*time.Second, 50*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_SkipIfRunning(t *testing.T) {
	s := New(nil)
	var started atomic.Int32
	release := make(chan struct{})
	_, err := s.Add("@every 1s", func(ctx context.Context) error {
		started.Add(1)
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	}, JobOptions{Name: "slow", SkipIfRunning: true})
	require.NoError(t, err)

	s.Start()
	require.Eventually(t, func() bool { return started.Load() == 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(2200 * time.Millisecond)
	assert.Equal(t, int32(1), started.Load())

	close(release)
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_StopCancelsJobContext(t *testing.T) {
	s := New(nil)
	entered := make(chan struct{}, 1)
	_, err := s.Add("@every 1s", func(ctx context.Context) error {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return ctx.Err()
	}, JobOptions{Name: "blocking", SkipIfRunning: true})
	require.NoError(t, err)

	s.Start()
	select {
	case <-entered:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Stop(context.Background()))
}
