package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddJob(t *testing.T) {
	s := NewScheduler(nil)
	job := JobFunc{JobName: "report", Fn: func(ctx context.Context) error { return nil }}

	t.Run("Valid five field spec", func(t *testing.T) {
		require.NoError(t, s.AddJob(job, "30 7 * * 1-5"), "Expected AddJob to not return an error")
	})

	t.Run("Descriptor spec", func(t *testing.T) {
		require.NoError(t, s.AddJob(JobFunc{JobName: "daily", Fn: job.Fn}, "@daily"))
	})

	t.Run("Seconds field is rejected", func(t *testing.T) {
		assert.Error(t, s.AddJob(job, "0 30 7 * * *"), "Expected six fields to be rejected")
	})

	t.Run("Invalid spec", func(t *testing.T) {
		assert.Error(t, s.AddJob(job, "every morning"))
	})
}

func TestNext(t *testing.T) {
	s := NewScheduler(nil)
	require.NoError(t, s.AddJob(JobFunc{JobName: "hourly", Fn: func(ctx context.Context) error { return nil }}, "@hourly"))
	s.Start(context.Background())
	defer s.Stop()

	next, ok := s.Next("hourly")
	require.True(t, ok, "Expected the job to be known")
	assert.True(t, next.After(time.Now()), "Expected the next run in the future")
	assert.True(t, next.Before(time.Now().Add(time.Hour+time.Second)), "Expected the next run within the hour")

	_, ok = s.Next("missing")
	assert.False(t, ok)
}

func TestSchedulerRunsJobs(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping scheduler run in short mode")
	}

	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewScheduler(nil)
	require.NoError(t, s.AddJob(JobFunc{JobName: "tick", Fn: func(jobCtx context.Context) error {
		assert.Equal(t, ctx, jobCtx, "Expected the job to receive the start context")
		runs.Add(1)
		return nil
	}}, "@every 1s"))

	s.Start(ctx)
	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}

func TestSchedulerSkipsOverlappingRuns(t *testing.T) {
	var runs atomic.Int32
	release := make(chan struct{})

	s := NewScheduler(nil)
	run := s.wrap(JobFunc{JobName: "slow", Fn: func(ctx context.Context) error {
		runs.Add(1)
		<-release
		return nil
	}}, s.logger)

	done := make(chan struct{})
	go func() {
		run()
		close(done)
	}()

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	run()
	assert.Equal(t, int32(1), runs.Load(), "Expected the overlapping run to be skipped")

	close(release)
	<-done
}
