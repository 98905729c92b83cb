package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	var mu sync.Mutex
	processed := make([]string, 0, 3)
	done := make(chan struct{}, 3)

	queue := NewQueue("test", func(ctx context.Context, job Job) error {
		mu.Lock()
		processed = append(processed, job.ID)
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, QueueConfig{Workers: 2})
	queue.Start(context.Background())
	defer queue.Stop()

	for _, id := range []string{"j1", "j2", "j3"} {
		require.NoError(t, queue.Enqueue(Job{ID: id, Type: "noop"}))
	}
	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for jobs")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, processed, 3)
}

func TestQueueRetriesFailedJob(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	succeeded := make(chan struct{})

	queue := NewQueue("test", func(ctx context.Context, job Job) error {
		mu.Lock()
		attempts++
		current := attempts
		mu.Unlock()
		if current < 3 {
			return errors.New("transient")
		}
		close(succeeded)
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 5, RetryDelay: 10 * time.Millisecond})
	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(Job{ID: "j1", Type: "flaky"}))

	select {
	case <-succeeded:
	case <-time.After(2 * time.Second):
		t.Fatal("job never succeeded")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, attempts)
}

func TestQueueDropsJobAfterRetryBudget(t *testing.T) {
	var mu sync.Mutex
	attempts := 0

	queue := NewQueue("test", func(ctx context.Context, job Job) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return errors.New("permanent")
	}, QueueConfig{Workers: 1, MaxRetries: 2, RetryDelay: 5 * time.Millisecond})
	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(Job{ID: "j1", Type: "broken"}))

	// First run plus two retries, then the job is dropped.
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts == 3
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, attempts)
}

func TestQueueStopDrainsBufferedJobs(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	processed := 0

	queue := NewQueue("test", func(ctx context.Context, job Job) error {
		<-release
		mu.Lock()
		processed++
		mu.Unlock()
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 8})
	queue.Start(context.Background())

	// The single worker blocks on the first job; the rest sit in the buffer
	// when Stop is called.
	for i := 0; i < 4; i++ {
		require.NoError(t, queue.Enqueue(Job{ID: "j", Type: "slow"}))
	}
	close(release)
	queue.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 4, processed)
}

func TestQueueEnqueueAfterStopFails(t *testing.T) {
	queue := NewQueue("test", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	queue.Start(context.Background())
	queue.Stop()

	err := queue.Enqueue(Job{ID: "j1"})
	require.Error(t, err)
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	queue := NewQueue("test", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})

	err := queue.Enqueue(Job{ID: "j1"})
	require.Error(t, err)
}
