package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunOnceRetriesUntilSuccess(t *testing.T) {
	var calls int32
	p := NewPeriodic("flaky", func(ctx context.Context) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("transient")
		}
		return nil
	}, Config{MaxRetries: 3, RetryDelay: time.Millisecond})

	require.NoError(t, p.RunOnce(context.Background()))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRunOnceGivesUp(t *testing.T) {
	var calls int32
	boom := errors.New("boom")
	p := NewPeriodic("broken", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return boom
	}, Config{MaxRetries: 2, RetryDelay: time.Millisecond})

	err := p.RunOnce(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestStartRunsImmediatelyAndStops(t *testing.T) {
	ran := make(chan struct{}, 8)
	p := NewPeriodic("sweep", func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}, Config{Interval: time.Hour})

	p.Start(context.Background())
	p.Start(context.Background())

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run on start")
	}
	p.Stop()
	p.Stop()
}
