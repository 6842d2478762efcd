package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one run of periodic maintenance work.
type Task func(context.Context) error

// Config configures a Periodic runner.
type Config struct {
	Interval   time.Duration
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Periodic runs a task immediately on Start and then once per interval.
// A failed run is retried up to MaxRetries times before waiting for the next tick.
type Periodic struct {
	name string
	task Task

	interval   time.Duration
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewPeriodic builds a runner for task.
func NewPeriodic(name string, task Task, cfg Config) *Periodic {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Periodic{
		name:       name,
		task:       task,
		interval:   cfg.Interval,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
	}
}

// Start launches the background loop. Safe to call once.
func (p *Periodic) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.started = true

	p.wg.Add(1)
	go p.loop(loopCtx)
	p.logger.Sugar().Infow("job started", "job", p.name, "interval", p.interval.String())
}

// Stop cancels the loop and waits for an in-flight run to return.
func (p *Periodic) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.started = false
	p.mu.Unlock()
	p.wg.Wait()
	p.logger.Sugar().Infow("job stopped", "job", p.name)
}

// RunOnce executes the task with retries and returns the last error.
func (p *Periodic) RunOnce(ctx context.Context) error {
	var err error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Sugar().Warnw("job failed, retrying", "job", p.name, "attempt", attempt, "error", err)
			timer := time.NewTimer(p.retryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		if err = p.task(ctx); err == nil {
			return nil
		}
	}
	return fmt.Errorf("job %s exceeded retries: %w", p.name, err)
}

func (p *Periodic) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.RunOnce(ctx); err != nil && ctx.Err() == nil {
			p.logger.Sugar().Errorw("job run failed", "job", p.name, "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
