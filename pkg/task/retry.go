package task

import (
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryProgress is a snapshot of a Retry.
type RetryProgress struct {
	Done        bool
	Attempts    int
	LastErr     error
	NextAttempt time.Time
}

// MaxPause bounds how long a Resume of a Retry waits for its next attempt to be due.
const MaxPause = 10 * time.Millisecond

// Retry calls an attempt function until it succeeds or maxAttempts is reached.
// Attempts are spaced by a backoff policy. When the next attempt is not due, Resume pauses
// for at most MaxPause and returns without attempting. Retry is a Waiter, so the scheduler
// requeues it behind the other tasks while it waits.
type Retry[T any] struct {
	attempt     func() (T, error)
	maxAttempts int
	policy      backoff.BackOff
	now         func() time.Time

	mu       sync.Mutex
	attempts int
	next     time.Time
	lastErr  error
	data     T
	done     bool
	taken    bool
}

// RetryOption configures a Retry.
type RetryOption func(*retryConfig)

type retryConfig struct {
	policy backoff.BackOff
	now    func() time.Time
}

// WithBackOff replaces the default exponential policy.
func WithBackOff(b backoff.BackOff) RetryOption {
	return func(c *retryConfig) {
		if b != nil {
			c.policy = b
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) RetryOption {
	return func(c *retryConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// NewRetry returns a task calling attempt at most maxAttempts times (at least once).
func NewRetry[T any](maxAttempts int, attempt func() (T, error), opts ...RetryOption) *Retry[T] {
	cfg := &retryConfig{now: time.Now}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.policy == nil {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 100 * time.Millisecond
		b.MaxInterval = 5 * time.Second
		cfg.policy = b
	}
	cfg.policy.Reset()

	return &Retry[T]{
		attempt:     attempt,
		maxAttempts: max(maxAttempts, 1),
		policy:      cfg.policy,
		now:         cfg.now,
	}
}

func (r *Retry[T]) Resume() {
	r.mu.Lock()
	if r.done {
		r.mu.Unlock()
		return
	}
	if wait := r.next.Sub(r.now()); wait > 0 {
		r.mu.Unlock()
		time.Sleep(min(wait, MaxPause))
		return
	}
	r.mu.Unlock()

	data, err := r.attempt()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.attempts++
	if err == nil {
		r.data = data
		r.lastErr = nil
		r.done = true
		return
	}

	r.lastErr = err
	if r.attempts >= r.maxAttempts {
		r.done = true
		return
	}

	delay := r.policy.NextBackOff()
	if delay == backoff.Stop {
		r.done = true
		return
	}
	r.next = r.now().Add(delay)
}

func (r *Retry[T]) Progress() RetryProgress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RetryProgress{
		Done:        r.done,
		Attempts:    r.attempts,
		LastErr:     r.lastErr,
		NextAttempt: r.next,
	}
}

// WaitingUntil returns when the next attempt is due, or the zero time once the Retry is done.
func (r *Retry[T]) WaitingUntil() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		return time.Time{}
	}
	return r.next
}

func (r *Retry[T]) IsComplete() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Result returns the first successful value, or the last error wrapped with the number of
// attempts made.
func (r *Retry[T]) Result() Result[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.done {
		panic("task: Retry.Result called before completion")
	}
	if r.taken {
		panic("task: Retry.Result called twice")
	}
	r.taken = true

	if r.lastErr != nil {
		return Result[T]{Err: fmt.Errorf("gave up after %d attempts: %w", r.attempts, r.lastErr)}
	}
	return Result[T]{Data: r.data}
}
