package llmclient

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/vectorless/pagetree/internal/logger"
)

const (
	tokensPerSecond = 30000
	burstTokens     = 60000

	defaultMaxWorkers = 15

	maxRetries     = 5
	baseRetryDelay = 1 * time.Second
	maxRetryDelay  = 32 * time.Second
)

// Client wraps a Provider with the shared concurrency/rate-limit/retry
// machinery every pipeline phase needs, generalising
// academic-mcp/internal/llm's RateLimitedCall + WorkerPool (a single
// package-global limiter there) into a per-Client instance so multiple
// providers/models can coexist without sharing a bucket.
type Client struct {
	provider Provider
	model    string
	limiter  *rate.Limiter
	pool     *workerPool
	metrics  *Metrics
	log      logger.Logger
}

// New constructs a Client with the default rate limit and worker pool
// size. maxWorkers <= 0 uses the default.
func New(provider Provider, model string, maxWorkers int, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{
		provider: provider,
		model:    model,
		limiter:  rate.NewLimiter(rate.Limit(tokensPerSecond), burstTokens),
		pool:     newWorkerPool(maxWorkers),
		metrics:  NewMetrics(),
		log:      log,
	}
}

// Metrics returns the client's running per-phase counters.
func (c *Client) Metrics() *Metrics { return c.metrics }

// Complete issues one rate-limited, retried completion call tagged with a
// pipeline phase name for metrics (spec.md §4.2, §5). estimatedTokens
// sizes the rate-limiter wait, not a hard cap.
func (c *Client) Complete(ctx context.Context, phase string, estimatedTokens int, systemPrompt, userPrompt string, schema map[string]any) (string, error) {
	if err := c.limiter.WaitN(ctx, estimatedTokens); err != nil {
		return "", fmt.Errorf("llmclient: rate limiter wait: %w", err)
	}

	phaseLog := c.log.WithPhase(phase)

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(baseRetryDelay) * math.Pow(2, float64(attempt-1)))
			if delay > maxRetryDelay {
				delay = maxRetryDelay
			}
			phaseLog.Info("llmclient: retry attempt %d/%d after %v", attempt, maxRetries, delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		result, err := c.provider.Complete(ctx, c.model, systemPrompt, userPrompt, schema)
		if err == nil {
			c.metrics.record(phase, time.Since(start), 1)
			return result, nil
		}

		lastErr = err
		if !isRetryable(err) {
			c.metrics.record(phase, time.Since(start), 1)
			return "", err
		}
		phaseLog.Warn("llmclient: retryable error on attempt %d/%d: %v", attempt+1, maxRetries+1, err)
	}

	c.metrics.record(phase, time.Since(start), maxRetries+1)
	return "", fmt.Errorf("llmclient: max retries (%d) exceeded for phase %s, last error: %w", maxRetries, phase, lastErr)
}

// isRetryable classifies transient errors (rate limits, timeouts,
// transient server errors) as retryable and everything else as
// permanent, generalising the teacher's isRateLimitError substring check
// to the broader set of transient failures a second provider can raise.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, substr := range []string{
		"429", "rate limit", "rate_limit_exceeded", "too many requests",
		"500", "502", "503", "504", "timeout", "connection reset", "overloaded",
	} {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

// Acquire/Release expose the client's worker pool so callers (e.g.
// internal/payload's bounded-concurrency summarizer) can bound their own
// fan-out without building a second semaphore.
func (c *Client) Acquire(ctx context.Context) error { return c.pool.Acquire(ctx) }
func (c *Client) Release()                           { c.pool.Release() }

type workerPool struct {
	semaphore chan struct{}
}

func newWorkerPool(maxWorkers int) *workerPool {
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}
	return &workerPool{semaphore: make(chan struct{}, maxWorkers)}
}

func (wp *workerPool) Acquire(ctx context.Context) error {
	select {
	case wp.semaphore <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (wp *workerPool) Release() { <-wp.semaphore }

// ParallelProcess runs processFn over items using the client's worker
// pool, preserving input order in the result slice. Index-preserving
// concurrent map, generalised from the teacher's ParallelProcess.
func ParallelProcess[T any, R any](ctx context.Context, c *Client, items []T, processFn func(context.Context, int, T) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return []R{}, nil
	}

	results := make([]R, len(items))
	type result struct {
		index int
		value R
		err   error
	}
	resultChan := make(chan result, len(items))

	spawned := 0
	for i, item := range items {
		if err := c.Acquire(ctx); err != nil {
			break
		}
		spawned++
		go func(idx int, itm T) {
			defer c.Release()
			select {
			case <-ctx.Done():
				var zero R
				resultChan <- result{index: idx, value: zero, err: ctx.Err()}
				return
			default:
			}
			val, err := processFn(ctx, idx, itm)
			resultChan <- result{index: idx, value: val, err: err}
		}(i, item)
	}

	var firstErr error
	for i := 0; i < spawned; i++ {
		res := <-resultChan
		if res.err != nil && firstErr == nil {
			firstErr = res.err
		}
		results[res.index] = res.value
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
