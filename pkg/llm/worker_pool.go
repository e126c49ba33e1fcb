package llm

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// WorkerPoolConfig configures the worker pool.
type WorkerPoolConfig struct {
	MaxConcurrent int // default 4
}

// DefaultWorkerPoolConfig returns the default pool size.
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{MaxConcurrent: 4}
}

// WorkerPool bounds the number of concurrent model or embedding calls.
type WorkerPool struct {
	config WorkerPoolConfig
	logger *zap.Logger
}

// NewWorkerPool creates a worker pool.
func NewWorkerPool(config WorkerPoolConfig, logger *zap.Logger) *WorkerPool {
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = DefaultWorkerPoolConfig().MaxConcurrent
	}
	return &WorkerPool{
		config: config,
		logger: logger.Named("llm.worker_pool"),
	}
}

// WorkItem is a unit of work.
type WorkItem[T any] struct {
	ID      string
	Execute func(ctx context.Context) (T, error)
}

// WorkResult is the outcome of one WorkItem.
type WorkResult[T any] struct {
	ID     string
	Result T
	Err    error
}

// Process runs all items with bounded parallelism and returns results in
// submission order. A failing item does not stop the others; items still
// waiting for a slot when ctx is done report ctx.Err().
func Process[T any](
	ctx context.Context,
	pool *WorkerPool,
	items []WorkItem[T],
	onProgress func(completed, total int),
) []WorkResult[T] {
	if len(items) == 0 {
		return nil
	}

	results := make([]WorkResult[T], len(items))
	sem := make(chan struct{}, pool.config.MaxConcurrent)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)

	for i, item := range items {
		wg.Add(1)
		go func(i int, item WorkItem[T]) {
			defer wg.Done()

			res := WorkResult[T]{ID: item.ID}
			select {
			case sem <- struct{}{}:
				res.Result, res.Err = item.Execute(ctx)
				<-sem
			case <-ctx.Done():
				res.Err = ctx.Err()
			}
			results[i] = res

			if res.Err != nil {
				pool.logger.Debug("Work item failed", zap.String("id", item.ID), zap.Error(res.Err))
			}

			mu.Lock()
			completed++
			if onProgress != nil {
				onProgress(completed, len(items))
			}
			mu.Unlock()
		}(i, item)
	}

	wg.Wait()
	return results
}
