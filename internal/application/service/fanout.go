package service

import (
	"context"
	"sync"
)

// forEachBounded runs fn for every index in [0, n) on at most limit
// goroutines. Callers write into index-addressed slots, so output order
// follows input order regardless of completion order. A cancelled context
// skips indices that have not been picked up yet; work already started is
// left to its own per-call timeout.
func forEachBounded(ctx context.Context, n, limit int, fn func(ctx context.Context, i int)) {
	if n <= 0 {
		return
	}
	if limit <= 0 || limit > n {
		limit = n
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < limit; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(ctx, i)
			}
		}()
	}

	for i := 0; i < n; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)
	wg.Wait()
}
