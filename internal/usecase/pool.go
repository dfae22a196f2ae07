package usecase

import (
	"context"
	"sync"
)

// forEach calls fn for every index in [0,n) on at most workers goroutines and
// waits for all of them. Indexes not yet started when ctx ends are passed to fn
// anyway so that callers can record the cancellation per item.
func forEach(ctx context.Context, n, workers int, fn func(ctx context.Context, i int)) {
	if n == 0 {
		return
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(ctx, i)
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}
