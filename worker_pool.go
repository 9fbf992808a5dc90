package space2d

import "sync"

// task runs fn on every element of data, split into contiguous chunks over
// at most workers goroutines, and returns once all of them are done.
func task[T any](workers int, data []T, fn func(data T)) {
	n := len(data)
	if n == 0 {
		return
	}
	workers = max(1, min(workers, n))
	if workers == 1 {
		for _, d := range data {
			fn(d)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := (n + workers - 1) / workers
	for start := 0; start < n; start += chunkSize {
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(data[i])
			}
		}(start, min(start+chunkSize, n))
	}
	wg.Wait()
}
