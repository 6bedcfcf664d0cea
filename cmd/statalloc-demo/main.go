// Command statalloc-demo exercises the allocator the same way the
// teacher's cmd/shmmaster-demo drives its key-value store: a couple of
// goroutines hammering a shared, lock-guarded instance, followed by a
// printed debug rendering of the final state.
package main

import (
	"fmt"
	"sync"

	"statalloc"
)

func main() {
	base, err := statalloc.New(64, 16)
	if err != nil {
		fmt.Println("New:", err)
		return
	}
	safe := statalloc.NewSafe(base)

	var wg sync.WaitGroup
	results := make(chan []byte, 200)

	worker := func(n int) {
		defer wg.Done()
		for i := 0; i < n; i++ {
			p, err := safe.Allocate(24, 8)
			if err != nil {
				return
			}
			results <- p
		}
	}

	wg.Add(2)
	go worker(50)
	go worker(50)
	wg.Wait()
	close(results)

	var held [][]byte
	for p := range results {
		held = append(held, p)
	}
	fmt.Println("after allocating:", safe.String())

	for _, p := range held {
		safe.Deallocate(p, 24, 8)
	}
	fmt.Println("after freeing:   ", safe.String())
	fmt.Println("empty:", safe.IsEmpty())
}
