package search

import (
	"context"
	"fmt"
	"testing"
)

// BenchmarkSearch measures a full crawl that exhausts a synthetic graph
func BenchmarkSearch(b *testing.B) {
	for _, bfs := range []bool{false, true} {
		for _, workers := range []int{1, 4} {
			name := fmt.Sprintf("bfs=%v/workers=%d", bfs, workers)
			b.Run(name, func(b *testing.B) {
				src := wideGraph(500)
				cfg := Config{
					Source:           "Page 0",
					Target:           "Goal",
					NeighborsToCheck: 3,
					UseBFS:           bfs,
					Workers:          workers,
				}

				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					engine := NewEngine(src, cfg, quietLogger())
					if _, err := engine.Search(context.Background()); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
