package main

import (
	"fmt"
	"log"
	"time"

	"github.com/hupe1980/simili/rank"
	"github.com/hupe1980/simili/testutil"
)

func main() {
	seed := int64(4711)
	size := 200000
	k := 10

	rng := testutil.NewRNG(seed)
	tracks := rng.Tracks(size)
	query := rng.Vectors(1)[0]

	pool := make([]rank.Candidate, len(tracks))
	for i, t := range tracks {
		pool[i] = rank.Candidate{ID: t.ID, Vector: t.FeatureVector()}
	}

	fmt.Println("--- Catalog ---")
	fmt.Println("Size:", size)
	fmt.Println()

	for _, workers := range []int{1, 4, 0} {
		fmt.Printf("--- Rank (parallelism=%d) ---\n", workers)

		ranker := rank.New(func(o *rank.Options) {
			o.Parallelism = workers
			o.Limit = k
		})

		start := time.Now()
		result, err := ranker.Rank(query, pool)
		if err != nil {
			log.Fatal(err)
		}
		end := time.Since(start)

		printResult(result)
		fmt.Printf("Seconds: %.8f\n\n", end.Seconds())
	}
}

func printResult(result []rank.Result) {
	for _, r := range result {
		fmt.Printf("ID: %s, Score: %.6f\n", r.ID, r.Score)
	}
}
