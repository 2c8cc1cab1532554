package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/tdhoang/quotebook/pkg/book"
)

const (
	numOrders = 1_000_000
	minPrice  = 10_000
	maxPrice  = 20_000
	minQty    = 1
	maxQty    = 100
	capacity  = 4096
)

func randomSide(r *rand.Rand) book.Side {
	if r.Intn(2) == 0 {
		return book.Bid
	}
	return book.Ask
}

func main() {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	mgr := book.NewManager(&book.ManagerConfig{Capacity: capacity})

	var updates int64
	mgr.RegisterQuoteCallback(func(book.QuoteUpdate) {
		updates++
	})

	var adds, cancels, rejected int64
	live := make([]int64, 0, capacity)

	start := time.Now()
	for id := int64(1); id <= numOrders; id++ {
		// Cancel roughly as often as we add once the book warms up, so
		// a full side does not dominate the run.
		if len(live) > capacity/2 && r.Intn(2) == 0 {
			pick := r.Intn(len(live))
			if err := mgr.Cancel("BENCH", live[pick]); err == nil {
				cancels++
			}
			live[pick] = live[len(live)-1]
			live = live[:len(live)-1]
			continue
		}

		price := int64(r.Intn(maxPrice-minPrice+1) + minPrice)
		qty := int64(r.Intn(maxQty-minQty+1) + minQty)
		if err := mgr.Add("BENCH", id, randomSide(r), price, qty); err != nil {
			rejected++
			continue
		}
		adds++
		live = append(live, id)
	}
	elapsed := time.Since(start)

	if err := mgr.Validate(); err != nil {
		fmt.Printf("validation failed: %v\n", err)
		return
	}

	ops := adds + cancels
	fmt.Println("--------")
	fmt.Printf("Adds          : %d\n", adds)
	fmt.Printf("Cancels       : %d\n", cancels)
	fmt.Printf("Rejected      : %d\n", rejected)
	fmt.Printf("Quote updates : %d\n", updates)
	fmt.Printf("Time taken    : %s\n", elapsed)
	fmt.Printf("Ops/sec       : %.0f\n", float64(ops)/elapsed.Seconds())
}
