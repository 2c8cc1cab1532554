package book

import "fmt"

type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Bid {
		return "Bid"
	}
	return "Ask"
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

// Order is one resting order. Price and Qty are integer ticks; Qty is the
// amount still resting, not the original order size.
type Order struct {
	ID    int64
	Side  Side
	Price int64
	Qty   int64
}

func (o Order) String() string {
	return fmt.Sprintf("Order(id=%d,side=%s,price=%d,qty=%d)", o.ID, o.Side, o.Price, o.Qty)
}

// Quote is the best price on a side together with the total quantity
// resting at that price.
type Quote struct {
	Price int64
	Qty   int64
}
