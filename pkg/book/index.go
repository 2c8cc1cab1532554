package book

import "sort"

// priceTimeIndex holds one side's resting orders in a fixed-capacity
// slice. The live prefix [0, live) is kept sorted from worst price to
// best, so the best price always sits at the last live slot and a best
// quote read never scans.
//
// Within a price block the newest order occupies the lowest index, so
// scanning inward from the best end reaches the oldest order at a price
// first (FIFO priority).
type priceTimeIndex struct {
	side   Side
	orders []Order
	live   int
}

func newPriceTimeIndex(side Side, capacity int) *priceTimeIndex {
	return &priceTimeIndex{
		side:   side,
		orders: make([]Order, capacity),
	}
}

// worseThan reports whether price a has strictly worse priority than
// price b on this side: higher for asks, lower for bids.
func (ix *priceTimeIndex) worseThan(a, b int64) bool {
	if ix.side == Ask {
		return a > b
	}
	return a < b
}

// insert places o at its priority position. Orders with strictly worse
// prices stay below the insertion point; same-price orders and better
// ones shift one slot toward the best end, which leaves the newcomer at
// the lowest index of its price block.
func (ix *priceTimeIndex) insert(o Order) error {
	if ix.live == len(ix.orders) {
		return ErrBookFull
	}

	pos := sort.Search(ix.live, func(i int) bool {
		return !ix.worseThan(ix.orders[i].Price, o.Price)
	})

	copy(ix.orders[pos+1:ix.live+1], ix.orders[pos:ix.live])
	ix.orders[pos] = o
	ix.live++
	return nil
}

// removeAt closes the hole at pos by shifting the slots above it down.
func (ix *priceTimeIndex) removeAt(pos int) {
	copy(ix.orders[pos:ix.live-1], ix.orders[pos+1:ix.live])
	ix.live--
	ix.orders[ix.live] = Order{}
}

// promoteInBlock moves the order at pos to the front of its own price
// block, i.e. the lowest index sharing its price. Used when a quantity
// increase forfeits the order's arrival priority. Returns the new
// position.
func (ix *priceTimeIndex) promoteInBlock(pos int) int {
	for pos > 0 && ix.orders[pos-1].Price == ix.orders[pos].Price {
		ix.orders[pos-1], ix.orders[pos] = ix.orders[pos], ix.orders[pos-1]
		pos--
	}
	return pos
}

// findByID scans the live prefix for id. Linear is fine at the bounded
// capacities this book is built for.
func (ix *priceTimeIndex) findByID(id int64) (int, bool) {
	for i := 0; i < ix.live; i++ {
		if ix.orders[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// best returns the best-priced order, the last live slot.
func (ix *priceTimeIndex) best() (Order, bool) {
	if ix.live == 0 {
		return Order{}, false
	}
	return ix.orders[ix.live-1], true
}

// bestBlockQty sums the contiguous best price block from the best end.
func (ix *priceTimeIndex) bestBlockQty() int64 {
	if ix.live == 0 {
		return 0
	}
	price := ix.orders[ix.live-1].Price
	var qty int64
	for i := ix.live - 1; i >= 0 && ix.orders[i].Price == price; i-- {
		qty += ix.orders[i].Qty
	}
	return qty
}

// depthAt sums the contiguous block at exactly price.
func (ix *priceTimeIndex) depthAt(price int64) int64 {
	var qty int64
	for i := 0; i < ix.live; i++ {
		if ix.orders[i].Price == price {
			qty += ix.orders[i].Qty
		}
	}
	return qty
}

// snapshot copies the live prefix in index order, worst price first.
func (ix *priceTimeIndex) snapshot() []Order {
	out := make([]Order, ix.live)
	copy(out, ix.orders[:ix.live])
	return out
}
