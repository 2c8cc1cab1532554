package book

import "fmt"

// DefaultCapacity is the per-side live order limit used when the caller
// does not configure one.
const DefaultCapacity = 100

type bookSide struct {
	index    *priceTimeIndex
	quote    Quote
	hasQuote bool
}

// Book is a single-instrument limit order book. It owns one index per
// side and keeps a cached best quote per side in lock-step with every
// mutation, so quote reads never rescan the book.
//
// A Book is not safe for concurrent use; it expects one serialized
// event stream. Serialize upstream (see Manager) if events arrive from
// more than one goroutine.
type Book struct {
	sides [2]bookSide
}

// New creates an empty book with the given per-side capacity.
// A capacity of zero or less means DefaultCapacity.
func New(capacity int) *Book {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	b := &Book{}
	b.sides[Bid].index = newPriceTimeIndex(Bid, capacity)
	b.sides[Ask].index = newPriceTimeIndex(Ask, capacity)
	return b
}

func (b *Book) side(s Side) *bookSide {
	return &b.sides[s]
}

// Add places a new resting order. The id must be non-negative and not
// live on either side; price and qty must be positive.
func (b *Book) Add(id int64, side Side, price, qty int64) error {
	if id < 0 {
		return fmt.Errorf("%w: id=%d", ErrInvalidOrderID, id)
	}
	if price <= 0 {
		return fmt.Errorf("%w: id=%d price=%d", ErrInvalidPrice, id, price)
	}
	if qty <= 0 {
		return fmt.Errorf("%w: id=%d qty=%d", ErrInvalidQuantity, id, qty)
	}
	if _, ok := b.sides[Bid].index.findByID(id); ok {
		return fmt.Errorf("%w: id=%d", ErrDuplicateOrderID, id)
	}
	if _, ok := b.sides[Ask].index.findByID(id); ok {
		return fmt.Errorf("%w: id=%d", ErrDuplicateOrderID, id)
	}

	s := b.side(side)
	if err := s.index.insert(Order{ID: id, Side: side, Price: price, Qty: qty}); err != nil {
		return fmt.Errorf("%w: id=%d", err, id)
	}

	switch {
	case !s.hasQuote:
		s.quote = Quote{Price: price, Qty: qty}
		s.hasQuote = true
	case s.index.worseThan(s.quote.Price, price):
		// New best price level.
		s.quote = Quote{Price: price, Qty: qty}
	case price == s.quote.Price:
		s.quote.Qty += qty
	}
	return nil
}

// Cancel removes a live order.
func (b *Book) Cancel(id int64) error {
	s, pos, err := b.locate(id)
	if err != nil {
		return err
	}
	b.remove(s, pos)
	return nil
}

// Modify changes a live order's resting quantity. A decrease keeps the
// order's arrival priority; an increase forfeits it, moving the order
// behind everything already resting at its price.
func (b *Book) Modify(id int64, newQty int64) error {
	if newQty <= 0 {
		return fmt.Errorf("%w: id=%d qty=%d", ErrInvalidQuantity, id, newQty)
	}
	s, pos, err := b.locate(id)
	if err != nil {
		return err
	}

	old := s.index.orders[pos].Qty
	if newQty > old {
		pos = s.index.promoteInBlock(pos)
	}
	s.index.orders[pos].Qty = newQty

	if s.index.orders[pos].Price == s.quote.Price {
		s.quote.Qty += newQty - old
	}
	return nil
}

// Trade applies an externally decided fill against a live order. A fill
// for the full resting quantity removes the order.
func (b *Book) Trade(id int64, fillQty int64) error {
	if fillQty <= 0 {
		return fmt.Errorf("%w: id=%d fill=%d", ErrInvalidQuantity, id, fillQty)
	}
	s, pos, err := b.locate(id)
	if err != nil {
		return err
	}

	o := &s.index.orders[pos]
	if fillQty > o.Qty {
		return fmt.Errorf("%w: id=%d fill=%d resting=%d", ErrExcessiveFill, id, fillQty, o.Qty)
	}
	if fillQty == o.Qty {
		b.remove(s, pos)
		return nil
	}

	o.Qty -= fillQty
	if o.Price == s.quote.Price {
		s.quote.Qty -= fillQty
	}
	return nil
}

// BestBid returns the bid quote; ok is false when no bids rest.
func (b *Book) BestBid() (Quote, bool) {
	s := b.side(Bid)
	return s.quote, s.hasQuote
}

// BestAsk returns the ask quote; ok is false when no asks rest.
func (b *Book) BestAsk() (Quote, bool) {
	s := b.side(Ask)
	return s.quote, s.hasQuote
}

// DepthAt returns the total quantity resting at exactly price on side.
func (b *Book) DepthAt(side Side, price int64) int64 {
	s := b.side(side)
	if s.hasQuote && s.quote.Price == price {
		return s.quote.Qty
	}
	return s.index.depthAt(price)
}

// LiveCount returns the number of live orders on side.
func (b *Book) LiveCount(side Side) int {
	return b.side(side).index.live
}

// SideSnapshot returns a copy of side's live orders in index order,
// worst price first, best price last.
func (b *Book) SideSnapshot(side Side) []Order {
	return b.side(side).index.snapshot()
}

func (b *Book) locate(id int64) (*bookSide, int, error) {
	for i := range b.sides {
		if pos, ok := b.sides[i].index.findByID(id); ok {
			return &b.sides[i], pos, nil
		}
	}
	return nil, 0, fmt.Errorf("%w: id=%d", ErrUnknownOrderID, id)
}

// remove takes the order at pos out and repairs the side's quote. Only
// a removal at the quote price can touch the quote, and only a removal
// that vacates the best price block forces a block re-sum.
func (b *Book) remove(s *bookSide, pos int) {
	removed := s.index.orders[pos]
	s.index.removeAt(pos)

	if removed.Price != s.quote.Price {
		return
	}
	best, ok := s.index.best()
	switch {
	case !ok:
		s.quote = Quote{}
		s.hasQuote = false
	case best.Price != removed.Price:
		// Best block vacated; re-aggregate at the next price.
		s.quote = Quote{Price: best.Price, Qty: s.index.bestBlockQty()}
	default:
		s.quote.Qty -= removed.Qty
	}
}

// Validate re-checks every book invariant from scratch: per-side price
// monotonicity, FIFO-compatible ordering, id uniqueness across sides,
// and agreement between the cached quotes and the index contents. It is
// a diagnostic for test harnesses and never mutates the book.
func (b *Book) Validate() error {
	seen := make(map[int64]struct{})
	for si := range b.sides {
		s := &b.sides[si]
		ix := s.index
		for i := 0; i < ix.live; i++ {
			o := ix.orders[i]
			if o.ID < 0 || o.Price <= 0 || o.Qty <= 0 {
				return fmt.Errorf("book: malformed live order %s at %s[%d]", o, ix.side, i)
			}
			if _, dup := seen[o.ID]; dup {
				return fmt.Errorf("book: id %d live more than once", o.ID)
			}
			seen[o.ID] = struct{}{}
			if i > 0 && ix.worseThan(o.Price, ix.orders[i-1].Price) {
				return fmt.Errorf("book: %s price ordering violated at slot %d (%d after %d)",
					ix.side, i, o.Price, ix.orders[i-1].Price)
			}
		}

		best, ok := ix.best()
		if ok != s.hasQuote {
			return fmt.Errorf("book: %s quote emptiness disagrees with index", ix.side)
		}
		if !ok {
			continue
		}
		if s.quote.Price != best.Price {
			return fmt.Errorf("book: %s quote price %d, index best %d", ix.side, s.quote.Price, best.Price)
		}
		if want := ix.bestBlockQty(); s.quote.Qty != want {
			return fmt.Errorf("book: %s quote qty %d, index block qty %d", ix.side, s.quote.Qty, want)
		}
	}
	return nil
}
