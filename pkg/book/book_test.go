package book

import (
	"errors"
	"testing"
)

func liveIDs(b *Book, side Side) []int64 {
	snap := b.SideSnapshot(side)
	ids := make([]int64, len(snap))
	for i, o := range snap {
		ids[i] = o.ID
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// recomputeQuote rebuilds a side's quote from a fresh snapshot, the slow
// way, to cross-check the incrementally maintained one.
func recomputeQuote(b *Book, side Side) (Quote, bool) {
	snap := b.SideSnapshot(side)
	if len(snap) == 0 {
		return Quote{}, false
	}
	best := snap[len(snap)-1]
	q := Quote{Price: best.Price}
	for i := len(snap) - 1; i >= 0 && snap[i].Price == best.Price; i-- {
		q.Qty += snap[i].Qty
	}
	return q, true
}

func checkQuotes(t *testing.T, b *Book) {
	t.Helper()
	for _, side := range []Side{Bid, Ask} {
		want, wantOk := recomputeQuote(b, side)
		var got Quote
		var gotOk bool
		if side == Bid {
			got, gotOk = b.BestBid()
		} else {
			got, gotOk = b.BestAsk()
		}
		if gotOk != wantOk || got != want {
			t.Fatalf("%s quote drifted: cached %+v/%v, recomputed %+v/%v", side, got, gotOk, want, wantOk)
		}
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func mustAdd(t *testing.T, b *Book, id int64, side Side, price, qty int64) {
	t.Helper()
	if err := b.Add(id, side, price, qty); err != nil {
		t.Fatalf("add id=%d: %v", id, err)
	}
	checkQuotes(t, b)
}

func TestAskInsertOrdering(t *testing.T) {
	b := New(0)
	// Ids start at zero: zero is a valid, representable order id.
	mustAdd(t, b, 0, Ask, 2, 1)
	mustAdd(t, b, 1, Ask, 4, 1)
	mustAdd(t, b, 2, Ask, 3, 1)
	mustAdd(t, b, 3, Ask, 1, 1)
	mustAdd(t, b, 4, Ask, 3, 6)

	// Worst price first; the newest order at a shared price sits
	// further from the best end than the older one.
	want := []int64{1, 4, 2, 0, 3}
	if got := liveIDs(b, Ask); !equalIDs(got, want) {
		t.Fatalf("ask sequence = %v, want %v", got, want)
	}

	q, ok := b.BestAsk()
	if !ok || q.Price != 1 || q.Qty != 1 {
		t.Fatalf("best ask = %+v/%v, want price=1 qty=1", q, ok)
	}
}

func TestOrderIDZeroLifecycle(t *testing.T) {
	b := New(0)
	mustAdd(t, b, 0, Bid, 5, 4)

	if err := b.Modify(0, 2); err != nil {
		t.Fatalf("modify id=0: %v", err)
	}
	checkQuotes(t, b)
	if err := b.Cancel(0); err != nil {
		t.Fatalf("cancel id=0: %v", err)
	}
	checkQuotes(t, b)
	if n := b.LiveCount(Bid); n != 0 {
		t.Fatalf("live bids = %d, want 0", n)
	}

	// Gone from the book, the id is free again.
	mustAdd(t, b, 0, Ask, 3, 1)
}

func TestBidInsertOrdering(t *testing.T) {
	b := New(0)
	mustAdd(t, b, 1, Bid, 5, 2)
	mustAdd(t, b, 2, Bid, 7, 3)
	mustAdd(t, b, 3, Bid, 6, 1)
	mustAdd(t, b, 4, Bid, 7, 4)

	want := []int64{1, 3, 4, 2}
	if got := liveIDs(b, Bid); !equalIDs(got, want) {
		t.Fatalf("bid sequence = %v, want %v", got, want)
	}

	q, ok := b.BestBid()
	if !ok || q.Price != 7 || q.Qty != 7 {
		t.Fatalf("best bid = %+v/%v, want price=7 qty=7", q, ok)
	}
}

func TestFIFOTieBreak(t *testing.T) {
	b := New(0)
	mustAdd(t, b, 1, Ask, 5, 1) // A
	mustAdd(t, b, 2, Ask, 5, 1) // B, same price, arrives later

	snap := b.SideSnapshot(Ask)
	// Scanning from the best end (tail) inward must reach A before B.
	if snap[len(snap)-1].ID != 1 || snap[0].ID != 2 {
		t.Fatalf("tie-break broken: %v", liveIDs(b, Ask))
	}
}

func TestCancelPairLeavesBookUnchanged(t *testing.T) {
	b := New(0)
	mustAdd(t, b, 10, Ask, 2, 1)
	mustAdd(t, b, 11, Ask, 4, 1)
	mustAdd(t, b, 12, Ask, 3, 1)
	before := liveIDs(b, Ask)

	for _, id := range []int64{5, 6, 7} {
		mustAdd(t, b, id, Ask, 3, 1)
		if err := b.Cancel(id); err != nil {
			t.Fatalf("cancel id=%d: %v", id, err)
		}
		checkQuotes(t, b)
	}

	if got := liveIDs(b, Ask); !equalIDs(got, before) {
		t.Fatalf("book changed by add/cancel pairs: %v, want %v", got, before)
	}
}

func TestModifyIncreaseLosesTimePriority(t *testing.T) {
	b := New(0)
	mustAdd(t, b, 2, Ask, 3, 1)
	mustAdd(t, b, 4, Ask, 3, 6)
	mustAdd(t, b, 9, Ask, 5, 2)

	// id=2 is the oldest at price 3 and currently closest to the best
	// end of its block. Increasing its quantity must push it behind
	// id=4.
	if err := b.Modify(2, 2); err != nil {
		t.Fatalf("modify: %v", err)
	}
	checkQuotes(t, b)

	want := []int64{9, 2, 4}
	if got := liveIDs(b, Ask); !equalIDs(got, want) {
		t.Fatalf("ask sequence after modify = %v, want %v", got, want)
	}
	if d := b.DepthAt(Ask, 3); d != 8 {
		t.Fatalf("depth at 3 = %d, want 8", d)
	}
}

func TestModifyDecreaseKeepsTimePriority(t *testing.T) {
	b := New(0)
	mustAdd(t, b, 2, Ask, 3, 5)
	mustAdd(t, b, 4, Ask, 3, 6)
	before := liveIDs(b, Ask)

	if err := b.Modify(2, 1); err != nil {
		t.Fatalf("modify: %v", err)
	}
	checkQuotes(t, b)

	if got := liveIDs(b, Ask); !equalIDs(got, before) {
		t.Fatalf("decrease reordered the block: %v, want %v", got, before)
	}
	if d := b.DepthAt(Ask, 3); d != 7 {
		t.Fatalf("depth at 3 = %d, want 7", d)
	}
}

func TestTradePartialThenFull(t *testing.T) {
	b := New(0)
	mustAdd(t, b, 9, Bid, 2, 10)
	mustAdd(t, b, 8, Bid, 1, 3)

	if err := b.Trade(9, 5); err != nil {
		t.Fatalf("partial trade: %v", err)
	}
	checkQuotes(t, b)
	if q, ok := b.BestBid(); !ok || q.Price != 2 || q.Qty != 5 {
		t.Fatalf("best bid after partial = %+v/%v", q, ok)
	}

	if err := b.Trade(9, 5); err != nil {
		t.Fatalf("final trade: %v", err)
	}
	checkQuotes(t, b)
	if n := b.LiveCount(Bid); n != 1 {
		t.Fatalf("live bids = %d, want 1", n)
	}
	if q, ok := b.BestBid(); !ok || q.Price != 1 || q.Qty != 3 {
		t.Fatalf("best bid after removal = %+v/%v", q, ok)
	}
}

func TestRemovalVacatingBestBlock(t *testing.T) {
	b := New(0)
	mustAdd(t, b, 1, Ask, 3, 4)
	mustAdd(t, b, 2, Ask, 3, 6)
	mustAdd(t, b, 3, Ask, 2, 5)

	// Price 2 is the best block with a single order; cancelling it must
	// re-aggregate the quote at price 3.
	if err := b.Cancel(3); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	checkQuotes(t, b)
	if q, ok := b.BestAsk(); !ok || q.Price != 3 || q.Qty != 10 {
		t.Fatalf("best ask after vacating = %+v/%v, want price=3 qty=10", q, ok)
	}

	if err := b.Cancel(1); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := b.Cancel(2); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	checkQuotes(t, b)
	if _, ok := b.BestAsk(); ok {
		t.Fatal("ask quote should be empty")
	}
}

func TestQuantityConservation(t *testing.T) {
	b := New(0)
	var added, removed int64

	add := func(id int64, side Side, price, qty int64) {
		mustAdd(t, b, id, side, price, qty)
		added += qty
	}
	trade := func(id, fill int64) {
		if err := b.Trade(id, fill); err != nil {
			t.Fatalf("trade id=%d: %v", id, err)
		}
		removed += fill
		checkQuotes(t, b)
	}

	add(1, Bid, 10, 5)
	add(2, Bid, 11, 7)
	add(3, Ask, 12, 4)
	add(4, Ask, 11, 9)
	trade(2, 3)
	trade(4, 9)
	if err := b.Cancel(1); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	removed += 5
	checkQuotes(t, b)

	var live int64
	for _, side := range []Side{Bid, Ask} {
		for _, o := range b.SideSnapshot(side) {
			live += o.Qty
		}
	}
	if live != added-removed {
		t.Fatalf("live qty %d, want %d", live, added-removed)
	}
}

func TestIdempotentQuoteReads(t *testing.T) {
	b := New(0)
	mustAdd(t, b, 1, Ask, 3, 2)

	q1, ok1 := b.BestAsk()
	q2, ok2 := b.BestAsk()
	if q1 != q2 || ok1 != ok2 {
		t.Fatalf("repeated reads differ: %+v/%v vs %+v/%v", q1, ok1, q2, ok2)
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("validate after reads: %v", err)
	}
}

func TestDepthAtNonBestPrice(t *testing.T) {
	b := New(0)
	mustAdd(t, b, 1, Ask, 3, 2)
	mustAdd(t, b, 2, Ask, 5, 4)
	mustAdd(t, b, 3, Ask, 5, 1)

	if d := b.DepthAt(Ask, 5); d != 5 {
		t.Fatalf("depth at 5 = %d, want 5", d)
	}
	if d := b.DepthAt(Ask, 3); d != 2 {
		t.Fatalf("depth at 3 = %d, want 2", d)
	}
	if d := b.DepthAt(Ask, 4); d != 0 {
		t.Fatalf("depth at empty price = %d, want 0", d)
	}
	if d := b.DepthAt(Bid, 3); d != 0 {
		t.Fatalf("depth on empty side = %d, want 0", d)
	}
}

func TestContractViolations(t *testing.T) {
	b := New(2)
	mustAdd(t, b, 1, Ask, 3, 2)

	cases := []struct {
		name string
		err  error
		want error
	}{
		{"duplicate id", b.Add(1, Bid, 5, 1), ErrDuplicateOrderID},
		{"negative id", b.Add(-1, Ask, 3, 1), ErrInvalidOrderID},
		{"non-positive price", b.Add(2, Ask, 0, 1), ErrInvalidPrice},
		{"non-positive qty", b.Add(2, Ask, 3, 0), ErrInvalidQuantity},
		{"unknown cancel", b.Cancel(99), ErrUnknownOrderID},
		{"unknown modify", b.Modify(99, 1), ErrUnknownOrderID},
		{"modify to zero", b.Modify(1, 0), ErrInvalidQuantity},
		{"unknown trade", b.Trade(99, 1), ErrUnknownOrderID},
		{"excessive fill", b.Trade(1, 3), ErrExcessiveFill},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, tc.err, tc.want)
		}
		if !errors.Is(tc.err, ErrContractViolation) {
			t.Errorf("%s: %v is not a contract violation", tc.name, tc.err)
		}
	}

	// Violations must not have touched the book.
	checkQuotes(t, b)
	if n := b.LiveCount(Ask); n != 1 {
		t.Fatalf("live asks = %d, want 1", n)
	}
}

func TestCapacityExceeded(t *testing.T) {
	b := New(2)
	mustAdd(t, b, 1, Ask, 3, 1)
	mustAdd(t, b, 2, Ask, 4, 1)

	err := b.Add(3, Ask, 5, 1)
	if !errors.Is(err, ErrBookFull) {
		t.Fatalf("got %v, want ErrBookFull", err)
	}
	checkQuotes(t, b)

	// The other side has its own capacity.
	mustAdd(t, b, 4, Bid, 2, 1)
}
