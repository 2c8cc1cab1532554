package fixgateway

import (
	"testing"

	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/quickfix"
	"github.com/shopspring/decimal"

	"github.com/tdhoang/quotebook/pkg/book"
	"github.com/tdhoang/quotebook/pkg/feed"
	"github.com/tdhoang/quotebook/pkg/journal"
)

func newTestGateway(t *testing.T) (*Gateway, *book.Manager, *journal.InMemoryStore) {
	t.Helper()
	ticks, err := feed.NewTickConverter("0.5")
	if err != nil {
		t.Fatalf("ticks: %v", err)
	}
	mgr := book.NewManager(nil)
	store := journal.NewInMemoryStore()
	return NewGateway(&GatewayConfig{}, mgr, ticks, store, nil), mgr, store
}

func newOrder(clOrdID, symbol string, side enum.Side, price string, qty int64) *NewOrderSingle {
	return &NewOrderSingle{
		SessionID: &quickfix.SessionID{},
		ClOrdID:   clOrdID,
		Symbol:    symbol,
		Side:      side,
		OrdType:   enum.OrdType_LIMIT,
		Price:     decimal.RequireFromString(price),
		OrderQty:  decimal.NewFromInt(qty),
	}
}

func TestGatewayAddOrder(t *testing.T) {
	g, mgr, store := newTestGateway(t)

	g.AddOrder(newOrder("C1", "AAA", enum.Side_SELL, "2.5", 3))

	// 2.5 at tick 0.5 is 5 ticks.
	if q, ok := mgr.BestAsk("AAA"); !ok || q.Price != 5 || q.Qty != 3 {
		t.Fatalf("best ask = %+v/%v", q, ok)
	}
	hist := store.OrderHistory("AAA", 1)
	if len(hist) != 1 || hist[0].Kind != journal.EventAdd {
		t.Fatalf("journal = %+v", hist)
	}
}

func TestGatewayRejectsBadOrders(t *testing.T) {
	g, mgr, _ := newTestGateway(t)

	g.AddOrder(newOrder("C1", "AAA", enum.Side_SELL, "2.5", 3))
	// Duplicate ClOrdID, market order, off-grid price, zero qty: none
	// may reach the book.
	g.AddOrder(newOrder("C1", "AAA", enum.Side_SELL, "3.0", 1))
	market := newOrder("C2", "AAA", enum.Side_SELL, "3.0", 1)
	market.OrdType = enum.OrdType_MARKET
	g.AddOrder(market)
	g.AddOrder(newOrder("C3", "AAA", enum.Side_SELL, "2.7", 1))
	g.AddOrder(newOrder("C4", "AAA", enum.Side_SELL, "3.0", 0))

	if n := mgr.LiveCount("AAA", book.Ask); n != 1 {
		t.Fatalf("live = %d, want 1", n)
	}
}

func TestGatewayCancelChain(t *testing.T) {
	g, mgr, store := newTestGateway(t)

	g.AddOrder(newOrder("C1", "AAA", enum.Side_BUY, "1.0", 4))
	g.CancelOrder(&OrderCancelRequest{
		SessionID:   &quickfix.SessionID{},
		OrigClOrdID: "C1",
		ClOrdID:     "C2",
		Symbol:      "AAA",
		Side:        enum.Side_BUY,
	})

	if n := mgr.LiveCount("AAA", book.Bid); n != 0 {
		t.Fatalf("live = %d, want 0", n)
	}
	hist := store.OrderHistory("AAA", 1)
	if len(hist) != 2 || hist[1].Kind != journal.EventCancel {
		t.Fatalf("journal = %+v", hist)
	}

	// The chain is consumed; a second cancel must not find it.
	g.CancelOrder(&OrderCancelRequest{
		SessionID:   &quickfix.SessionID{},
		OrigClOrdID: "C1",
		ClOrdID:     "C3",
		Symbol:      "AAA",
		Side:        enum.Side_BUY,
	})
	if len(store.OrderHistory("AAA", 1)) != 2 {
		t.Fatal("rejected cancel was journaled")
	}
}

func TestGatewayReplaceQuantity(t *testing.T) {
	g, mgr, _ := newTestGateway(t)

	g.AddOrder(newOrder("C1", "AAA", enum.Side_BUY, "1.0", 4))
	g.ModifyOrder(&OrderCancelReplaceRequest{
		SessionID:   &quickfix.SessionID{},
		OrigClOrdID: "C1",
		ClOrdID:     "C2",
		Symbol:      "AAA",
		Side:        enum.Side_BUY,
		OrderQty:    decimal.NewFromInt(9),
		Price:       decimal.RequireFromString("1.0"),
	})

	if q, ok := mgr.BestBid("AAA"); !ok || q.Qty != 9 {
		t.Fatalf("best bid = %+v/%v, want qty 9", q, ok)
	}

	// The new ClOrdID carries the chain forward.
	g.CancelOrder(&OrderCancelRequest{
		SessionID:   &quickfix.SessionID{},
		OrigClOrdID: "C2",
		ClOrdID:     "C3",
		Symbol:      "AAA",
		Side:        enum.Side_BUY,
	})
	if n := mgr.LiveCount("AAA", book.Bid); n != 0 {
		t.Fatalf("live = %d, want 0", n)
	}
}

func TestGatewayReplaceRejectsPriceChange(t *testing.T) {
	g, mgr, _ := newTestGateway(t)

	g.AddOrder(newOrder("C1", "AAA", enum.Side_BUY, "1.0", 4))
	g.ModifyOrder(&OrderCancelReplaceRequest{
		SessionID:   &quickfix.SessionID{},
		OrigClOrdID: "C1",
		ClOrdID:     "C2",
		Symbol:      "AAA",
		Side:        enum.Side_BUY,
		OrderQty:    decimal.NewFromInt(4),
		Price:       decimal.RequireFromString("1.5"),
	})

	if q, ok := mgr.BestBid("AAA"); !ok || q.Price != 2 || q.Qty != 4 {
		t.Fatalf("order changed by rejected replace: %+v/%v", q, ok)
	}
	// The original chain survives a rejected replace.
	g.CancelOrder(&OrderCancelRequest{
		SessionID:   &quickfix.SessionID{},
		OrigClOrdID: "C1",
		ClOrdID:     "C3",
		Symbol:      "AAA",
		Side:        enum.Side_BUY,
	})
	if n := mgr.LiveCount("AAA", book.Bid); n != 0 {
		t.Fatalf("live = %d, want 0", n)
	}
}

func TestSideFromFIX(t *testing.T) {
	if s, err := sideFromFIX(enum.Side_BUY); err != nil || s != book.Bid {
		t.Fatalf("buy -> %v/%v", s, err)
	}
	if s, err := sideFromFIX(enum.Side_SELL); err != nil || s != book.Ask {
		t.Fatalf("sell -> %v/%v", s, err)
	}
	if _, err := sideFromFIX(enum.Side_CROSS); err == nil {
		t.Fatal("cross side accepted")
	}
}
