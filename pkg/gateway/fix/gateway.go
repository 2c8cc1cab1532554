// Package fixgateway accepts FIX 4.4 order flow and translates it into
// book operations: NewOrderSingle becomes an add, OrderCancelRequest a
// cancel, OrderCancelReplaceRequest a quantity modify. Every accepted
// request is answered with an ExecutionReport and journaled.
package fixgateway

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/quickfix"
	"go.uber.org/zap"

	"github.com/tdhoang/quotebook/pkg/book"
	"github.com/tdhoang/quotebook/pkg/feed"
	"github.com/tdhoang/quotebook/pkg/journal"
)

// EventSink receives journal events for durable persistence; nil means
// in-process journaling only.
type EventSink interface {
	Publish(ev *journal.BookEvent) error
}

type GatewayConfig struct {
	ConfigFilepath string
}

// orderRef ties a FIX client order chain to one numeric book id.
type orderRef struct {
	bookID     int64
	symbol     string
	side       book.Side
	fixSide    enum.Side
	priceTicks int64
	restingQty int64
}

type Gateway struct {
	cfg      *GatewayConfig
	app      *Application
	acceptor *quickfix.Acceptor

	mgr   *book.Manager
	ticks *feed.TickConverter
	store journal.Store
	sink  EventSink
	log   *zap.SugaredLogger

	// refs maps the latest ClOrdID of each live chain to its order.
	refs   sync.Map
	nextID atomic.Int64
	seq    atomic.Uint64
}

func NewGateway(cfg *GatewayConfig, mgr *book.Manager, ticks *feed.TickConverter, store journal.Store, sink EventSink) *Gateway {
	if store == nil {
		store = journal.NewInMemoryStore()
	}
	return &Gateway{
		cfg:   cfg,
		mgr:   mgr,
		ticks: ticks,
		store: store,
		sink:  sink,
		log:   zap.S().Named("fixgateway"),
	}
}

func (g *Gateway) Start(ctx context.Context) error {
	app, acceptor, err := startApp(g.cfg.ConfigFilepath, g)
	if err != nil {
		g.log.Errorf("start app err=%v", err)
		return err
	}
	g.app = app
	g.acceptor = acceptor
	return nil
}

func (g *Gateway) Stop() {
	if g.acceptor != nil {
		g.acceptor.Stop()
	}
}

func (g *Gateway) AddOrder(m *NewOrderSingle) {
	if m.OrdType != enum.OrdType_LIMIT {
		g.reject(m.SessionID, m.ClOrdID, m.Symbol, m.Side, "only limit orders accepted")
		return
	}
	if _, dup := g.refs.Load(m.ClOrdID); dup {
		g.reject(m.SessionID, m.ClOrdID, m.Symbol, m.Side, "duplicate ClOrdID")
		return
	}
	side, err := sideFromFIX(m.Side)
	if err != nil {
		g.reject(m.SessionID, m.ClOrdID, m.Symbol, m.Side, err.Error())
		return
	}
	priceTicks, err := g.ticks.Ticks(m.Price)
	if err != nil {
		g.reject(m.SessionID, m.ClOrdID, m.Symbol, m.Side, err.Error())
		return
	}
	if !m.OrderQty.IsInteger() || m.OrderQty.Sign() <= 0 {
		g.reject(m.SessionID, m.ClOrdID, m.Symbol, m.Side, "quantity must be a positive integer")
		return
	}
	qty := m.OrderQty.IntPart()

	id := g.nextID.Add(1)
	if err := g.mgr.Add(m.Symbol, id, side, priceTicks, qty); err != nil {
		g.reject(m.SessionID, m.ClOrdID, m.Symbol, m.Side, err.Error())
		return
	}

	ref := &orderRef{
		bookID:     id,
		symbol:     m.Symbol,
		side:       side,
		fixSide:    m.Side,
		priceTicks: priceTicks,
		restingQty: qty,
	}
	g.refs.Store(m.ClOrdID, ref)

	g.journal(journal.NewAddEvent(g.seq.Add(1), m.Symbol, id, side.String(), priceTicks, qty, time.Now()))
	g.report(m.SessionID, ref, m.ClOrdID, enum.ExecType_NEW, enum.OrdStatus_NEW, "")
}

func (g *Gateway) CancelOrder(m *OrderCancelRequest) {
	ref, ok := g.takeRef(m.OrigClOrdID)
	if !ok {
		g.reject(m.SessionID, m.ClOrdID, m.Symbol, m.Side, "unknown OrigClOrdID")
		return
	}
	if err := g.mgr.Cancel(ref.symbol, ref.bookID); err != nil {
		g.reject(m.SessionID, m.ClOrdID, m.Symbol, m.Side, err.Error())
		return
	}

	ref.restingQty = 0
	g.journal(journal.NewCancelEvent(g.seq.Add(1), ref.symbol, ref.bookID, time.Now()))
	g.report(m.SessionID, ref, m.ClOrdID, enum.ExecType_CANCELED, enum.OrdStatus_CANCELED, "")
}

func (g *Gateway) ModifyOrder(m *OrderCancelReplaceRequest) {
	ref, ok := g.takeRef(m.OrigClOrdID)
	if !ok {
		g.reject(m.SessionID, m.ClOrdID, m.Symbol, m.Side, "unknown OrigClOrdID")
		return
	}
	restore := func() { g.refs.Store(m.OrigClOrdID, ref) }

	// The book's modify is a quantity edit; a price move would need a
	// cancel plus a fresh add, which the client must do explicitly.
	if !m.Price.IsZero() {
		priceTicks, err := g.ticks.Ticks(m.Price)
		if err != nil || priceTicks != ref.priceTicks {
			restore()
			g.reject(m.SessionID, m.ClOrdID, m.Symbol, m.Side, "price change not supported")
			return
		}
	}
	if !m.OrderQty.IsInteger() || m.OrderQty.Sign() <= 0 {
		restore()
		g.reject(m.SessionID, m.ClOrdID, m.Symbol, m.Side, "quantity must be a positive integer")
		return
	}
	qty := m.OrderQty.IntPart()

	if err := g.mgr.Modify(ref.symbol, ref.bookID, qty); err != nil {
		restore()
		g.reject(m.SessionID, m.ClOrdID, m.Symbol, m.Side, err.Error())
		return
	}

	ref.restingQty = qty
	g.refs.Store(m.ClOrdID, ref)
	g.journal(journal.NewModifyEvent(g.seq.Add(1), ref.symbol, ref.bookID, qty, time.Now()))
	g.report(m.SessionID, ref, m.ClOrdID, enum.ExecType_REPLACED, enum.OrdStatus_REPLACED, "")
}

// takeRef removes and returns the order chain for clOrdID.
func (g *Gateway) takeRef(clOrdID string) (*orderRef, bool) {
	v, ok := g.refs.LoadAndDelete(clOrdID)
	if !ok {
		return nil, false
	}
	return v.(*orderRef), true
}

func (g *Gateway) journal(ev *journal.BookEvent) {
	g.store.Append(ev)
	if g.sink == nil {
		return
	}
	if err := g.sink.Publish(ev); err != nil {
		g.log.Warnf("publish journal event %s: %v", ev.EventID, err)
	}
}
