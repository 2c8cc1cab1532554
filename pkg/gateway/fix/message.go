package fixgateway

import (
	"fmt"

	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/field"
	"github.com/quickfixgo/fix44/executionreport"
	"github.com/quickfixgo/quickfix"
	"github.com/shopspring/decimal"

	"github.com/tdhoang/quotebook/pkg/book"
)

func sideFromFIX(s enum.Side) (book.Side, error) {
	switch s {
	case enum.Side_BUY:
		return book.Bid, nil
	case enum.Side_SELL:
		return book.Ask, nil
	}
	return 0, fmt.Errorf("unsupported side %q", s)
}

// report answers an accepted request with an ExecutionReport carrying
// the order's current resting state.
func (g *Gateway) report(sessionID *quickfix.SessionID, ref *orderRef, clOrdID string, execType enum.ExecType, status enum.OrdStatus, text string) {
	execID := fmt.Sprintf("E-%d", g.seq.Load())
	leaves := decimal.NewFromInt(ref.restingQty)

	msg := executionreport.New(
		field.NewOrderID(fmt.Sprintf("%d", ref.bookID)),
		field.NewExecID(execID),
		field.NewExecType(execType),
		field.NewOrdStatus(status),
		field.NewSide(ref.fixSide),
		field.NewLeavesQty(leaves, 0),
		field.NewCumQty(decimal.Zero, 0),
		field.NewAvgPx(decimal.Zero, 2),
	)
	msg.SetClOrdID(clOrdID)
	msg.SetSymbol(ref.symbol)
	msg.SetPrice(g.ticks.Price(ref.priceTicks), 8)
	if text != "" {
		msg.SetText(text)
	}

	if err := quickfix.SendToTarget(msg, *sessionID); err != nil {
		g.log.Warnf("send execution report: %v", err)
	}
}

// reject answers a request the book never saw.
func (g *Gateway) reject(sessionID *quickfix.SessionID, clOrdID, symbol string, side enum.Side, text string) {
	execID := fmt.Sprintf("E-%d", g.seq.Add(1))

	msg := executionreport.New(
		field.NewOrderID("NONE"),
		field.NewExecID(execID),
		field.NewExecType(enum.ExecType_REJECTED),
		field.NewOrdStatus(enum.OrdStatus_REJECTED),
		field.NewSide(side),
		field.NewLeavesQty(decimal.Zero, 0),
		field.NewCumQty(decimal.Zero, 0),
		field.NewAvgPx(decimal.Zero, 2),
	)
	msg.SetClOrdID(clOrdID)
	if symbol != "" {
		msg.SetSymbol(symbol)
	}
	msg.SetText(text)

	if err := quickfix.SendToTarget(msg, *sessionID); err != nil {
		g.log.Warnf("send reject: %v", err)
	}
}
