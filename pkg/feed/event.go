package feed

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tdhoang/quotebook/pkg/book"
)

type Kind string

const (
	KindAdd    Kind = "add"
	KindCancel Kind = "cancel"
	KindModify Kind = "modify"
	KindTrade  Kind = "trade"
)

// Event is one line of the external feed. Prices arrive as decimals and
// are converted to integer ticks before they reach a book.
type Event struct {
	Seq        uint64          `json:"seq"`
	Instrument string          `json:"instrument"`
	Kind       Kind            `json:"kind"`
	OrderID    int64           `json:"order_id"`
	Side       string          `json:"side,omitempty"`
	Price      decimal.Decimal `json:"price,omitempty"`
	Qty        int64           `json:"qty,omitempty"`
}

func (e Event) side() (book.Side, error) {
	switch e.Side {
	case "bid", "buy":
		return book.Bid, nil
	case "ask", "sell":
		return book.Ask, nil
	}
	return 0, fmt.Errorf("feed: seq %d: unknown side %q", e.Seq, e.Side)
}

// validate rejects malformed events before they can reach a book; the
// core treats a bad event as a fatal contract violation, so the feed is
// the place to catch shape problems.
func (e Event) validate() error {
	switch e.Kind {
	case KindAdd:
		if _, err := e.side(); err != nil {
			return err
		}
		if e.Price.Sign() <= 0 {
			return fmt.Errorf("feed: seq %d: non-positive price %s", e.Seq, e.Price)
		}
	case KindCancel, KindModify, KindTrade:
	default:
		return fmt.Errorf("feed: seq %d: unknown kind %q", e.Seq, e.Kind)
	}
	if e.Instrument == "" {
		return fmt.Errorf("feed: seq %d: missing instrument", e.Seq)
	}
	if e.OrderID < 0 {
		return fmt.Errorf("feed: seq %d: negative order id %d", e.Seq, e.OrderID)
	}
	return nil
}

// TickConverter turns decimal feed prices into integer book ticks.
type TickConverter struct {
	tick decimal.Decimal
}

func NewTickConverter(tickSize string) (*TickConverter, error) {
	tick, err := decimal.NewFromString(tickSize)
	if err != nil {
		return nil, fmt.Errorf("feed: bad tick size %q: %w", tickSize, err)
	}
	if tick.Sign() <= 0 {
		return nil, fmt.Errorf("feed: tick size %s must be positive", tick)
	}
	return &TickConverter{tick: tick}, nil
}

// Ticks converts price to ticks; prices off the tick grid are rejected.
func (c *TickConverter) Ticks(price decimal.Decimal) (int64, error) {
	q := price.Div(c.tick)
	if !q.IsInteger() {
		return 0, fmt.Errorf("feed: price %s is not a multiple of tick %s", price, c.tick)
	}
	return q.IntPart(), nil
}

// Price converts ticks back to a decimal price.
func (c *TickConverter) Price(ticks int64) decimal.Decimal {
	return c.tick.Mul(decimal.NewFromInt(ticks))
}
