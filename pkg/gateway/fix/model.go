package fixgateway

import (
	"time"

	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/quickfix"
	"github.com/shopspring/decimal"
)

type NewOrderSingle struct {
	SessionID *quickfix.SessionID

	ClOrdID      string
	Symbol       string
	Side         enum.Side
	OrdType      enum.OrdType
	Price        decimal.Decimal
	OrderQty     decimal.Decimal
	Account      string
	TransactTime time.Time
}

type OrderCancelRequest struct {
	SessionID *quickfix.SessionID

	OrigClOrdID  string
	ClOrdID      string
	Symbol       string
	Side         enum.Side
	TransactTime time.Time
}

type OrderCancelReplaceRequest struct {
	SessionID *quickfix.SessionID

	OrigClOrdID  string
	ClOrdID      string
	Symbol       string
	Side         enum.Side
	OrderQty     decimal.Decimal
	Price        decimal.Decimal
	TransactTime time.Time
}
