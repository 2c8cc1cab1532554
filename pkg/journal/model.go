package journal

import (
	"fmt"
	"time"
)

type EventKind string

const (
	EventAdd    EventKind = "Add"
	EventCancel EventKind = "Cancel"
	EventModify EventKind = "Modify"
	EventTrade  EventKind = "Trade"
)

// BookEvent is one applied book mutation, journaled for audit. The
// book itself is never persisted; replaying the journal rebuilds it.
type BookEvent struct {
	EventID    string `gorm:"primaryKey"`
	Seq        uint64
	Instrument string
	Kind       EventKind
	OrderID    int64
	Side       string
	Price      int64
	Qty        int64
	// Remaining is the resting quantity after the mutation; zero for a
	// removal.
	Remaining int64
	CreatedAt time.Time
}

func (BookEvent) TableName() string {
	return "book_events"
}

func newEventID(instrument string, seq uint64, kind EventKind) string {
	return fmt.Sprintf("%s-%d-%s", instrument, seq, kind)
}

func NewAddEvent(seq uint64, instrument string, orderID int64, side string, price, qty int64, ts time.Time) *BookEvent {
	return &BookEvent{
		EventID:    newEventID(instrument, seq, EventAdd),
		Seq:        seq,
		Instrument: instrument,
		Kind:       EventAdd,
		OrderID:    orderID,
		Side:       side,
		Price:      price,
		Qty:        qty,
		Remaining:  qty,
		CreatedAt:  ts,
	}
}

func NewCancelEvent(seq uint64, instrument string, orderID int64, ts time.Time) *BookEvent {
	return &BookEvent{
		EventID:    newEventID(instrument, seq, EventCancel),
		Seq:        seq,
		Instrument: instrument,
		Kind:       EventCancel,
		OrderID:    orderID,
		CreatedAt:  ts,
	}
}

func NewModifyEvent(seq uint64, instrument string, orderID int64, newQty int64, ts time.Time) *BookEvent {
	return &BookEvent{
		EventID:    newEventID(instrument, seq, EventModify),
		Seq:        seq,
		Instrument: instrument,
		Kind:       EventModify,
		OrderID:    orderID,
		Qty:        newQty,
		Remaining:  newQty,
		CreatedAt:  ts,
	}
}

func NewTradeEvent(seq uint64, instrument string, orderID int64, fillQty, remaining int64, ts time.Time) *BookEvent {
	return &BookEvent{
		EventID:    newEventID(instrument, seq, EventTrade),
		Seq:        seq,
		Instrument: instrument,
		Kind:       EventTrade,
		OrderID:    orderID,
		Qty:        fillQty,
		Remaining:  remaining,
		CreatedAt:  ts,
	}
}
