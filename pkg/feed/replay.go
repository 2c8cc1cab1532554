package feed

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gammazero/deque"
	"go.uber.org/zap"

	"github.com/tdhoang/quotebook/pkg/book"
)

// Replayer drives a Manager from a sequential event stream. Events are
// staged in a FIFO queue at load time and applied in order; the first
// violation stops the replay, since a book fed a malformed stream can
// no longer be trusted.
type Replayer struct {
	mgr     *book.Manager
	ticks   *TickConverter
	pending deque.Deque[Event]
	lastSeq uint64
	log     *zap.Logger
}

func NewReplayer(mgr *book.Manager, ticks *TickConverter, log *zap.Logger) *Replayer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Replayer{mgr: mgr, ticks: ticks, log: log}
}

// Load reads JSON-line events from r, validates each, and stages them.
// Blank lines are skipped. Sequence numbers must be strictly
// increasing across Load calls.
func (r *Replayer) Load(rd io.Reader) (int, error) {
	sc := bufio.NewScanner(rd)
	n := 0
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return n, fmt.Errorf("feed: line %d: %w", n+1, err)
		}
		if err := ev.validate(); err != nil {
			return n, err
		}
		if ev.Seq <= r.lastSeq {
			return n, fmt.Errorf("feed: seq %d out of order (last %d)", ev.Seq, r.lastSeq)
		}
		r.lastSeq = ev.Seq
		r.pending.PushBack(ev)
		n++
	}
	return n, sc.Err()
}

// Run drains the staged queue into the manager. It returns the number
// of events applied; on a violation the offending event stays described
// in the error and nothing further is applied.
func (r *Replayer) Run() (int, error) {
	applied := 0
	for r.pending.Len() > 0 {
		ev := r.pending.PopFront()
		if err := r.Apply(ev); err != nil {
			r.log.Error("replay stopped",
				zap.Uint64("seq", ev.Seq),
				zap.String("instrument", ev.Instrument),
				zap.Error(err))
			return applied, err
		}
		applied++
	}
	return applied, nil
}

// Apply dispatches one event to the manager.
func (r *Replayer) Apply(ev Event) error {
	switch ev.Kind {
	case KindAdd:
		side, err := ev.side()
		if err != nil {
			return err
		}
		price, err := r.priceTicks(ev)
		if err != nil {
			return err
		}
		return r.mgr.Add(ev.Instrument, ev.OrderID, side, price, ev.Qty)
	case KindCancel:
		return r.mgr.Cancel(ev.Instrument, ev.OrderID)
	case KindModify:
		return r.mgr.Modify(ev.Instrument, ev.OrderID, ev.Qty)
	case KindTrade:
		return r.mgr.Trade(ev.Instrument, ev.OrderID, ev.Qty)
	}
	return fmt.Errorf("feed: seq %d: unknown kind %q", ev.Seq, ev.Kind)
}

// priceTicks converts an event price to book ticks. Without a
// converter the feed is taken to be in ticks already, so the price must
// be a whole number.
func (r *Replayer) priceTicks(ev Event) (int64, error) {
	if r.ticks != nil {
		return r.ticks.Ticks(ev.Price)
	}
	if !ev.Price.IsInteger() {
		return 0, fmt.Errorf("feed: seq %d: fractional price %s without a tick size", ev.Seq, ev.Price)
	}
	return ev.Price.IntPart(), nil
}

// Pending returns the number of staged, not yet applied events.
func (r *Replayer) Pending() int {
	return r.pending.Len()
}
