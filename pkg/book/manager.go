package book

import "sync"

// QuoteUpdate is pushed to manager callbacks whenever a mutation may
// have changed a side's best quote. Ok mirrors the BestBid/BestAsk
// emptiness flag.
type QuoteUpdate struct {
	Instrument string
	Side       Side
	Quote      Quote
	Ok         bool
}

type ManagerConfig struct {
	// Capacity is the per-side live order limit of every book the
	// manager creates. Zero means book.DefaultCapacity.
	Capacity int
}

// Manager owns one Book per instrument and serializes access to each of
// them, so callers may feed it from multiple goroutines while every
// individual book still sees a single sequential event stream.
type Manager struct {
	books     sync.Map // instrument -> *managedBook
	callbacks []func(QuoteUpdate)
	cfg       *ManagerConfig
	cbMu      sync.Mutex
}

type managedBook struct {
	mu   sync.Mutex
	book *Book
}

func NewManager(cfg *ManagerConfig) *Manager {
	if cfg == nil {
		cfg = &ManagerConfig{}
	}
	return &Manager{cfg: cfg}
}

// RegisterQuoteCallback adds a listener for best-quote changes on any
// instrument. Callbacks run on the mutating goroutine while the book's
// lock is held; keep them short.
func (m *Manager) RegisterQuoteCallback(cb func(QuoteUpdate)) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.callbacks = append(m.callbacks, cb)
}

func (m *Manager) Add(instrument string, id int64, side Side, price, qty int64) error {
	mb := m.getOrCreate(instrument)
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if err := mb.book.Add(id, side, price, qty); err != nil {
		return err
	}
	m.notify(instrument, mb.book, side)
	return nil
}

func (m *Manager) Cancel(instrument string, id int64) error {
	return m.mutate(instrument, id, (*Book).Cancel)
}

func (m *Manager) Modify(instrument string, id int64, newQty int64) error {
	return m.mutate(instrument, id, func(b *Book, id int64) error {
		return b.Modify(id, newQty)
	})
}

func (m *Manager) Trade(instrument string, id int64, fillQty int64) error {
	return m.mutate(instrument, id, func(b *Book, id int64) error {
		return b.Trade(id, fillQty)
	})
}

// mutate runs op under the book lock and notifies both sides; cancel,
// modify and trade address orders by id alone, so the touched side is
// not known here and the cheap quote reads for both are pushed out.
func (m *Manager) mutate(instrument string, id int64, op func(*Book, int64) error) error {
	mb := m.getOrCreate(instrument)
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if err := op(mb.book, id); err != nil {
		return err
	}
	m.notify(instrument, mb.book, Bid)
	m.notify(instrument, mb.book, Ask)
	return nil
}

func (m *Manager) BestBid(instrument string) (Quote, bool) {
	mb := m.getOrCreate(instrument)
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.book.BestBid()
}

func (m *Manager) BestAsk(instrument string) (Quote, bool) {
	mb := m.getOrCreate(instrument)
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.book.BestAsk()
}

func (m *Manager) DepthAt(instrument string, side Side, price int64) int64 {
	mb := m.getOrCreate(instrument)
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.book.DepthAt(side, price)
}

func (m *Manager) SideSnapshot(instrument string, side Side) []Order {
	mb := m.getOrCreate(instrument)
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.book.SideSnapshot(side)
}

func (m *Manager) LiveCount(instrument string, side Side) int {
	mb := m.getOrCreate(instrument)
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.book.LiveCount(side)
}

// Instruments returns the names of every book the manager has created,
// in no particular order.
func (m *Manager) Instruments() []string {
	var names []string
	m.books.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	return names
}

// Inspect runs fn with the instrument's book under its lock. fn must
// not retain the book past the call.
func (m *Manager) Inspect(instrument string, fn func(*Book)) {
	mb := m.getOrCreate(instrument)
	mb.mu.Lock()
	defer mb.mu.Unlock()
	fn(mb.book)
}

// Validate re-checks invariants on every instrument's book.
func (m *Manager) Validate() error {
	var err error
	m.books.Range(func(_, v any) bool {
		mb := v.(*managedBook)
		mb.mu.Lock()
		err = mb.book.Validate()
		mb.mu.Unlock()
		return err == nil
	})
	return err
}

func (m *Manager) notify(instrument string, b *Book, side Side) {
	m.cbMu.Lock()
	cbs := m.callbacks
	m.cbMu.Unlock()
	if len(cbs) == 0 {
		return
	}
	var u QuoteUpdate
	u.Instrument = instrument
	u.Side = side
	if side == Bid {
		u.Quote, u.Ok = b.BestBid()
	} else {
		u.Quote, u.Ok = b.BestAsk()
	}
	for _, cb := range cbs {
		cb(u)
	}
}

func (m *Manager) getOrCreate(instrument string) *managedBook {
	if val, ok := m.books.Load(instrument); ok {
		return val.(*managedBook)
	}
	mb := &managedBook{book: New(m.cfg.Capacity)}
	actual, _ := m.books.LoadOrStore(instrument, mb)
	return actual.(*managedBook)
}
