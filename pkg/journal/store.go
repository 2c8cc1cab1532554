package journal

// Store keeps the in-process view of the journal: per-order event
// history and the high-water sequence per instrument. Durable storage
// is the worker's job (see pkg/journal/repo and pkg/journal/worker).
type Store interface {
	Append(ev *BookEvent)
	OrderHistory(instrument string, orderID int64) []*BookEvent
	LastSeq(instrument string) uint64
}
