package journal

import (
	"fmt"
	"sync"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	byOrder map[string][]*BookEvent // instrument/orderID -> events
	lastSeq map[string]uint64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byOrder: make(map[string][]*BookEvent),
		lastSeq: make(map[string]uint64),
	}
}

func orderKey(instrument string, orderID int64) string {
	return fmt.Sprintf("%s/%d", instrument, orderID)
}

func (s *InMemoryStore) Append(ev *BookEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := orderKey(ev.Instrument, ev.OrderID)
	s.byOrder[key] = append(s.byOrder[key], ev)
	if ev.Seq > s.lastSeq[ev.Instrument] {
		s.lastSeq[ev.Instrument] = ev.Seq
	}
}

func (s *InMemoryStore) OrderHistory(instrument string, orderID int64) []*BookEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	evs := s.byOrder[orderKey(instrument, orderID)]
	out := make([]*BookEvent, len(evs))
	copy(out, evs)
	return out
}

func (s *InMemoryStore) LastSeq(instrument string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastSeq[instrument]
}
