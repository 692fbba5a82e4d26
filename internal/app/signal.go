package app

import "sync"

// RefreshSignal tells subscribers that the reminder settings changed out of
// band (completion transition, reset) so any open settings view can re-read
// the enabled state without polling. The signal carries no payload.
type RefreshSignal struct {
	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

func NewRefreshSignal() *RefreshSignal {
	return &RefreshSignal{subs: make(map[int]chan struct{})}
}

// Subscribe registers a listener and returns its channel together with an
// unsubscribe function.
func (s *RefreshSignal) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Publish notifies every current subscriber. A subscriber that has not yet
// drained its previous notification is not blocked on.
func (s *RefreshSignal) Publish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
