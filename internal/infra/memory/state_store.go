package memory

import (
	"context"
	"sync"

	"vocab_reminder_bot/internal/domain/reminder"
)

// StateStore is an in-memory reminder.StateStore used by tests and local
// runs without a database.
type StateStore struct {
	mu   sync.RWMutex
	data map[int64]map[reminder.Purpose]string
}

func NewStateStore() *StateStore {
	return &StateStore{data: make(map[int64]map[reminder.Purpose]string)}
}

func (s *StateStore) Get(_ context.Context, userID int64, purpose reminder.Purpose) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[userID][purpose]
	return value, ok, nil
}

func (s *StateStore) Set(_ context.Context, userID int64, purpose reminder.Purpose, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[userID] == nil {
		s.data[userID] = make(map[reminder.Purpose]string)
	}
	s.data[userID][purpose] = value
	return nil
}

func (s *StateStore) Remove(_ context.Context, userID int64, purpose reminder.Purpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[userID], purpose)
	return nil
}
