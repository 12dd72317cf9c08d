package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/google/uuid"
)

// ProgressMemoryStorage - in-memory журнал веса
type ProgressMemoryStorage struct {
	mu      sync.RWMutex
	entries map[string][]storage.ProgressEntry // key: user_key
}

// NewProgressMemoryStorage создаёт новый журнал
func NewProgressMemoryStorage() *ProgressMemoryStorage {
	return &ProgressMemoryStorage{
		entries: make(map[string][]storage.ProgressEntry),
	}
}

// AppendProgress добавляет запись в конец журнала пользователя
func (s *ProgressMemoryStorage) AppendProgress(ctx context.Context, entry *storage.ProgressEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	s.entries[entry.UserKey] = append(s.entries[entry.UserKey], *entry)
	return nil
}

// ListProgress возвращает историю в порядке добавления
func (s *ProgressMemoryStorage) ListProgress(ctx context.Context, userKey string) ([]storage.ProgressEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.entries[userKey]
	out := make([]storage.ProgressEntry, len(entries))
	copy(out, entries)
	return out, nil
}
