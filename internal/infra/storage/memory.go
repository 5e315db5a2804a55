package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	domain "github.com/neuromediai/site/internal/domain/detection"
)

// MemoryStore keeps previews in process memory. Default driver.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]domain.Preview
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]domain.Preview)}
}

func (s *MemoryStore) Put(ctx context.Context, filename, mediaType string, data []byte) (domain.PreviewHandle, error) {
	buf := make([]byte, len(data))
	copy(buf, data)

	id := uuid.NewString()
	s.mu.Lock()
	s.items[id] = domain.Preview{MediaType: mediaType, Data: buf}
	s.mu.Unlock()

	return domain.PreviewHandle{ID: id, MediaType: mediaType, Size: int64(len(buf))}, nil
}

func (s *MemoryStore) Open(ctx context.Context, id string) (domain.Preview, error) {
	s.mu.RLock()
	p, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return domain.Preview{}, domain.ErrPreviewNotFound
	}
	return p, nil
}

// Release drops the preview. Releasing an unknown id is not an error.
func (s *MemoryStore) Release(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Check(ctx context.Context) error { return nil }

// Len reports how many previews are held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

var _ domain.PreviewStore = (*MemoryStore)(nil)
