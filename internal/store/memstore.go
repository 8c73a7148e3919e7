package store

import (
	"context"
	"sort"
	"sync"
)

// MemStore is an in-memory implementation of Storer for testing.
type MemStore struct {
	mu      sync.RWMutex
	stories map[string]*StoryRecord
}

// NewMemStore creates a new in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{stories: make(map[string]*StoryRecord)}
}

// Close is a no-op for MemStore.
func (s *MemStore) Close() error {
	return nil
}

func (s *MemStore) SaveStory(ctx context.Context, rec *StoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var created int64
	if old, ok := s.stories[rec.ID]; ok && rec.ID != "" {
		created = old.CreatedAt
	}
	rec.stamp(created)
	s.stories[rec.ID] = rec.clone()
	return nil
}

func (s *MemStore) GetStory(ctx context.Context, id string) (*StoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.stories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.clone(), nil
}

func (s *MemStore) ListStories(ctx context.Context) ([]*StoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*StoryRecord, 0, len(s.stories))
	for _, rec := range s.stories {
		c := rec.clone()
		c.Document = nil
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *MemStore) DeleteStory(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.stories, id)
	return nil
}

func (s *MemStore) CountStories(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stories), nil
}
