package store

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"

	"forum/internal/model"
)

const memoryIDBytes = 8

// Memory keeps posts in process memory, in insertion order.
type Memory struct {
	mu    sync.RWMutex
	items map[string]*model.Post
	order []string
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]*model.Post)}
}

func (s *Memory) Close(context.Context) error { return nil }

func (s *Memory) Insert(_ context.Context, title, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := newMemoryID()
	for s.items[id] != nil {
		id = newMemoryID()
	}
	s.items[id] = &model.Post{ID: id, Title: title, Text: text}
	s.order = append(s.order, id)
	return id, nil
}

func (s *Memory) FindByID(_ context.Context, id string) (model.Post, error) {
	if !validMemoryID(id) {
		return model.Post{}, ErrInvalidID
	}
	s.mu.RLock()
	ptr, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return model.Post{}, ErrNotFound
	}
	return *ptr, nil
}

func (s *Memory) List(context.Context) ([]model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Post, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.items[id])
	}
	return out, nil
}

func validMemoryID(id string) bool {
	b, err := base64.RawURLEncoding.DecodeString(id)
	return err == nil && len(b) == memoryIDBytes
}

// newMemoryID returns 8 random bytes, base64url encoded (11 characters).
func newMemoryID() string {
	b := make([]byte, memoryIDBytes)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
