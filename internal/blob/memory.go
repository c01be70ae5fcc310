package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"campusdrive/internal/domain"
)

// Op names a store operation, used to inject failures
type Op string

const (
	OpPut    Op = "put"
	OpGet    Op = "get"
	OpDelete Op = "delete"
	OpCopy   Op = "copy"
	OpRename Op = "rename"
)

// MemoryStore keeps objects in a map. Failures can be injected per operation.
type MemoryStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	failures map[Op]error
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects:  make(map[string][]byte),
		failures: make(map[Op]error),
	}
}

// Fail makes every subsequent call of op return err (nil clears it)
func (s *MemoryStore) Fail(op Op, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// Keys returns the stored keys, for assertions
func (s *MemoryStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}

// Has reports whether key exists
func (s *MemoryStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

// Put refuses a taken key before consuming r, so callers may retry with another key.
func (s *MemoryStore) Put(ctx context.Context, key string, r io.Reader) error {
	if s.Has(key) {
		return conflict(key)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read blob %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures[OpPut]; err != nil {
		return err
	}
	if _, exists := s.objects[key]; exists {
		return conflict(key)
	}
	s.objects[key] = data
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures[OpGet]; err != nil {
		return nil, err
	}
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", key, domain.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures[OpDelete]; err != nil {
		return err
	}
	delete(s.objects, key)
	return nil
}

func (s *MemoryStore) Copy(ctx context.Context, srcKey, dstKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures[OpCopy]; err != nil {
		return err
	}
	data, ok := s.objects[srcKey]
	if !ok {
		return fmt.Errorf("blob %s: %w", srcKey, domain.ErrNotFound)
	}
	if _, exists := s.objects[dstKey]; exists {
		return conflict(dstKey)
	}
	s.objects[dstKey] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) Rename(ctx context.Context, srcKey, dstKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures[OpRename]; err != nil {
		return err
	}
	data, ok := s.objects[srcKey]
	if !ok {
		return fmt.Errorf("blob %s: %w", srcKey, domain.ErrNotFound)
	}
	if srcKey == dstKey {
		return nil
	}
	if _, exists := s.objects[dstKey]; exists {
		return conflict(dstKey)
	}
	s.objects[dstKey] = data
	delete(s.objects, srcKey)
	return nil
}

func conflict(key string) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("blob '%s' already exists", key),
		ResourceType: "blob",
		ResourceID:   key,
	}
}
