// Package memory provides an in-process store.Store with an optional byte
// quota, mirroring the bounded local-storage backends the pipeline was
// designed around. It doubles as the reference implementation for tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/unkn0wn-root/linkpreview/store"
)

type Store struct {
	mu    sync.Mutex
	m     map[string][]byte
	used  int64
	quota int64 // bytes of key+value; 0 => unlimited
}

var _ store.Store = (*Store)(nil)

// New returns a Store limited to quota bytes of key+value data.
// quota 0 disables the limit.
func New(quota int64) *Store {
	return &Store{m: make(map[string][]byte), quota: quota}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	cost := int64(len(key) + len(value))
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := int64(0)
	if old, ok := s.m[key]; ok {
		prev = int64(len(key) + len(old))
	}
	if s.quota > 0 && s.used-prev+cost > s.quota {
		return store.ErrQuotaExceeded
	}

	cp := make([]byte, len(value))
	copy(cp, value)
	s.m[key] = cp
	s.used += cost - prev
	return nil
}

func (s *Store) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.m[key]; ok {
		s.used -= int64(len(key) + len(old))
		delete(s.m, key)
	}
	return nil
}

func (s *Store) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.m))
	for k := range s.m {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Close(_ context.Context) error { return nil }

// Len reports the number of stored entries. Intended for tests.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// UsedBytes reports the current key+value byte footprint. Intended for tests.
func (s *Store) UsedBytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.used
}
