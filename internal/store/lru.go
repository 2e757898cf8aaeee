package store

import (
	"container/list"
	"sync"
)

type lruItem[K comparable, V any] struct {
	key   K
	value V
}

// LRU is a bounded store that evicts the least recently used entry.
// Both Put and Get count as a use, so the evicted entry is never more recent
// than any entry that remains.
type LRU[K comparable, V any] struct {
	capacity int
	onEvict  EvictFunc[K, V]

	mu    sync.Mutex
	ll    *list.List // front is most recently used
	items map[K]*list.Element
}

var _ Store[string, int] = (*LRU[string, int])(nil)

// NewLRU creates an LRU store holding at most capacity entries.
func NewLRU[K comparable, V any](capacity int, onEvict EvictFunc[K, V]) *LRU[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU[K, V]{
		capacity: capacity,
		onEvict:  onEvict,
		ll:       list.New(),
		items:    make(map[K]*list.Element, capacity),
	}
}

// Put inserts or overwrites key and marks it most recently used.
func (s *LRU[K, V]) Put(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[key]; ok {
		elem.Value.(*lruItem[K, V]).value = value
		s.ll.MoveToFront(elem)
		return
	}

	s.items[key] = s.ll.PushFront(&lruItem[K, V]{key: key, value: value})
	for s.ll.Len() > s.capacity {
		s.evictOldest()
	}
}

// Get returns the value for key and marks it most recently used.
func (s *LRU[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	s.ll.MoveToFront(elem)
	return elem.Value.(*lruItem[K, V]).value, true
}

// Remove deletes key if present.
func (s *LRU[K, V]) Remove(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		return false
	}
	s.ll.Remove(elem)
	delete(s.items, key)
	return true
}

// Len returns the number of resident entries.
func (s *LRU[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ll.Len()
}

// Keys returns resident keys from most to least recently used.
func (s *LRU[K, V]) Keys() []K {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]K, 0, s.ll.Len())
	for elem := s.ll.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*lruItem[K, V]).key)
	}
	return keys
}

// Range visits entries from most to least recently used without promoting them.
func (s *LRU[K, V]) Range(fn func(key K, value V) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for elem := s.ll.Front(); elem != nil; elem = elem.Next() {
		item := elem.Value.(*lruItem[K, V])
		if !fn(item.key, item.value) {
			return
		}
	}
}

// Clear drops every entry.
func (s *LRU[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ll.Init()
	clear(s.items)
}

// Capacity returns the configured bound.
func (s *LRU[K, V]) Capacity() int {
	return s.capacity
}

// evictOldest must be called with s.mu held.
func (s *LRU[K, V]) evictOldest() {
	elem := s.ll.Back()
	if elem == nil {
		return
	}
	item := s.ll.Remove(elem).(*lruItem[K, V])
	delete(s.items, item.key)
	if s.onEvict != nil {
		s.onEvict(item.key, item.value)
	}
}
