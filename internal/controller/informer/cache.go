package informer

import (
	"sync"
)

// threadSafeStore 线程安全的本地缓存
type threadSafeStore struct {
	lock  sync.RWMutex
	items map[string]interface{}
}

func NewThreadSafeStore() Store {
	return &threadSafeStore{
		items: make(map[string]interface{}),
	}
}

func (s *threadSafeStore) Add(key string, obj interface{}) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.items[key] = obj
}

func (s *threadSafeStore) Delete(key string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.items, key)
}

func (s *threadSafeStore) Get(key string) (interface{}, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	item, exists := s.items[key]
	return item, exists
}

func (s *threadSafeStore) List() []interface{} {
	s.lock.RLock()
	defer s.lock.RUnlock()
	list := make([]interface{}, 0, len(s.items))
	for _, item := range s.items {
		list = append(list, item)
	}
	return list
}
