package informer

import (
	"context"
	"sort"
	"sync"

	"pvedeploy/pkg/hash"
)

// DeltaFIFO 将全量列表转换为增量事件，内容 hash 未变的资源不产生事件
type DeltaFIFO struct {
	lock     sync.Mutex
	items    []Delta
	keyFunc  KeyFunc
	store    Store
	hashes   map[string]string
	notify   chan struct{}
	replaced bool
}

func NewDeltaFIFO(keyFunc KeyFunc, store Store) *DeltaFIFO {
	return &DeltaFIFO{
		items:   make([]Delta, 0),
		keyFunc: keyFunc,
		store:   store,
		hashes:  make(map[string]string),
		notify:  make(chan struct{}, 1),
	}
}

func (f *DeltaFIFO) push(d Delta) {
	f.items = append(f.items, d)
	select {
	case f.notify <- struct{}{}:
	default:
	}
}

// Replace 用最新全量列表替换缓存，返回产生的事件数
func (f *DeltaFIFO) Replace(items []interface{}) (int, error) {
	type entry struct {
		key  string
		obj  interface{}
		hash string
	}
	entries := make([]entry, 0, len(items))
	for _, item := range items {
		key, err := f.keyFunc(item)
		if err != nil {
			return 0, err
		}
		h, err := hash.CalculateResourceHash(item)
		if err != nil {
			return 0, err
		}
		entries = append(entries, entry{key: key, obj: item, hash: h})
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	f.replaced = true

	before := len(f.items)
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		seen[e.key] = struct{}{}
		old, exists := f.store.Get(e.key)
		switch {
		case !exists:
			f.push(Delta{Type: DeltaAdded, Object: e.obj})
		case f.hashes[e.key] != e.hash:
			f.push(Delta{Type: DeltaUpdated, Object: e.obj, Old: old})
		default:
			continue
		}
		f.store.Add(e.key, e.obj)
		f.hashes[e.key] = e.hash
	}

	// 删除按 key 排序，保证事件顺序稳定
	var gone []string
	for key := range f.hashes {
		if _, ok := seen[key]; !ok {
			gone = append(gone, key)
		}
	}
	sort.Strings(gone)
	for _, key := range gone {
		obj, _ := f.store.Get(key)
		f.push(Delta{Type: DeltaDeleted, Object: obj})
		f.store.Delete(key)
		delete(f.hashes, key)
	}

	return len(f.items) - before, nil
}

// Resync 对缓存中的每个资源重新投递 Updated 事件，用于刷新同步时间
func (f *DeltaFIFO) Resync() {
	f.lock.Lock()
	defer f.lock.Unlock()
	for _, obj := range f.store.List() {
		f.push(Delta{Type: DeltaUpdated, Object: obj, Old: obj})
	}
}

// Pop 阻塞直到有事件或 ctx 结束
func (f *DeltaFIFO) Pop(ctx context.Context, handler func(delta Delta) error) error {
	for {
		f.lock.Lock()
		if len(f.items) > 0 {
			delta := f.items[0]
			f.items = f.items[1:]
			f.lock.Unlock()
			return handler(delta)
		}
		f.lock.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.notify:
		}
	}
}

// HasSynced 首次全量已写入且队列已清空
func (f *DeltaFIFO) HasSynced() bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.replaced && len(f.items) == 0
}
