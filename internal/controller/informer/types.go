package informer

import (
	"context"
)

// DeltaType 表示资源的变化类型
type DeltaType string

const (
	DeltaAdded   DeltaType = "Added"
	DeltaUpdated DeltaType = "Updated"
	DeltaDeleted DeltaType = "Deleted"
)

// Delta 表示资源的一个变化，Old 仅在 Updated 时有值
type Delta struct {
	Type   DeltaType
	Object interface{}
	Old    interface{}
}

// EventHandler 处理资源变化事件
type EventHandler interface {
	OnAdd(ctx context.Context, obj interface{}) error
	OnUpdate(ctx context.Context, oldObj, newObj interface{}) error
	OnDelete(ctx context.Context, obj interface{}) error
}

// KeyFunc 资源在本地缓存中的唯一键
type KeyFunc func(obj interface{}) (string, error)

// Store 本地缓存
type Store interface {
	Add(key string, obj interface{})
	Delete(key string)
	Get(key string) (interface{}, bool)
	List() []interface{}
}

// ListWatcher 列出资源全量；Proxmox 没有 watch 接口，变化由周期性 List 对比得出
type ListWatcher interface {
	List(ctx context.Context) ([]interface{}, error)
}
