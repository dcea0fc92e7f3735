package informer

import (
	"context"
	"errors"
	"sync"
	"time"

	"pvedeploy/pkg/log"

	"go.uber.org/zap"
)

type Informer interface {
	Run(ctx context.Context)
	Stop()
	AddEventHandler(handler EventHandler)
	HasSynced() bool
	List() []interface{}
}

type informer struct {
	name      string
	reflector *Reflector
	deltaFIFO *DeltaFIFO
	store     Store
	handlers  []EventHandler
	logger    *log.Logger
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewInformer(
	name string,
	listWatcher ListWatcher,
	keyFunc KeyFunc,
	logger *log.Logger,
	pollInterval time.Duration,
	resyncPeriod time.Duration,
) Informer {
	store := NewThreadSafeStore()
	deltaFIFO := NewDeltaFIFO(keyFunc, store)
	reflector := NewReflector(name, listWatcher, deltaFIFO, logger, pollInterval, resyncPeriod)

	return &informer{
		name:      name,
		reflector: reflector,
		deltaFIFO: deltaFIFO,
		store:     store,
		handlers:  make([]EventHandler, 0),
		logger:    logger,
	}
}

// Run 处理器需在 Run 之前注册
func (i *informer) Run(ctx context.Context) {
	ctx, i.cancel = context.WithCancel(ctx)
	i.reflector.Run(ctx)

	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		i.processLoop(ctx)
	}()
}

func (i *informer) Stop() {
	if i.cancel != nil {
		i.cancel()
	}
	i.reflector.Stop()
	i.wg.Wait()
}

func (i *informer) AddEventHandler(handler EventHandler) {
	i.handlers = append(i.handlers, handler)
}

func (i *informer) HasSynced() bool {
	return i.deltaFIFO.HasSynced()
}

// List 本地缓存中的当前资源
func (i *informer) List() []interface{} {
	return i.store.List()
}

func (i *informer) processLoop(ctx context.Context) {
	for {
		err := i.deltaFIFO.Pop(ctx, func(delta Delta) error {
			return i.processDelta(ctx, delta)
		})
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if ctx.Err() != nil {
				return
			}
		}
		if err != nil {
			i.logger.Error("process delta failed", zap.String("name", i.name), zap.Error(err))
		}
	}
}

func (i *informer) processDelta(ctx context.Context, delta Delta) error {
	for _, handler := range i.handlers {
		var err error
		switch delta.Type {
		case DeltaAdded:
			err = handler.OnAdd(ctx, delta.Object)
		case DeltaUpdated:
			err = handler.OnUpdate(ctx, delta.Old, delta.Object)
		case DeltaDeleted:
			err = handler.OnDelete(ctx, delta.Object)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
