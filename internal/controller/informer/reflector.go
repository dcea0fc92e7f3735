package informer

import (
	"context"
	"sync"
	"time"

	"pvedeploy/pkg/log"

	"go.uber.org/zap"
)

// Reflector 周期性全量 List，把差异写入 DeltaFIFO
type Reflector struct {
	name         string
	listWatcher  ListWatcher
	deltaFIFO    *DeltaFIFO
	logger       *log.Logger
	stopCh       chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
	pollInterval time.Duration
	resyncPeriod time.Duration
}

func NewReflector(
	name string,
	listWatcher ListWatcher,
	deltaFIFO *DeltaFIFO,
	logger *log.Logger,
	pollInterval time.Duration,
	resyncPeriod time.Duration,
) *Reflector {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Reflector{
		name:         name,
		listWatcher:  listWatcher,
		deltaFIFO:    deltaFIFO,
		logger:       logger,
		stopCh:       make(chan struct{}),
		pollInterval: pollInterval,
		resyncPeriod: resyncPeriod,
	}
}

func (r *Reflector) Run(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.listAndWatch(ctx)
	}()
}

func (r *Reflector) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	r.wg.Wait()
}

func (r *Reflector) listAndWatch(ctx context.Context) {
	// 首次 List 失败不退出，等下一个周期重试
	if n, err := r.list(ctx); err != nil {
		r.logger.Error("reflector initial list failed", zap.String("name", r.name), zap.Error(err))
	} else {
		r.logger.Info("reflector initial list completed", zap.String("name", r.name), zap.Int("deltas", n))
	}

	watchTicker := time.NewTicker(r.pollInterval)
	defer watchTicker.Stop()

	// resyncPeriod 为 0 时不做重新同步
	var resyncC <-chan time.Time
	if r.resyncPeriod > 0 {
		resyncTicker := time.NewTicker(r.resyncPeriod)
		defer resyncTicker.Stop()
		resyncC = resyncTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-resyncC:
			r.deltaFIFO.Resync()
			r.logger.Debug("reflector resync queued", zap.String("name", r.name))
		case <-watchTicker.C:
			n, err := r.list(ctx)
			if err != nil {
				r.logger.Error("reflector watch failed", zap.String("name", r.name), zap.Error(err))
				continue
			}
			if n > 0 {
				r.logger.Debug("reflector observed changes", zap.String("name", r.name), zap.Int("deltas", n))
			}
		}
	}
}

func (r *Reflector) list(ctx context.Context) (int, error) {
	items, err := r.listWatcher.List(ctx)
	if err != nil {
		return 0, err
	}
	return r.deltaFIFO.Replace(items)
}
