package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pvedeploy/internal/controller/informer"
	"pvedeploy/internal/model"
	"pvedeploy/internal/repository"
	"pvedeploy/internal/service"
	"pvedeploy/pkg/log"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	ResyncPeriod      time.Duration
	PollInterval      time.Duration
	ClusterSyncPeriod time.Duration
}

func NewConfig(conf *viper.Viper) Config {
	return Config{
		ResyncPeriod:      conf.GetDuration("controller.resync_period"),
		PollInterval:      conf.GetDuration("controller.poll_interval"),
		ClusterSyncPeriod: conf.GetDuration("controller.cluster_sync_period"),
	}
}

// PveController 把每个启用集群的节点与存储清单同步到数据库，部署引擎只读这些表
type PveController struct {
	clusterRepo repository.PveClusterRepository
	nodeRepo    repository.PveNodeRepository
	storageRepo repository.PveStorageRepository
	factory     service.HypervisorFactory
	logger      *log.Logger
	informers   map[int64]*ClusterInformer
	lock        sync.RWMutex
	conf        Config
}

type ClusterInformer struct {
	Cluster      *model.PveCluster
	Client       informer.InventoryClient
	NodeInformer informer.Informer

	mu               sync.Mutex
	StorageInformers map[string]informer.Informer
	ctx              context.Context
	cancel           context.CancelFunc
}

func NewPveController(
	clusterRepo repository.PveClusterRepository,
	nodeRepo repository.PveNodeRepository,
	storageRepo repository.PveStorageRepository,
	factory service.HypervisorFactory,
	logger *log.Logger,
	conf Config,
) *PveController {
	if conf.ClusterSyncPeriod <= 0 {
		conf.ClusterSyncPeriod = 30 * time.Second
	}
	return &PveController{
		clusterRepo: clusterRepo,
		nodeRepo:    nodeRepo,
		storageRepo: storageRepo,
		factory:     factory,
		logger:      logger,
		informers:   make(map[int64]*ClusterInformer),
		conf:        conf,
	}
}

func (c *PveController) Start(ctx context.Context) error {
	c.logger.Info("starting PVE controller")

	c.syncClusters(ctx)

	// 定期检查新启用或被禁用的集群
	ticker := time.NewTicker(c.conf.ClusterSyncPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.syncClusters(ctx)
		}
	}
}

func (c *PveController) Stop(ctx context.Context) error {
	c.logger.Info("stopping PVE controller")

	c.lock.Lock()
	informers := c.informers
	c.informers = make(map[int64]*ClusterInformer)
	c.lock.Unlock()

	for _, inf := range informers {
		inf.stop()
	}
	return nil
}

// Clusters 当前运行 informer 的集群 id
func (c *PveController) Clusters() []int64 {
	c.lock.RLock()
	defer c.lock.RUnlock()
	ids := make([]int64, 0, len(c.informers))
	for id := range c.informers {
		ids = append(ids, id)
	}
	return ids
}

func (c *PveController) syncClusters(ctx context.Context) {
	// is_enabled = 1 的集群参与资源同步
	clusters, err := c.clusterRepo.GetAllEnabled(ctx)
	if err != nil {
		c.logger.Error("failed to list enabled clusters", zap.Error(err))
		return
	}

	enabled := make(map[int64]*model.PveCluster, len(clusters))
	for _, cluster := range clusters {
		enabled[cluster.Id] = cluster
	}

	c.lock.Lock()
	var toStart []*model.PveCluster
	for _, cluster := range clusters {
		if _, exists := c.informers[cluster.Id]; !exists {
			toStart = append(toStart, cluster)
		}
	}
	var toStop []*ClusterInformer
	for id, inf := range c.informers {
		if _, ok := enabled[id]; !ok {
			c.logger.Info("stopping cluster informer (disabled)", zap.Int64("cluster_id", id), zap.String("cluster", inf.Cluster.ClusterName))
			toStop = append(toStop, inf)
			delete(c.informers, id)
		}
	}
	c.lock.Unlock()

	// 启停都在锁外进行
	for _, cluster := range toStart {
		if err := c.startClusterInformer(ctx, cluster); err != nil {
			c.logger.Error("failed to start cluster informer", zap.Error(err), zap.String("cluster", cluster.ClusterName))
		}
	}
	for _, inf := range toStop {
		inf.stop()
		c.logger.Debug("cluster informer stopped", zap.Int64("cluster_id", inf.Cluster.Id))
	}
}

func (c *PveController) startClusterInformer(ctx context.Context, cluster *model.PveCluster) error {
	client, err := c.factory.ForCluster(cluster)
	if err != nil {
		return fmt.Errorf("failed to create proxmox client: %w", err)
	}

	clusterCtx, cancel := context.WithCancel(ctx)
	inf := &ClusterInformer{
		Cluster:          cluster,
		Client:           client,
		StorageInformers: make(map[string]informer.Informer),
		ctx:              clusterCtx,
		cancel:           cancel,
	}

	// 先登记再启动，避免并发的 syncClusters 重复启动
	c.lock.Lock()
	if _, exists := c.informers[cluster.Id]; exists {
		c.lock.Unlock()
		cancel()
		return nil
	}
	c.informers[cluster.Id] = inf
	c.lock.Unlock()

	c.startNodeInformer(inf)
	c.logger.Info("cluster informer started", zap.String("cluster", cluster.ClusterName), zap.Int64("id", cluster.Id))
	return nil
}

func (c *PveController) startNodeInformer(inf *ClusterInformer) {
	clusterID := inf.Cluster.Id
	nodeKeyFunc := func(obj interface{}) (string, error) {
		node, ok := obj.(*model.PveNode)
		if !ok {
			return "", fmt.Errorf("unexpected object %T", obj)
		}
		return fmt.Sprintf("%s-%d", node.NodeName, clusterID), nil
	}

	nodeInf := informer.NewInformer(
		"node-"+inf.Cluster.ClusterName,
		informer.NewNodeListWatcher(inf.Client, clusterID, inf.Cluster.Env),
		nodeKeyFunc,
		c.logger,
		c.conf.PollInterval,
		c.conf.ResyncPeriod,
	)

	// 存储 informer 随节点出现与消失启停
	nodeInf.AddEventHandler(NewNodeEventHandler(c.nodeRepo, c.logger, clusterID, func(nodeName string, present bool) {
		if present {
			c.startStorageInformer(inf, nodeName)
		} else {
			inf.stopStorageInformer(nodeName)
		}
	}))

	inf.NodeInformer = nodeInf
	nodeInf.Run(inf.ctx)
}

func (c *PveController) startStorageInformer(inf *ClusterInformer, nodeName string) {
	if inf.ctx.Err() != nil {
		return
	}

	inf.mu.Lock()
	defer inf.mu.Unlock()
	if _, exists := inf.StorageInformers[nodeName]; exists {
		return
	}

	clusterID := inf.Cluster.Id
	storageKeyFunc := func(obj interface{}) (string, error) {
		storage, ok := obj.(*model.PveStorage)
		if !ok {
			return "", fmt.Errorf("unexpected object %T", obj)
		}
		return fmt.Sprintf("%s-%s-%d", storage.NodeName, storage.StorageName, clusterID), nil
	}

	storageInf := informer.NewInformer(
		fmt.Sprintf("storage-%s-%s", inf.Cluster.ClusterName, nodeName),
		informer.NewStorageListWatcher(inf.Client, clusterID, nodeName),
		storageKeyFunc,
		c.logger,
		c.conf.PollInterval,
		c.conf.ResyncPeriod,
	)
	storageInf.AddEventHandler(NewStorageEventHandler(c.storageRepo, c.logger, clusterID))

	inf.StorageInformers[nodeName] = storageInf
	storageInf.Run(inf.ctx)
}

func (inf *ClusterInformer) stopStorageInformer(nodeName string) {
	inf.mu.Lock()
	storageInf, ok := inf.StorageInformers[nodeName]
	delete(inf.StorageInformers, nodeName)
	inf.mu.Unlock()

	if ok {
		storageInf.Stop()
	}
}

func (inf *ClusterInformer) stop() {
	inf.cancel()
	if inf.NodeInformer != nil {
		inf.NodeInformer.Stop()
	}

	inf.mu.Lock()
	storageInformers := inf.StorageInformers
	inf.StorageInformers = make(map[string]informer.Informer)
	inf.mu.Unlock()

	for _, stInf := range storageInformers {
		stInf.Stop()
	}
}
