package controller

import (
	"context"
	"time"

	"pvedeploy/internal/metrics"
	"pvedeploy/internal/model"
	"pvedeploy/internal/repository"
	"pvedeploy/pkg/hash"
	"pvedeploy/pkg/log"

	"go.uber.org/zap"
)

// NodeChangeFunc 节点出现或消失时回调，用于增减节点级 storage informer
type NodeChangeFunc func(nodeName string, present bool)

type NodeEventHandler struct {
	repo      repository.PveNodeRepository
	logger    *log.Logger
	clusterID int64
	onChange  NodeChangeFunc
}

func NewNodeEventHandler(repo repository.PveNodeRepository, logger *log.Logger, clusterID int64, onChange NodeChangeFunc) *NodeEventHandler {
	return &NodeEventHandler{
		repo:      repo,
		logger:    logger,
		clusterID: clusterID,
		onChange:  onChange,
	}
}

func (h *NodeEventHandler) OnAdd(ctx context.Context, obj interface{}) error {
	node, ok := obj.(*model.PveNode)
	if !ok {
		return nil
	}
	if err := h.upsert(ctx, node, true); err != nil {
		return err
	}

	metrics.RecordInventoryEvent("node", "added")
	h.logger.Info("node added", zap.String("node", node.NodeName), zap.Int64("cluster_id", h.clusterID))
	if h.onChange != nil {
		h.onChange(node.NodeName, true)
	}
	return nil
}

func (h *NodeEventHandler) OnUpdate(ctx context.Context, oldObj, newObj interface{}) error {
	node, ok := newObj.(*model.PveNode)
	if !ok {
		return nil
	}
	if err := h.upsert(ctx, node, false); err != nil {
		return err
	}

	metrics.RecordInventoryEvent("node", "updated")
	h.logger.Debug("node updated", zap.String("node", node.NodeName), zap.String("status", node.Status))
	return nil
}

func (h *NodeEventHandler) OnDelete(ctx context.Context, obj interface{}) error {
	node, ok := obj.(*model.PveNode)
	if !ok {
		return nil
	}

	if err := h.repo.DeleteByNodeName(ctx, node.NodeName, h.clusterID); err != nil {
		h.logger.Error("failed to delete node", zap.Error(err), zap.String("node", node.NodeName))
		return err
	}

	metrics.RecordInventoryEvent("node", "deleted")
	h.logger.Info("node deleted", zap.String("node", node.NodeName), zap.Int64("cluster_id", h.clusterID))
	if h.onChange != nil {
		h.onChange(node.NodeName, false)
	}
	return nil
}

// upsert 节点 Id 是模板 ID 的节点序号，已有记录的 Id 由仓库层保留
func (h *NodeEventHandler) upsert(ctx context.Context, node *model.PveNode, created bool) error {
	now := time.Now()
	node.ClusterID = h.clusterID
	node.UpdateTime = now
	if created {
		node.CreateTime = now
	}

	existing, err := h.repo.GetByNodeName(ctx, node.NodeName, h.clusterID)
	if err != nil {
		h.logger.Error("failed to get node", zap.Error(err), zap.String("node", node.NodeName))
		return err
	}
	if existing != nil {
		node.CreateTime = existing.CreateTime
		node.Creator = existing.Creator
		node.IsSchedulable = existing.IsSchedulable
	} else {
		node.IsSchedulable = 1
	}
	// 控制器上报时 Modifier 为空（系统自动同步）
	node.Modifier = ""

	resourceHash, err := hash.CalculateResourceHash(node)
	if err != nil {
		h.logger.Error("failed to calculate resource hash", zap.Error(err), zap.String("node", node.NodeName))
		return err
	}
	node.ResourceHash = resourceHash
	node.LastSyncTime = now

	if err := h.repo.Upsert(ctx, node); err != nil {
		h.logger.Error("failed to upsert node", zap.Error(err), zap.String("node", node.NodeName))
		return err
	}
	return nil
}

type StorageEventHandler struct {
	repo      repository.PveStorageRepository
	logger    *log.Logger
	clusterID int64
}

func NewStorageEventHandler(repo repository.PveStorageRepository, logger *log.Logger, clusterID int64) *StorageEventHandler {
	return &StorageEventHandler{
		repo:      repo,
		logger:    logger,
		clusterID: clusterID,
	}
}

func (h *StorageEventHandler) OnAdd(ctx context.Context, obj interface{}) error {
	storage, ok := obj.(*model.PveStorage)
	if !ok {
		return nil
	}
	if err := h.upsert(ctx, storage); err != nil {
		return err
	}

	metrics.RecordInventoryEvent("storage", "added")
	h.logger.Info("storage added", zap.String("storage", storage.StorageName), zap.String("node", storage.NodeName))
	return nil
}

func (h *StorageEventHandler) OnUpdate(ctx context.Context, oldObj, newObj interface{}) error {
	storage, ok := newObj.(*model.PveStorage)
	if !ok {
		return nil
	}
	if err := h.upsert(ctx, storage); err != nil {
		return err
	}

	metrics.RecordInventoryEvent("storage", "updated")
	h.logger.Debug("storage updated", zap.String("storage", storage.StorageName), zap.String("node", storage.NodeName))
	return nil
}

func (h *StorageEventHandler) OnDelete(ctx context.Context, obj interface{}) error {
	storage, ok := obj.(*model.PveStorage)
	if !ok {
		return nil
	}

	if err := h.repo.DeleteByStorageName(ctx, storage.StorageName, storage.NodeName, h.clusterID); err != nil {
		h.logger.Error("failed to delete storage", zap.Error(err), zap.String("storage", storage.StorageName))
		return err
	}

	metrics.RecordInventoryEvent("storage", "deleted")
	h.logger.Info("storage deleted", zap.String("storage", storage.StorageName), zap.String("node", storage.NodeName))
	return nil
}

func (h *StorageEventHandler) upsert(ctx context.Context, storage *model.PveStorage) error {
	now := time.Now()
	storage.ClusterID = h.clusterID
	storage.UpdateTime = now

	existing, err := h.repo.GetByStorageName(ctx, storage.StorageName, storage.NodeName, h.clusterID)
	if err != nil {
		h.logger.Error("failed to get storage", zap.Error(err), zap.String("storage", storage.StorageName))
		return err
	}
	if existing != nil {
		storage.CreateTime = existing.CreateTime
		storage.Creator = existing.Creator
	} else {
		storage.CreateTime = now
	}
	storage.Modifier = ""

	resourceHash, err := hash.CalculateResourceHash(storage)
	if err != nil {
		h.logger.Error("failed to calculate resource hash", zap.Error(err), zap.String("storage", storage.StorageName))
		return err
	}
	storage.ResourceHash = resourceHash
	storage.LastSyncTime = now

	if err := h.repo.Upsert(ctx, storage); err != nil {
		h.logger.Error("failed to upsert storage", zap.Error(err), zap.String("storage", storage.StorageName))
		return err
	}
	return nil
}
