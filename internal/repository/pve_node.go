package repository

import (
	"context"
	"errors"
	"time"

	"pvedeploy/internal/model"

	"gorm.io/gorm"
)

type PveNodeRepository interface {
	GetByID(ctx context.Context, id int64) (*model.PveNode, error)
	GetByNodeName(ctx context.Context, nodeName string, clusterID int64) (*model.PveNode, error)
	GetByClusterID(ctx context.Context, clusterID int64) ([]*model.PveNode, error)
	Upsert(ctx context.Context, node *model.PveNode) error
	DeleteByNodeName(ctx context.Context, nodeName string, clusterID int64) error
}

func NewPveNodeRepository(r *Repository) PveNodeRepository {
	return &pveNodeRepository{Repository: r}
}

type pveNodeRepository struct {
	*Repository
}

func (r *pveNodeRepository) GetByID(ctx context.Context, id int64) (*model.PveNode, error) {
	var node model.PveNode
	if err := r.DB(ctx).Where("id = ?", id).First(&node).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &node, nil
}

func (r *pveNodeRepository) GetByNodeName(ctx context.Context, nodeName string, clusterID int64) (*model.PveNode, error) {
	var node model.PveNode
	if err := r.DB(ctx).Where("node_name = ? AND cluster_id = ?", nodeName, clusterID).First(&node).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &node, nil
}

func (r *pveNodeRepository) GetByClusterID(ctx context.Context, clusterID int64) ([]*model.PveNode, error) {
	var nodes []*model.PveNode
	if err := r.DB(ctx).Where("cluster_id = ?", clusterID).Order("id").Find(&nodes).Error; err != nil {
		return nil, err
	}
	return nodes, nil
}

// Upsert hash 相同时只刷新同步时间，避免无意义的整行更新
func (r *pveNodeRepository) Upsert(ctx context.Context, node *model.PveNode) error {
	existingHash, existingID, err := r.hashOf(ctx, "pve_node", "node_name = ? AND cluster_id = ?", node.NodeName, node.ClusterID)
	if err != nil {
		return err
	}
	if existingID == 0 {
		return r.DB(ctx).Create(node).Error
	}
	node.Id = existingID
	if existingHash != "" && existingHash == node.ResourceHash {
		return r.touch(ctx, &model.PveNode{}, existingID)
	}
	return r.DB(ctx).Save(node).Error
}

func (r *pveNodeRepository) DeleteByNodeName(ctx context.Context, nodeName string, clusterID int64) error {
	return r.DB(ctx).Where("node_name = ? AND cluster_id = ?", nodeName, clusterID).Delete(&model.PveNode{}).Error
}

// hashOf 返回已存在记录的 resource_hash 与 id，不存在时 id 为 0
func (r *Repository) hashOf(ctx context.Context, table, where string, args ...interface{}) (string, int64, error) {
	var result struct {
		Id           int64  `gorm:"column:id"`
		ResourceHash string `gorm:"column:resource_hash"`
	}

	err := r.DB(ctx).
		Table(table).
		Select("id, resource_hash").
		Where(where, args...).
		First(&result).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", 0, nil
	}
	if err != nil {
		return "", 0, err
	}
	return result.ResourceHash, result.Id, nil
}

func (r *Repository) touch(ctx context.Context, m interface{}, id int64) error {
	return r.DB(ctx).
		Model(m).
		Where("id = ?", id).
		Update("last_sync_time", time.Now()).Error
}
