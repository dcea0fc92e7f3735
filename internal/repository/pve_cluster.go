package repository

import (
	"context"
	"errors"

	"pvedeploy/internal/model"

	"gorm.io/gorm"
)

type PveClusterRepository interface {
	Create(ctx context.Context, cluster *model.PveCluster) error
	GetByID(ctx context.Context, id int64) (*model.PveCluster, error)
	GetAllEnabled(ctx context.Context) ([]*model.PveCluster, error) // 启用资源同步的集群
}

func NewPveClusterRepository(r *Repository) PveClusterRepository {
	return &pveClusterRepository{Repository: r}
}

type pveClusterRepository struct {
	*Repository
}

func (r *pveClusterRepository) Create(ctx context.Context, cluster *model.PveCluster) error {
	return r.DB(ctx).Create(cluster).Error
}

func (r *pveClusterRepository) GetByID(ctx context.Context, id int64) (*model.PveCluster, error) {
	var cluster model.PveCluster
	if err := r.DB(ctx).Where("id = ?", id).First(&cluster).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cluster, nil
}

func (r *pveClusterRepository) GetAllEnabled(ctx context.Context) ([]*model.PveCluster, error) {
	var clusters []*model.PveCluster
	if err := r.DB(ctx).Where("is_enabled = ?", 1).Find(&clusters).Error; err != nil {
		return nil, err
	}
	return clusters, nil
}
