package repository

import (
	"context"
	"errors"

	"pvedeploy/internal/model"

	"gorm.io/gorm"
)

type PveStorageRepository interface {
	GetByStorageName(ctx context.Context, storageName string, nodeName string, clusterID int64) (*model.PveStorage, error)
	ListByNode(ctx context.Context, clusterID int64, nodeName string) ([]*model.PveStorage, error)
	Upsert(ctx context.Context, storage *model.PveStorage) error
	DeleteByStorageName(ctx context.Context, storageName string, nodeName string, clusterID int64) error
}

func NewPveStorageRepository(r *Repository) PveStorageRepository {
	return &pveStorageRepository{Repository: r}
}

type pveStorageRepository struct {
	*Repository
}

func (r *pveStorageRepository) GetByStorageName(ctx context.Context, storageName string, nodeName string, clusterID int64) (*model.PveStorage, error) {
	var storage model.PveStorage
	if err := r.DB(ctx).Where("storage_name = ? AND node_name = ? AND cluster_id = ?", storageName, nodeName, clusterID).First(&storage).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &storage, nil
}

func (r *pveStorageRepository) ListByNode(ctx context.Context, clusterID int64, nodeName string) ([]*model.PveStorage, error) {
	var storages []*model.PveStorage
	if err := r.DB(ctx).Where("cluster_id = ? AND node_name = ?", clusterID, nodeName).Find(&storages).Error; err != nil {
		return nil, err
	}
	return storages, nil
}

func (r *pveStorageRepository) Upsert(ctx context.Context, storage *model.PveStorage) error {
	existingHash, existingID, err := r.hashOf(ctx, "pve_storage",
		"storage_name = ? AND node_name = ? AND cluster_id = ?", storage.StorageName, storage.NodeName, storage.ClusterID)
	if err != nil {
		return err
	}
	if existingID == 0 {
		return r.DB(ctx).Create(storage).Error
	}
	storage.Id = existingID
	if existingHash != "" && existingHash == storage.ResourceHash {
		return r.touch(ctx, &model.PveStorage{}, existingID)
	}
	return r.DB(ctx).Save(storage).Error
}

func (r *pveStorageRepository) DeleteByStorageName(ctx context.Context, storageName string, nodeName string, clusterID int64) error {
	return r.DB(ctx).Where("storage_name = ? AND node_name = ? AND cluster_id = ?", storageName, nodeName, clusterID).Delete(&model.PveStorage{}).Error
}
