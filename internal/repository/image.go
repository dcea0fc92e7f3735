package repository

import (
	"context"
	"errors"
	"time"

	"pvedeploy/internal/model"

	"gorm.io/gorm"
)

type CloudImageRepository interface {
	GetByID(ctx context.Context, id int64) (*model.CloudImage, error)
	List(ctx context.Context) ([]*model.CloudImage, error)
	UpdateDownload(ctx context.Context, id int64, status string, progress int, storagePath string) error
}

func NewCloudImageRepository(r *Repository) CloudImageRepository {
	return &cloudImageRepository{Repository: r}
}

type cloudImageRepository struct {
	*Repository
}

func (r *cloudImageRepository) GetByID(ctx context.Context, id int64) (*model.CloudImage, error) {
	var img model.CloudImage
	if err := r.DB(ctx).Where("id = ?", id).First(&img).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &img, nil
}

func (r *cloudImageRepository) List(ctx context.Context) ([]*model.CloudImage, error) {
	var imgs []*model.CloudImage
	if err := r.DB(ctx).Order("id").Find(&imgs).Error; err != nil {
		return nil, err
	}
	return imgs, nil
}

func (r *cloudImageRepository) UpdateDownload(ctx context.Context, id int64, status string, progress int, storagePath string) error {
	updates := map[string]interface{}{
		"download_status":   status,
		"download_progress": progress,
		"gmt_modified":      time.Now(),
	}
	if status == model.DownloadStatusCompleted {
		updates["is_downloaded"] = 1
		updates["storage_path"] = storagePath
	}
	return r.DB(ctx).
		Model(&model.CloudImage{}).
		Where("id = ?", id).
		Updates(updates).Error
}

type IsoImageRepository interface {
	GetByID(ctx context.Context, id int64) (*model.IsoImage, error)
}

func NewIsoImageRepository(r *Repository) IsoImageRepository {
	return &isoImageRepository{Repository: r}
}

type isoImageRepository struct {
	*Repository
}

func (r *isoImageRepository) GetByID(ctx context.Context, id int64) (*model.IsoImage, error) {
	var img model.IsoImage
	if err := r.DB(ctx).Where("id = ?", id).First(&img).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &img, nil
}
