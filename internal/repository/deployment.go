package repository

import (
	"context"
	"errors"
	"time"

	"pvedeploy/internal/model"

	"gorm.io/gorm"
)

// ProgressUpdate 一次独立提交的进度写入，只更新非空字段
type ProgressUpdate struct {
	Status        model.DeploymentStatus
	StatusMessage string
	ErrorMessage  *string
	VMID          *uint32
	DeployedAt    *time.Time
}

type DeploymentRepository interface {
	Create(ctx context.Context, dep *model.Deployment) error
	GetByID(ctx context.Context, id int64) (*model.Deployment, error)
	Delete(ctx context.Context, id int64) error
	// ResetForRun 重新触发：清空 vmid 与错误信息，写入新的 run_id
	ResetForRun(ctx context.Context, id int64, runID, message string) error
	UpdateProgress(ctx context.Context, id int64, upd ProgressUpdate) error
	ListByStatus(ctx context.Context, status model.DeploymentStatus) ([]*model.Deployment, error)
}

func NewDeploymentRepository(r *Repository) DeploymentRepository {
	return &deploymentRepository{Repository: r}
}

type deploymentRepository struct {
	*Repository
}

func (r *deploymentRepository) Create(ctx context.Context, dep *model.Deployment) error {
	now := time.Now()
	if dep.CreateTime.IsZero() {
		dep.CreateTime = now
	}
	dep.UpdateTime = now
	return r.DB(ctx).Create(dep).Error
}

func (r *deploymentRepository) GetByID(ctx context.Context, id int64) (*model.Deployment, error) {
	var dep model.Deployment
	if err := r.DB(ctx).Where("id = ?", id).First(&dep).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &dep, nil
}

func (r *deploymentRepository) Delete(ctx context.Context, id int64) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&model.Deployment{}).Error
}

func (r *deploymentRepository) ResetForRun(ctx context.Context, id int64, runID, message string) error {
	return r.DB(ctx).
		Model(&model.Deployment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"run_id":         runID,
			"vmid":           0,
			"status":         model.DeploymentStatusCreating,
			"status_message": message,
			"error_message":  "",
			"deployed_at":    nil,
			"gmt_modified":   time.Now(),
		}).Error
}

func (r *deploymentRepository) UpdateProgress(ctx context.Context, id int64, upd ProgressUpdate) error {
	updates := map[string]interface{}{
		"gmt_modified": time.Now(),
	}
	if upd.Status != "" {
		updates["status"] = upd.Status
	}
	if upd.StatusMessage != "" {
		updates["status_message"] = upd.StatusMessage
	}
	if upd.ErrorMessage != nil {
		updates["error_message"] = *upd.ErrorMessage
	}
	if upd.VMID != nil {
		updates["vmid"] = *upd.VMID
	}
	if upd.DeployedAt != nil {
		updates["deployed_at"] = *upd.DeployedAt
	}
	return r.DB(ctx).
		Model(&model.Deployment{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *deploymentRepository) ListByStatus(ctx context.Context, status model.DeploymentStatus) ([]*model.Deployment, error) {
	var deps []*model.Deployment
	if err := r.DB(ctx).Where("status = ?", status).Order("id").Find(&deps).Error; err != nil {
		return nil, err
	}
	return deps, nil
}
