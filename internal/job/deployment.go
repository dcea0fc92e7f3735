package job

import (
	"context"
	"time"

	"pvedeploy/internal/service"

	"go.uber.org/zap"
)

// DeploymentJob 部署引擎的后台维护任务
type DeploymentJob interface {
	// PurgeProgress 清理过期的终态进度
	PurgeProgress(ctx context.Context) error
	// AuditTemplates 巡检所有启用集群的模板
	AuditTemplates(ctx context.Context) error
	// RecoverInterrupted 启动时执行一次
	RecoverInterrupted(ctx context.Context) error
}

func NewDeploymentJob(
	job *Job,
	deploymentService service.DeploymentService,
) DeploymentJob {
	return &deploymentJob{
		Job:               job,
		deploymentService: deploymentService,
	}
}

type deploymentJob struct {
	*Job
	deploymentService service.DeploymentService
}

func (j *deploymentJob) PurgeProgress(ctx context.Context) error {
	if n := j.deploymentService.PurgeProgress(time.Now()); n > 0 {
		j.logger.WithContext(ctx).Debug("purged expired progress", zap.Int("count", n))
	}
	return nil
}

func (j *deploymentJob) AuditTemplates(ctx context.Context) error {
	started := time.Now()
	err := j.deploymentService.AuditTemplates(ctx)
	j.logger.WithContext(ctx).Info("template audit run",
		zap.Duration("elapsed", time.Since(started)),
		zap.Bool("ok", err == nil))
	return err
}

func (j *deploymentJob) RecoverInterrupted(ctx context.Context) error {
	n, err := j.deploymentService.RecoverInterrupted(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		j.logger.WithContext(ctx).Warn("marked interrupted deployments as error", zap.Int("count", n))
	}
	return nil
}
