package server

import (
	"context"
	"time"

	"pvedeploy/internal/job"
	"pvedeploy/pkg/log"

	"github.com/go-co-op/gocron"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type JobServer struct {
	log           *log.Logger
	conf          *viper.Viper
	scheduler     *gocron.Scheduler
	deploymentJob job.DeploymentJob
}

func NewJobServer(
	log *log.Logger,
	conf *viper.Viper,
	deploymentJob job.DeploymentJob,
) *JobServer {
	return &JobServer{
		log:           log,
		conf:          conf,
		deploymentJob: deploymentJob,
		scheduler:     gocron.NewScheduler(time.UTC),
	}
}

func (j *JobServer) Start(ctx context.Context) error {
	gocron.SetPanicHandler(func(jobName string, recoverData interface{}) {
		j.log.Error("JobServer Panic", zap.String("job", jobName), zap.Any("recover", recoverData))
	})

	// 上次进程退出时未完成的部署
	if err := j.deploymentJob.RecoverInterrupted(ctx); err != nil {
		j.log.Error("recover interrupted deployments error", zap.Error(err))
	}

	purgeEvery := j.conf.GetDuration("job.progress_purge_interval")
	if purgeEvery <= 0 {
		purgeEvery = time.Minute
	}
	_, err := j.scheduler.Every(purgeEvery).Name("progress-purge").SingletonMode().Do(func() {
		if err := j.deploymentJob.PurgeProgress(ctx); err != nil {
			j.log.Error("PurgeProgress error", zap.Error(err))
		}
	})
	if err != nil {
		j.log.Error("PurgeProgress schedule error", zap.Error(err))
		return err
	}

	auditEvery := j.conf.GetDuration("job.template_audit_interval")
	if auditEvery <= 0 {
		auditEvery = 30 * time.Minute
	}
	_, err = j.scheduler.Every(auditEvery).Name("template-audit").SingletonMode().WaitForSchedule().Do(func() {
		if err := j.deploymentJob.AuditTemplates(ctx); err != nil {
			j.log.Error("AuditTemplates error", zap.Error(err))
		}
	})
	if err != nil {
		j.log.Error("AuditTemplates schedule error", zap.Error(err))
		return err
	}

	j.scheduler.StartBlocking()
	return nil
}

func (j *JobServer) Stop(ctx context.Context) error {
	j.scheduler.Stop()
	j.log.Info("JobServer stop...")
	return nil
}
