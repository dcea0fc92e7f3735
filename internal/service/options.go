package service

import (
	"pvedeploy/pkg/lock"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

func NewLockRetryConfig(conf *viper.Viper) LockRetryConfig {
	return LockRetryConfig{
		MaxAttempts: conf.GetInt("deploy.lock_retry.max_attempts"),
		SettleDelay: conf.GetDuration("deploy.lock_retry.settle_delay"),
	}
}

func NewTemplateCacheConfig(conf *viper.Viper) TemplateCacheConfig {
	return TemplateCacheConfig{
		BaseID:       uint32(conf.GetInt("deploy.template_base_id")),
		Bridge:       conf.GetString("deploy.defaults.bridge"),
		TaskTimeout:  conf.GetDuration("deploy.task_timeout"),
		BuildTimeout: conf.GetDuration("deploy.template_task_timeout"),
	}
}

func NewCloneProvisionerConfig(conf *viper.Viper) CloneProvisionerConfig {
	return CloneProvisionerConfig{
		CloneWaitTimeout: conf.GetDuration("deploy.clone_wait_timeout"),
		PollInterval:     conf.GetDuration("deploy.poll_interval"),
		TaskTimeout:      conf.GetDuration("deploy.task_timeout"),
		TemplateDiskGB:   conf.GetInt("deploy.template_disk_gb"),
		SnippetStorage:   conf.GetString("deploy.defaults.snippet_storage"),
		SnippetDir:       conf.GetString("deploy.snippet_dir"),
	}
}

func NewIsoProvisionerConfig(conf *viper.Viper) IsoProvisionerConfig {
	return IsoProvisionerConfig{
		DefaultStorage:    conf.GetString("deploy.defaults.storage"),
		DefaultBridge:     conf.GetString("deploy.defaults.bridge"),
		DefaultIsoStorage: conf.GetString("deploy.defaults.iso_storage"),
		ProgressInterval:  conf.GetDuration("deploy.upload.progress_interval"),
		TaskTimeout:       conf.GetDuration("deploy.template_task_timeout"),
	}
}

func NewDeploymentConfig(conf *viper.Viper) DeploymentConfig {
	return DeploymentConfig{
		Workers:           conf.GetInt("deploy.workers"),
		QueueSize:         conf.GetInt("deploy.queue_size"),
		TaskTimeout:       conf.GetDuration("deploy.task_timeout"),
		DefaultStorage:    conf.GetString("deploy.defaults.storage"),
		DefaultBridge:     conf.GetString("deploy.defaults.bridge"),
		DefaultIsoStorage: conf.GetString("deploy.defaults.iso_storage"),
	}
}

func NewProgressStoreFromConfig(conf *viper.Viper) *ProgressStore {
	return NewProgressStore(conf.GetInt("deploy.progress.capacity"), conf.GetDuration("deploy.progress.ttl"))
}

// NewProgressMirror 未配置 Redis 时返回 nil
func NewProgressMirror(rdb *redis.Client, conf *viper.Viper) ProgressMirror {
	if rdb == nil {
		return nil
	}
	return NewRedisProgressMirror(rdb, conf.GetDuration("deploy.progress.ttl"))
}

// NewTemplateLocker deploy.template_build_lock=redis 且 Redis 可用时启用构建锁
func NewTemplateLocker(rdb *redis.Client, conf *viper.Viper) *lock.Locker {
	if rdb == nil || conf.GetString("deploy.template_build_lock") != "redis" {
		return nil
	}
	return lock.NewLocker(rdb)
}
