package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

func NewConfig(p string) *viper.Viper {
	envConf := os.Getenv("APP_CONF")
	if envConf == "" {
		envConf = p
	}
	fmt.Println("load conf file:", envConf)
	return getConfig(envConf)
}

func getConfig(path string) *viper.Viper {
	conf := viper.New()
	SetDefaults(conf)
	conf.SetConfigFile(path)
	if err := conf.ReadInConfig(); err != nil {
		panic(err)
	}
	return conf
}

// SetDefaults 部署引擎相关配置的默认值
func SetDefaults(conf *viper.Viper) {
	conf.SetDefault("http.host", "0.0.0.0")
	conf.SetDefault("http.port", 8000)
	conf.SetDefault("data.db.user.driver", "sqlite")
	conf.SetDefault("data.db.user.dsn", "storage/pvedeploy.db?_busy_timeout=5000")

	conf.SetDefault("deploy.workers", 4)
	conf.SetDefault("deploy.queue_size", 100)
	conf.SetDefault("deploy.template_base_id", 9000)
	conf.SetDefault("deploy.template_disk_gb", 10)
	conf.SetDefault("deploy.clone_wait_timeout", 180*time.Second)
	conf.SetDefault("deploy.poll_interval", 3*time.Second)
	conf.SetDefault("deploy.task_timeout", 5*time.Minute)
	conf.SetDefault("deploy.template_task_timeout", 30*time.Minute)
	conf.SetDefault("deploy.lock_retry.max_attempts", 2)
	conf.SetDefault("deploy.lock_retry.settle_delay", 2*time.Second)
	conf.SetDefault("deploy.progress.capacity", 1024)
	conf.SetDefault("deploy.progress.ttl", 24*time.Hour)
	conf.SetDefault("deploy.upload.progress_interval", 500*time.Millisecond)
	conf.SetDefault("deploy.template_build_lock", "none")
	conf.SetDefault("deploy.defaults.storage", "local-lvm")
	conf.SetDefault("deploy.defaults.bridge", "vmbr0")
	conf.SetDefault("deploy.defaults.iso_storage", "local")
	conf.SetDefault("deploy.defaults.snippet_storage", "local")
	conf.SetDefault("deploy.snippet_dir", "/var/lib/vz/snippets")

	conf.SetDefault("images.cloud_dir", "/var/lib/pvedeploy/cloud-images")
	conf.SetDefault("images.iso_dir", "/var/lib/pvedeploy/isos")

	conf.SetDefault("shell.user", "root")
	conf.SetDefault("shell.port", 22)
	conf.SetDefault("shell.dial_timeout", 10*time.Second)
	conf.SetDefault("shell.max_retries", 3)

	conf.SetDefault("controller.resync_period", 5*time.Minute)
	conf.SetDefault("controller.poll_interval", 5*time.Second)
	conf.SetDefault("controller.cluster_sync_period", 30*time.Second)

	conf.SetDefault("job.progress_purge_interval", time.Minute)
	conf.SetDefault("job.template_audit_interval", 30*time.Minute)
}
