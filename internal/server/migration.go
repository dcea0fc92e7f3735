package server

import (
	"context"
	"os"

	"pvedeploy/internal/model"
	"pvedeploy/internal/repository"
	"pvedeploy/pkg/log"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateServer struct {
	db          *gorm.DB
	log         *log.Logger
	conf        *viper.Viper
	clusterRepo repository.PveClusterRepository
}

func NewMigrateServer(db *gorm.DB, log *log.Logger, conf *viper.Viper, clusterRepo repository.PveClusterRepository) *MigrateServer {
	return &MigrateServer{
		db:          db,
		log:         log,
		conf:        conf,
		clusterRepo: clusterRepo,
	}
}

func (m *MigrateServer) Start(ctx context.Context) error {
	if err := m.db.AutoMigrate(
		// 清单表，由 controller 同步
		&model.PveCluster{},
		&model.PveNode{},
		&model.PveStorage{},
		// 镜像目录
		&model.CloudImage{},
		&model.IsoImage{},
		&model.Deployment{},
	); err != nil {
		m.log.Error("migrate error", zap.Error(err))
		return err
	}
	m.log.Info("AutoMigrate success")

	if err := m.seedCluster(ctx); err != nil {
		m.log.Error("seed cluster error", zap.Error(err))
		return err
	}

	os.Exit(0)
	return nil
}

// seedCluster 按 seed.cluster 配置写入首个集群，已有集群时跳过
func (m *MigrateServer) seedCluster(ctx context.Context) error {
	apiURL := m.conf.GetString("seed.cluster.api_url")
	if apiURL == "" {
		return nil
	}

	clusters, err := m.clusterRepo.GetAllEnabled(ctx)
	if err != nil {
		return err
	}
	if len(clusters) > 0 {
		m.log.Info("enabled cluster already exists, skip seeding", zap.String("cluster", clusters[0].ClusterName))
		return nil
	}

	cluster := &model.PveCluster{
		ClusterName:   m.conf.GetString("seed.cluster.name"),
		Env:           m.conf.GetString("env"),
		ApiUrl:        apiURL,
		UserId:        m.conf.GetString("seed.cluster.user_id"),
		UserToken:     m.conf.GetString("seed.cluster.user_token"),
		IsSchedulable: 1,
		IsEnabled:     1,
	}
	if err := m.clusterRepo.Create(ctx, cluster); err != nil {
		return err
	}

	m.log.Info("seed cluster created",
		zap.String("cluster", cluster.ClusterName),
		zap.String("api_url", cluster.ApiUrl),
		zap.Int64("id", cluster.Id))
	return nil
}

func (m *MigrateServer) Stop(ctx context.Context) error {
	m.log.Info("AutoMigrate stop")
	return nil
}
