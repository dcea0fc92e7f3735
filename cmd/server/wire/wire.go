//go:build wireinject
// +build wireinject

package wire

import (
	"pvedeploy/internal/handler"
	"pvedeploy/internal/job"
	"pvedeploy/internal/repository"
	"pvedeploy/internal/router"
	"pvedeploy/internal/server"
	"pvedeploy/internal/service"
	"pvedeploy/pkg/app"
	"pvedeploy/pkg/jwt"
	"pvedeploy/pkg/log"
	"pvedeploy/pkg/nodeshell"
	"pvedeploy/pkg/server/http"
	"pvedeploy/pkg/sid"

	"github.com/google/wire"
	"github.com/spf13/viper"
)

var repositorySet = wire.NewSet(
	repository.NewDB,
	repository.NewRedis,
	repository.NewMongo,
	repository.NewRepository,
	repository.NewTransaction,
	repository.NewDeploymentRepository,
	repository.NewDeploymentEventRepository,
	repository.NewPveClusterRepository,
	repository.NewPveNodeRepository,
	repository.NewPveStorageRepository,
	repository.NewCloudImageRepository,
	repository.NewIsoImageRepository,
)

var engineSet = wire.NewSet(
	service.NewHypervisorFactory,
	nodeshell.NewExecutorFromConfig,
	wire.Bind(new(service.NodeShell), new(*nodeshell.Executor)),
	service.NewNodeAddressResolver,
	service.NewLockRetryConfig,
	service.NewLockRetryExecutor,
	service.NewImageStore,
	service.NewTemplateLocker,
	service.NewTemplateCacheConfig,
	service.NewTemplateCache,
	service.NewCloneProvisionerConfig,
	service.NewCloneProvisioner,
	service.NewIsoProvisionerConfig,
	service.NewIsoProvisioner,
	service.NewProgressStoreFromConfig,
	service.NewProgressMirror,
	service.NewDeploymentConfig,
)

var serviceSet = wire.NewSet(
	service.NewService,
	service.NewDeploymentService,
)

var handlerSet = wire.NewSet(
	handler.NewHandler,
	handler.NewDeploymentHandler,
)

var jobSet = wire.NewSet(
	job.NewJob,
	job.NewDeploymentJob,
)

var serverSet = wire.NewSet(
	server.NewHTTPServer,
	server.NewJobServer,
)

// build App
func newApp(
	httpServer *http.Server,
	jobServer *server.JobServer,
) *app.App {
	return app.NewApp(
		app.WithServer(httpServer, jobServer),
		app.WithName("pvedeploy-server"),
	)
}

func NewWire(*viper.Viper, *log.Logger) (*app.App, func(), error) {
	panic(wire.Build(
		repositorySet,
		engineSet,
		serviceSet,
		handlerSet,
		jobSet,
		serverSet,
		wire.Struct(new(router.RouterDeps), "*"),
		sid.NewSid,
		jwt.NewJwt,
		newApp,
	))
}
