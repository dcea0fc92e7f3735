//go:build wireinject
// +build wireinject

package wire

import (
	"pvedeploy/internal/controller"
	"pvedeploy/internal/repository"
	"pvedeploy/internal/server"
	"pvedeploy/internal/service"
	"pvedeploy/pkg/app"
	"pvedeploy/pkg/log"

	"github.com/google/wire"
	"github.com/spf13/viper"
)

var repositorySet = wire.NewSet(
	repository.NewDB,
	repository.NewRedis,
	repository.NewMongo,
	repository.NewRepository,
	repository.NewPveClusterRepository,
	repository.NewPveNodeRepository,
	repository.NewPveStorageRepository,
)

var controllerSet = wire.NewSet(
	service.NewHypervisorFactory,
	controller.NewConfig,
	controller.NewPveController,
)

var serverSet = wire.NewSet(
	server.NewControllerServer,
)

func newApp(
	controllerServer *server.ControllerServer,
) *app.App {
	return app.NewApp(
		app.WithServer(controllerServer),
		app.WithName("pve-controller"),
	)
}

func NewWire(*viper.Viper, *log.Logger) (*app.App, func(), error) {
	panic(wire.Build(
		repositorySet,
		controllerSet,
		serverSet,
		newApp,
	))
}
