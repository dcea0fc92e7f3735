package router

import (
	"pvedeploy/internal/handler"
	"pvedeploy/pkg/jwt"
	"pvedeploy/pkg/log"

	"github.com/spf13/viper"
)

type RouterDeps struct {
	Logger            *log.Logger
	Config            *viper.Viper
	JWT               *jwt.JWT
	DeploymentHandler *handler.DeploymentHandler
}
