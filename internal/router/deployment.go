package router

import (
	"pvedeploy/internal/middleware"

	"github.com/gin-gonic/gin"
)

func InitDeploymentRouter(
	deps RouterDeps,
	r *gin.RouterGroup,
) {
	// Strict permission routing group
	strictAuthRouter := r.Group("/deployments").Use(middleware.StrictAuth(deps.JWT, deps.Logger))
	{
		strictAuthRouter.POST("", deps.DeploymentHandler.CreateDeployment)
		strictAuthRouter.POST("/:id/start", deps.DeploymentHandler.StartDeployment)
		strictAuthRouter.GET("/:id/progress", deps.DeploymentHandler.GetProgress)
		strictAuthRouter.GET("/:id/progress/ws", deps.DeploymentHandler.ProgressWS)
		strictAuthRouter.GET("/:id/events", deps.DeploymentHandler.ListEvents)
		strictAuthRouter.DELETE("/:id", deps.DeploymentHandler.DeleteDeployment)
	}
}
