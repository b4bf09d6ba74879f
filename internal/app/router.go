package app

import (
	"assesspro_backend/docs"
	"assesspro_backend/internal/config"
	"assesspro_backend/internal/middleware"
	"assesspro_backend/internal/model"
	"assesspro_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerTesterRoutes(authGroup, c)
		a.registerCreatorRoutes(authGroup, c)
	}

	a.registerAdminRoutes(router, c, repos)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}
}

func (a *App) registerTesterRoutes(rg *gin.RouterGroup, c *controllers) {
	// Catalog browsing
	rg.GET("/catalog/tests", c.catalog.ListTests)
	rg.GET("/catalog/categories", c.catalog.ListCategories)
	rg.GET("/catalog/tests/:id/cooldown", c.catalog.CooldownStatus)

	// Attempt lifecycle
	rg.POST("/tests/:id/start", c.attempt.Start)
	rg.POST("/attempts/:id/answers", c.attempt.SubmitAnswer)
	rg.POST("/attempts/:id/finish", c.attempt.Finish)
	rg.GET("/attempts/:id/results", c.attempt.GetResults)
	rg.GET("/attempts/history", c.attempt.GetHistory)
	rg.GET("/attempts/statistics", c.attempt.GetStatistics)
}

func (a *App) registerCreatorRoutes(rg *gin.RouterGroup, c *controllers) {
	creator := rg.Group("/creator")
	creator.Use(middleware.RoleMiddleware(model.Creator, model.Admin))
	{
		creator.POST("/tests", c.test.CreateTest)
		creator.GET("/tests", c.test.ListTests)
		creator.GET("/tests/:id", c.test.GetTest)
		creator.PUT("/tests/:id", c.test.UpdateTest)
		creator.POST("/tests/:id/publish", c.test.PublishTest)

		creator.GET("/tests/:id/cooldown-exceptions", c.cooldown.ListExceptions)
		creator.POST("/tests/:id/cooldown-exceptions", c.cooldown.CreateException)
		creator.DELETE("/tests/:id/cooldown-exceptions/:userId", c.cooldown.RemoveException)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(a.Config), middleware.ActivityMiddleware(repos.user), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/users", c.admin.ListUsers)
		admin.PUT("/users/:id/disabled", c.admin.SetUserDisabled)
		admin.POST("/attempts/:id/cancel", c.admin.CancelAttempt)
		admin.GET("/statistics", c.admin.GetStatistics)
	}
}
