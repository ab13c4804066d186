package app

import (
	"mentora_backend/docs"
	"mentora_backend/internal/config"
	"mentora_backend/internal/middleware"
	"mentora_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)

		auth := public.Group("/auth")
		{
			auth.POST("/register", c.auth.Register)
			auth.POST("/login", c.auth.Login)
			auth.POST("/logout", c.auth.Logout)
		}

		curriculum := public.Group("/curriculum")
		{
			curriculum.GET("/lessons/:track", c.curriculum.GetLessons)
			curriculum.GET("/tasks/:track", c.curriculum.GetTasks)
		}
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/auth/me", c.user.Me)

		user := authGroup.Group("/user")
		{
			user.GET("/stats", c.user.Stats)
			user.GET("/daily-progress", c.user.DailyProgress)
			user.PUT("/profile", c.user.UpdateProfile)
			user.POST("/avatar/upload", c.user.UploadAvatar)
		}

		tracks := authGroup.Group("/tracks")
		{
			tracks.GET("/enrolled", c.track.GetEnrolled)
			tracks.POST("/:slug/enroll", c.track.Enroll)
			tracks.GET("/:slug/progress", c.track.GetProgress)
			tracks.PUT("/:slug/progress", c.track.UpdateProgress)
			tracks.GET("/:slug/tasks/completed", c.track.GetCompletedTasks)
			tracks.POST("/tasks/:task_id/complete", c.track.CompleteTask)
		}

		mentor := authGroup.Group("/mentor")
		{
			mentor.POST("/generate-task", c.mentor.GenerateTask)
			mentor.POST("/evaluate", c.mentor.Evaluate)
		}
	}
}
