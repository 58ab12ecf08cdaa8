package app

import (
	"tutorhub_backend/docs"
	"tutorhub_backend/internal/config"
	"tutorhub_backend/internal/middleware"
	"tutorhub_backend/internal/model"
	"tutorhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c, cfg)

	// 2. 老师端接口
	a.registerTeacherRoutes(router, c, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 分享链接：可选认证，登录学生会自动关联
	assignments := router.Group("/api/public/assignments")
	assignments.Use(middleware.TryAuthMiddleware(cfg))
	{
		assignments.POST("/submit", c.publicAssignment.Submit)
		assignments.GET("/:token", c.publicAssignment.GetAssignment)
		assignments.POST("/:token/start", c.publicAssignment.StartAttempt)
	}
}

func (a *App) registerTeacherRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	teacher := router.Group("/api/teacher")
	teacher.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.RoleTutor))
	{
		teacher.GET("/assignments", c.assignment.ListAssignments)
		teacher.POST("/assignments", c.assignment.CreateAssignment)
		teacher.POST("/assignments/auto-draft", c.assignment.AutoDraft)
		teacher.GET("/assignments/:id", c.assignment.GetAssignment)
		teacher.PUT("/assignments/:id", c.assignment.UpdateAssignment)
		teacher.DELETE("/assignments/:id", c.assignment.DeleteAssignment)
		teacher.PATCH("/assignments/:id/active", c.assignment.SetActive)
		teacher.GET("/assignments/:id/results", c.assignment.GetResults)
		teacher.POST("/assignments/:id/results/export", c.assignment.ExportResults)
		teacher.GET("/live", c.assignment.LiveResults)

		teacher.GET("/students", c.student.ListStudents)
		teacher.POST("/students", c.student.CreateStudent)
	}
}
