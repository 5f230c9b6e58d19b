package app

import (
	"school_lms_backend/docs"
	"school_lms_backend/internal/config"
	"school_lms_backend/internal/middleware"
	"school_lms_backend/internal/model"
	"school_lms_backend/pkg/monitoring"

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
		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.Check)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.PUT("/user/profile", c.user.UpdateProfile)

	rg.GET("/config/active-quarter", c.quarter.GetActive)

	rg.GET("/subjects", c.content.ListSubjects)
	rg.GET("/subjects/:id", c.content.GetSubject)
	rg.GET("/resources", c.content.GetStudentResources)

	rg.GET("/assessments", c.assessment.ListForStudent)
	rg.GET("/assessments/:id/status", c.assessment.GetStatus)
	rg.POST("/assessments/submit", c.assessment.Submit)
	rg.POST("/assessments/media", c.assessment.UploadMedia)
	rg.GET("/progress", c.assessment.GetProgress)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.GET("/students", c.user.ListStudents)

		teacher.POST("/subjects", c.content.CreateSubject)
		teacher.PUT("/subjects/:id", c.content.UpdateSubject)
		teacher.DELETE("/subjects/:id", c.content.DeleteSubject)
		teacher.POST("/topics", c.content.CreateTopic)
		teacher.DELETE("/topics/:id", c.content.DeleteTopic)
		teacher.POST("/subtopics", c.content.CreateSubtopic)

		teacher.GET("/resources", c.content.GetTeacherResources)
		teacher.POST("/resources", c.content.CreateResource)
		teacher.POST("/resources/upload", c.content.UploadResourceFile)
		teacher.PATCH("/resources/:id/publish", c.content.PublishResource)
		teacher.DELETE("/resources/:id", c.content.DeleteResource)

		teacher.GET("/assessments", c.assessment.ListForTeacher)
		teacher.POST("/assessments", c.assessment.Create)
		teacher.GET("/assessments/:id", c.assessment.Get)
		teacher.PUT("/assessments/:id", c.assessment.Update)
		teacher.PATCH("/assessments/:id/publish", c.assessment.Publish)
		teacher.GET("/assessments/:id/attempts", c.assessment.ListAttempts)
		teacher.POST("/attempts/:id/grade", c.assessment.GradeManually)
	}
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.PUT("/config/active-quarter", c.quarter.SetActive)
		admin.DELETE("/assessments/:id", c.assessment.Delete)
		admin.DELETE("/attempts/:id", c.assessment.DeleteAttempt)
	}
}
