package app

import (
	"anchor_lms_backend/internal/config"
	"anchor_lms_backend/internal/middleware"
	"anchor_lms_backend/internal/model"
	"anchor_lms_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services, cfg *config.Config) {
	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(s.user))
	{
		a.registerLearnerRoutes(authGroup, c)
	}

	a.registerAdminRoutes(router, c, s, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/catalog", middleware.TryAuthMiddleware(a.Config), c.course.Catalog)
	}

	router.GET("/metrics", monitoring.PrometheusHandler())
}

func (a *App) registerLearnerRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/me", c.auth.Me)
	rg.GET("/profile", c.user.GetProfile)
	rg.PUT("/profile", c.user.UpdateProfile)

	courses := rg.Group("/courses")
	{
		courses.GET("", c.course.List)
		courses.GET("/:id", c.course.Get)
		courses.GET("/:id/outline", c.course.Outline)
		courses.POST("/:id/enroll", c.course.Enroll)
		courses.GET("/:id/certificate", c.certificate.GetForCourse)
		courses.POST("/:id/certificate", c.certificate.Generate)
	}

	lessons := rg.Group("/lessons")
	{
		lessons.GET("/:lessonId", c.lesson.Get)
		lessons.GET("/:lessonId/resources", c.lesson.ListResources)
		lessons.POST("/:lessonId/complete", c.course.CompleteLesson)
		lessons.GET("/:lessonId/quiz", c.quiz.GetForLesson)
		lessons.POST("/:lessonId/quiz/submit", c.quiz.Submit)
	}

	rg.GET("/quizzes/:quizId/attempts", c.quiz.ListAttempts)

	my := rg.Group("/my")
	{
		my.GET("/courses", c.course.MyCourses)
		my.GET("/certificates", c.certificate.ListMine)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, s *services, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(s.user), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/users", c.user.List)

		admin.POST("/courses", c.course.Create)
		admin.PUT("/courses/:id", c.course.Update)
		admin.DELETE("/courses/:id", c.course.Delete)
		admin.POST("/courses/:id/modules", c.course.CreateModule)

		admin.PUT("/modules/:moduleId", c.course.UpdateModule)
		admin.DELETE("/modules/:moduleId", c.course.DeleteModule)
		admin.POST("/modules/:moduleId/lessons", c.lesson.Create)

		admin.PUT("/lessons/:lessonId", c.lesson.Update)
		admin.DELETE("/lessons/:lessonId", c.lesson.Delete)
		admin.POST("/lessons/:lessonId/video", c.lesson.UploadVideo)
		admin.POST("/lessons/:lessonId/resources", c.lesson.UploadResource)
		admin.PUT("/lessons/:lessonId/quiz", c.quiz.Upsert)
		admin.DELETE("/resources/:resourceId", c.lesson.DeleteResource)

		admin.GET("/reports/overview", c.report.Overview)
		admin.GET("/reports/activity", c.report.Activity)
		admin.GET("/reports/courses/:courseId", c.report.CourseDetail)
	}
}
