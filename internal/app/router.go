package app

import (
	"lms_backend/docs"
	"lms_backend/internal/config"
	"lms_backend/internal/middleware"
	"lms_backend/internal/service"
	"lms_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(s.auth, cfg.JWT.Secret))
	{
		a.registerCommonRoutes(authGroup, c)
		a.registerInstructorRoutes(authGroup, c)
		a.registerQuizAuthoringRoutes(authGroup, c)
		a.registerStudentRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

// registerCommonRoutes 所有角色可访问，课程可见性在服务层判定
func (a *App) registerCommonRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/logout", c.auth.Logout)
	rg.GET("/profile", c.auth.Profile)
	rg.GET("/dashboard", c.dashboard.GetDashboard)

	rg.GET("/courses/:slug", c.course.CourseDetail)
	rg.GET("/courses/:slug/modules/:moduleId/lessons/:lessonId/contents/:contentId", c.course.ContentDetail)
}

func (a *App) registerInstructorRoutes(rg *gin.RouterGroup, c *controllers) {
	instructor := rg.Group("/instructor")
	instructor.Use(middleware.RoleMiddleware(service.IsInstructor, service.IsAdmin))
	{
		instructor.GET("/courses", c.course.ListOwnCourses)
		instructor.POST("/courses", c.course.CreateCourse)
		instructor.PUT("/courses/:slug", c.course.UpdateCourse)
		instructor.DELETE("/courses/:slug", c.course.DeleteCourse)

		instructor.POST("/courses/:slug/modules", c.course.CreateModule)
		instructor.PUT("/courses/:slug/modules/:moduleId", c.course.UpdateModule)
		instructor.DELETE("/courses/:slug/modules/:moduleId", c.course.DeleteModule)

		lessons := instructor.Group("/courses/:slug/modules/:moduleId/lessons")
		{
			lessons.POST("", c.course.CreateLesson)
			lessons.PUT("/:lessonId", c.course.UpdateLesson)
			lessons.DELETE("/:lessonId", c.course.DeleteLesson)

			lessons.POST("/:lessonId/contents", c.course.CreateContent)
			lessons.PUT("/:lessonId/contents/:contentId", c.course.UpdateContent)
			lessons.DELETE("/:lessonId/contents/:contentId", c.course.DeleteContent)
		}
	}
}

// registerQuizAuthoringRoutes 具体测验的归属在服务层校验
func (a *App) registerQuizAuthoringRoutes(rg *gin.RouterGroup, c *controllers) {
	authoring := middleware.RoleMiddleware(service.IsInstructor, service.IsAdmin)

	rg.GET("/quizzes", authoring, c.quiz.ListQuizzes)
	rg.POST("/quizzes", authoring, c.quiz.CreateQuiz)
	rg.GET("/quizzes/:id", authoring, c.quiz.GetQuiz)
	rg.PUT("/quizzes/:id", authoring, c.quiz.UpdateQuiz)
	rg.DELETE("/quizzes/:id", authoring, c.quiz.DeleteQuiz)

	rg.POST("/quizzes/:id/questions", authoring, c.quiz.AddQuestion)
	rg.PUT("/quizzes/:id/questions/:questionId", authoring, c.quiz.UpdateQuestion)
	rg.DELETE("/quizzes/:id/questions/:questionId", authoring, c.quiz.DeleteQuestion)
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	student := middleware.RoleMiddleware(service.IsStudent)

	rg.POST("/courses/:slug/enroll", student, c.enrollment.Enroll)
	rg.GET("/enrollments", student, c.enrollment.ListEnrollments)
	rg.POST("/contents/:contentId/progress", student, c.enrollment.MarkProgress)

	rg.GET("/quizzes/:id/take", student, c.quiz.TakeQuiz)
	rg.POST("/quizzes/:id/submit", student, c.quiz.SubmitQuiz)
	rg.GET("/quizzes/:id/attempts", student, c.quiz.ListAttempts)
	rg.GET("/attempts/:id", student, c.quiz.ViewResult)
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(service.IsAdmin))
	{
		admin.GET("/instructors", c.user.ListInstructors)
		admin.POST("/instructors", c.user.CreateInstructor)
		admin.PUT("/instructors/:id", c.user.UpdateInstructor)
		admin.DELETE("/instructors/:id", c.user.DeleteInstructor)
	}
}
