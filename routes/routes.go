package routes

import (
	"net/http"

	"sekur/handlers"
	"sekur/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	lessonHandler *handlers.LessonHandler,
	quizHandler *handlers.QuizHandler,
	progressHandler *handlers.ProgressHandler,
	jwtSecret string,
) {
	authRequired := middleware.Auth(jwtSecret)
	adminOnly := middleware.RequireAdmin()

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to SEKUR Platform API", "status": "running"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := router.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	users := router.Group("/users")
	{
		users.POST("", userHandler.Register) // public registration

		users.GET("/profile", authRequired, userHandler.GetProfile)
		users.PATCH("/profile", authRequired, userHandler.UpdateProfile)
		users.PATCH("/profile/password", authRequired, userHandler.ChangePassword)
		users.DELETE("/profile", authRequired, userHandler.DeleteProfile)

		admin := users.Group("", authRequired, adminOnly)
		{
			admin.GET("", userHandler.ListUsers)
			admin.POST("/admin", userHandler.CreateAdmin)
			admin.PATCH("/:id", userHandler.UpdateUser)
			admin.DELETE("/:id", userHandler.DeleteUser)
		}
	}

	lessons := router.Group("/lessons")
	{
		lessons.GET("", lessonHandler.ListLessons)
		lessons.GET("/:id", lessonHandler.GetLesson)
		lessons.GET("/:id/quiz", lessonHandler.GetLessonQuiz)

		lessons.POST("", authRequired, adminOnly, lessonHandler.CreateLesson)
		lessons.PATCH("/:id", authRequired, adminOnly, lessonHandler.UpdateLesson)
		lessons.DELETE("/:id", authRequired, adminOnly, lessonHandler.DeleteLesson)
	}

	quizzes := router.Group("/quizzes", authRequired)
	{
		quizzes.GET("", adminOnly, quizHandler.ListQuizzes)
		quizzes.POST("", adminOnly, quizHandler.CreateQuiz)
		quizzes.GET("/:id", quizHandler.GetQuiz)
		quizzes.PATCH("/:id", adminOnly, quizHandler.UpdateQuiz)
		quizzes.DELETE("/:id", adminOnly, quizHandler.DeleteQuiz)
		quizzes.POST("/:id/submit", quizHandler.SubmitQuiz)
		quizzes.GET("/:id/attempts", quizHandler.GetUserAttempts)
	}

	progress := router.Group("/progress")
	{
		progress.GET("/leaderboard", progressHandler.GetLeaderboard) // public

		progress.GET("", authRequired, progressHandler.GetUserProgress)
		progress.GET("/stats/overview", authRequired, progressHandler.GetUserStats)
		progress.GET("/quizzes", authRequired, progressHandler.GetQuizProgress)
		progress.GET("/comprehensive", authRequired, progressHandler.GetComprehensiveProgress)
		progress.POST("/initialize", authRequired, progressHandler.InitializeProgress)
		progress.GET("/:lessonId", authRequired, progressHandler.GetLessonProgress)
		progress.POST("/:lessonId/complete", authRequired, progressHandler.MarkLessonCompleted)
	}
}
