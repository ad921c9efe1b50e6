package handlers

import (
	"net/http"

	"sekur/services"

	"github.com/gin-gonic/gin"
)

type LessonHandler struct {
	lessonService *services.LessonService
	quizService   *services.QuizService
}

func NewLessonHandler(lessonService *services.LessonService, quizService *services.QuizService) *LessonHandler {
	return &LessonHandler{
		lessonService: lessonService,
		quizService:   quizService,
	}
}

func (h *LessonHandler) CreateLesson(c *gin.Context) {
	var req services.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lesson, err := h.lessonService.CreateLesson(&req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lesson)
}

func (h *LessonHandler) ListLessons(c *gin.Context) {
	lessons, err := h.lessonService.ListLessons()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lessons)
}

func (h *LessonHandler) GetLesson(c *gin.Context) {
	lessonID, ok := parseID(c, "id")
	if !ok {
		return
	}

	lesson, err := h.lessonService.GetLesson(lessonID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}

// GetLessonQuiz returns the quiz owned by a lesson.
func (h *LessonHandler) GetLessonQuiz(c *gin.Context) {
	lessonID, ok := parseID(c, "id")
	if !ok {
		return
	}

	quiz, err := h.quizService.GetQuizByLesson(lessonID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	lessonID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lesson, err := h.lessonService.UpdateLesson(lessonID, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}

func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	lessonID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.lessonService.DeleteLesson(lessonID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": lessonID})
}
