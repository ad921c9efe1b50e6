package services

import (
	"sekur/models"

	"gorm.io/gorm"
)

type LessonService struct {
	db *gorm.DB
}

func NewLessonService(db *gorm.DB) *LessonService {
	return &LessonService{db: db}
}

type CreateLessonRequest struct {
	Title   string `json:"title" binding:"required,min=3,max=100"`
	Content string `json:"content" binding:"required,min=10"` // markdown
}

type UpdateLessonRequest struct {
	Title   string `json:"title" binding:"omitempty,min=3,max=100"`
	Content string `json:"content" binding:"omitempty,min=10"`
}

func (s *LessonService) CreateLesson(req *CreateLessonRequest) (*models.Lesson, error) {
	lesson := models.Lesson{
		Title:   req.Title,
		Content: req.Content,
	}
	if err := s.db.Create(&lesson).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (s *LessonService) ListLessons() ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := s.db.Order("id").Find(&lessons).Error
	return lessons, err
}

func (s *LessonService) GetLesson(lessonID uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := s.db.First(&lesson, lessonID).Error; err != nil {
		return nil, orNotFound(err)
	}
	return &lesson, nil
}

func (s *LessonService) UpdateLesson(lessonID uint, req *UpdateLessonRequest) (*models.Lesson, error) {
	lesson, err := s.GetLesson(lessonID)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		lesson.Title = req.Title
	}
	if req.Content != "" {
		lesson.Content = req.Content
	}

	if err := s.db.Save(lesson).Error; err != nil {
		return nil, err
	}
	return lesson, nil
}

// DeleteLesson removes the lesson, its quiz with all questions, options,
// attempts and attempt answers, and every progress row pointing at the
// lesson. One transaction: either everything goes or nothing does.
func (s *LessonService) DeleteLesson(lessonID uint) error {
	if _, err := s.GetLesson(lessonID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var quizIDs []uint
		if err := tx.Model(&models.Quiz{}).Where("lesson_id = ?", lessonID).Pluck("id", &quizIDs).Error; err != nil {
			return err
		}
		if err := deleteQuizCascade(tx, quizIDs); err != nil {
			return err
		}

		if err := tx.Where("lesson_id = ?", lessonID).Delete(&models.UserProgress{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Lesson{}, lessonID).Error
	})
}
