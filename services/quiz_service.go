package services

import (
	"errors"
	"fmt"
	"time"

	"sekur/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuizService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewQuizService(db *gorm.DB, log *zap.Logger) *QuizService {
	return &QuizService{db: db, log: log}
}

type CreateQuizRequest struct {
	LessonID  uint                    `json:"lessonId" binding:"required"`
	Title     string                  `json:"title" binding:"required,min=3,max=100"`
	Questions []CreateQuestionRequest `json:"questions" binding:"required,min=1,max=20,dive"`
}

type CreateQuestionRequest struct {
	Text          string                `json:"text" binding:"required,min=5,max=1000"`
	Type          models.QuestionType   `json:"type"`
	CorrectAnswer string                `json:"correctAnswer" binding:"max=500"`
	Points        int                   `json:"points"`
	Answers       []CreateAnswerRequest `json:"answers" binding:"omitempty,dive"`
}

type CreateAnswerRequest struct {
	Text      string `json:"text" binding:"required,min=1,max=500"`
	IsCorrect bool   `json:"isCorrect"`
	Letter    string `json:"letter" binding:"max=10"`
}

type UpdateQuizRequest struct {
	LessonID  uint                    `json:"lessonId"`
	Title     string                  `json:"title"`
	Questions []CreateQuestionRequest `json:"questions" binding:"omitempty,min=1,max=20,dive"`
}

type SubmitQuizRequest struct {
	Answers []SubmittedAnswer `json:"answers" binding:"required,min=1,dive"`
}

type SubmitQuizResponse struct {
	AttemptID       uint             `json:"attemptId"`
	Score           int              `json:"score"`
	MaxScore        int              `json:"maxScore"`
	Percentage      int              `json:"percentage"`
	Results         []QuestionResult `json:"results"`
	CompletedAt     *time.Time       `json:"completedAt"`
	LessonCompleted bool             `json:"lessonCompleted"`
}

func (s *QuizService) ListQuizzes() ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := s.db.Preload("Lesson").
		Preload("Questions").
		Order("id DESC").
		Find(&quizzes).Error
	return quizzes, err
}

func (s *QuizService) CreateQuiz(req *CreateQuizRequest) (*models.Quiz, error) {
	var lesson models.Lesson
	if err := s.db.First(&lesson, req.LessonID).Error; err != nil {
		return nil, orNotFound(err)
	}

	// A lesson can only have one quiz.
	var existing models.Quiz
	if err := s.db.Where("lesson_id = ?", req.LessonID).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: a quiz is already set up for this lesson", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := validateQuestions(req.Questions); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	quiz := models.Quiz{
		LessonID: req.LessonID,
		Title:    req.Title,
	}
	if err := tx.Create(&quiz).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := createQuestions(tx, quiz.ID, req.Questions); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return s.GetQuiz(quiz.ID)
}

func (s *QuizService) GetQuiz(quizID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := s.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.id")
	}).
		Preload("Questions.Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("answers.id")
		}).
		First(&quiz, quizID).Error
	if err != nil {
		return nil, orNotFound(err)
	}
	return &quiz, nil
}

func (s *QuizService) GetQuizByLesson(lessonID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := s.db.Where("lesson_id = ?", lessonID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.id")
		}).
		Preload("Questions.Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("answers.id")
		}).
		First(&quiz).Error
	if err != nil {
		return nil, orNotFound(err)
	}
	return &quiz, nil
}

func (s *QuizService) UpdateQuiz(quizID uint, req *UpdateQuizRequest) (*models.Quiz, error) {
	quiz, err := s.GetQuiz(quizID)
	if err != nil {
		return nil, err
	}

	// Moving the quiz to another lesson keeps the one-quiz-per-lesson rule.
	if req.LessonID != 0 && req.LessonID != quiz.LessonID {
		var occupied models.Quiz
		if err := s.db.Where("lesson_id = ? AND id <> ?", req.LessonID, quizID).First(&occupied).Error; err == nil {
			return nil, fmt.Errorf("%w: a quiz is already set up for this lesson", ErrConflict)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		quiz.LessonID = req.LessonID
	}

	if req.Questions != nil {
		if err := validateQuestions(req.Questions); err != nil {
			return nil, err
		}
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if req.Title != "" {
		quiz.Title = req.Title
	}
	quiz.Questions = nil
	if err := tx.Save(quiz).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// Replace all questions and their options when provided.
	if req.Questions != nil {
		var questionIDs []uint
		if err := tx.Model(&models.Question{}).Where("quiz_id = ?", quizID).Pluck("id", &questionIDs).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		if len(questionIDs) > 0 {
			if err := tx.Where("question_id IN ?", questionIDs).Delete(&models.Answer{}).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
			if err := tx.Where("id IN ?", questionIDs).Delete(&models.Question{}).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		}

		if err := createQuestions(tx, quiz.ID, req.Questions); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return s.GetQuiz(quiz.ID)
}

// DeleteQuiz removes the quiz and everything hanging off it: attempt
// answers, attempts, options, questions, then the quiz itself. All or
// nothing.
func (s *QuizService) DeleteQuiz(quizID uint) error {
	var quiz models.Quiz
	if err := s.db.First(&quiz, quizID).Error; err != nil {
		return orNotFound(err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return deleteQuizCascade(tx, []uint{quizID})
	})
}

// SubmitQuiz grades a submission, records an immutable attempt and, on
// a passing score, marks the owning lesson completed. The progress
// update is best effort: its failure never fails the submission.
func (s *QuizService) SubmitQuiz(quizID, userID uint, req *SubmitQuizRequest) (*SubmitQuizResponse, error) {
	quiz, err := s.GetQuiz(quizID)
	if err != nil {
		return nil, err
	}

	result := Grade(quiz, req.Answers)

	now := time.Now().UTC()
	attempt := models.QuizAttempt{
		UserID:      userID,
		QuizID:      quizID,
		Score:       result.Score,
		MaxScore:    result.MaxScore,
		Completed:   result.Passed,
		StartedAt:   now,
		CompletedAt: &now,
	}
	for _, r := range result.Results {
		attempt.Answers = append(attempt.Answers, models.QuizAttemptAnswer{
			QuestionID:   r.QuestionID,
			UserAnswer:   r.UserAnswer,
			IsCorrect:    r.IsCorrect,
			PointsEarned: r.PointsEarned,
		})
	}
	if err := s.db.Create(&attempt).Error; err != nil {
		return nil, err
	}

	if result.Passed {
		if err := s.completeLessonProgress(userID, quiz.LessonID); err != nil {
			s.log.Error("failed to update lesson progress after passing quiz",
				zap.Uint("userId", userID),
				zap.Uint("lessonId", quiz.LessonID),
				zap.Error(err))
		}
	}

	return &SubmitQuizResponse{
		AttemptID:       attempt.ID,
		Score:           result.Score,
		MaxScore:        result.MaxScore,
		Percentage:      result.Percentage,
		Results:         result.Results,
		CompletedAt:     attempt.CompletedAt,
		LessonCompleted: result.Passed,
	}, nil
}

func (s *QuizService) GetUserAttempts(quizID, userID uint) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	err := s.db.Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Preload("Answers").
		Order("started_at DESC").
		Find(&attempts).Error
	return attempts, err
}

// completeLessonProgress upserts the progress row to completed=true.
// Idempotent, so concurrent passing submissions are safe.
func (s *QuizService) completeLessonProgress(userID, lessonID uint) error {
	now := time.Now().UTC()
	progress := models.UserProgress{
		UserID:      userID,
		LessonID:    lessonID,
		Completed:   true,
		CompletedAt: &now,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"completed": true, "completed_at": now}),
	}).Create(&progress).Error
}

func validateQuestions(questions []CreateQuestionRequest) error {
	for i := range questions {
		q := &questions[i]
		if q.Type == "" {
			q.Type = models.MultipleChoice
		}
		switch q.Type {
		case models.MultipleChoice:
			if len(q.Answers) < 2 || len(q.Answers) > 6 {
				return fmt.Errorf("%w: multiple choice questions must have between 2 and 6 answers", ErrValidation)
			}
		case models.TrueFalse, models.FillInBlank, models.ShortAnswer:
			if q.CorrectAnswer == "" {
				return fmt.Errorf("%w: %s questions require a correct answer", ErrValidation, q.Type)
			}
		default:
			return fmt.Errorf("%w: unknown question type %q", ErrValidation, q.Type)
		}
	}
	return nil
}

func createQuestions(tx *gorm.DB, quizID uint, questions []CreateQuestionRequest) error {
	for _, qReq := range questions {
		points := qReq.Points
		if points <= 0 {
			points = 1
		}
		qType := qReq.Type
		if qType == "" {
			qType = models.MultipleChoice
		}

		question := models.Question{
			QuizID:        quizID,
			Text:          qReq.Text,
			Type:          qType,
			CorrectAnswer: qReq.CorrectAnswer,
			Points:        points,
		}
		if err := tx.Create(&question).Error; err != nil {
			return err
		}

		for _, aReq := range qReq.Answers {
			answer := models.Answer{
				QuestionID: question.ID,
				Text:       aReq.Text,
				IsCorrect:  aReq.IsCorrect,
				Letter:     aReq.Letter,
			}
			if err := tx.Create(&answer).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// deleteQuizCascade deletes children before parents so a failure at any
// step rolls the whole transaction back without orphaning rows.
func deleteQuizCascade(tx *gorm.DB, quizIDs []uint) error {
	if len(quizIDs) == 0 {
		return nil
	}

	var attemptIDs []uint
	if err := tx.Model(&models.QuizAttempt{}).Where("quiz_id IN ?", quizIDs).Pluck("id", &attemptIDs).Error; err != nil {
		return err
	}
	if len(attemptIDs) > 0 {
		if err := tx.Where("attempt_id IN ?", attemptIDs).Delete(&models.QuizAttemptAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", attemptIDs).Delete(&models.QuizAttempt{}).Error; err != nil {
			return err
		}
	}

	var questionIDs []uint
	if err := tx.Model(&models.Question{}).Where("quiz_id IN ?", quizIDs).Pluck("id", &questionIDs).Error; err != nil {
		return err
	}
	if len(questionIDs) > 0 {
		if err := tx.Where("question_id IN ?", questionIDs).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", questionIDs).Delete(&models.Question{}).Error; err != nil {
			return err
		}
	}

	return tx.Where("id IN ?", quizIDs).Delete(&models.Quiz{}).Error
}
