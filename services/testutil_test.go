package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"sekur/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens an isolated in-memory database per test. The shared
// cache keeps the schema visible across pooled connections.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Lesson{},
		&models.Quiz{},
		&models.Question{},
		&models.Answer{},
		&models.UserProgress{},
		&models.QuizAttempt{},
		&models.QuizAttemptAnswer{},
	)
	if err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, name string) *models.User {
	t.Helper()
	user := models.User{Email: email, Name: name, Password: "irrelevant", Role: models.RoleUser}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &user
}

func seedLesson(t *testing.T, db *gorm.DB, title string) *models.Lesson {
	t.Helper()
	lesson := models.Lesson{Title: title, Content: "# " + title + "\n\nLesson content."}
	if err := db.Create(&lesson).Error; err != nil {
		t.Fatalf("seed lesson: %v", err)
	}
	return &lesson
}

// seedQuiz stores a quiz with its questions and options.
func seedQuiz(t *testing.T, db *gorm.DB, lessonID uint, title string, questions []models.Question) *models.Quiz {
	t.Helper()
	quiz := models.Quiz{LessonID: lessonID, Title: title, Questions: questions}
	if err := db.Create(&quiz).Error; err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	return &quiz
}

func seedAttempt(t *testing.T, db *gorm.DB, userID, quizID uint, score, maxScore int, completedAt time.Time) *models.QuizAttempt {
	t.Helper()
	at := completedAt
	attempt := models.QuizAttempt{
		UserID:      userID,
		QuizID:      quizID,
		Score:       score,
		MaxScore:    maxScore,
		Completed:   Percentage(score, maxScore) >= PassingPercent,
		StartedAt:   completedAt.Add(-time.Minute),
		CompletedAt: &at,
	}
	if err := db.Create(&attempt).Error; err != nil {
		t.Fatalf("seed attempt: %v", err)
	}
	return &attempt
}

func mcQuestion(text string, points int, correct string, wrong ...string) models.Question {
	answers := []models.Answer{{Text: correct, IsCorrect: true, Letter: "A"}}
	letters := []string{"B", "C", "D", "E", "F"}
	for i, w := range wrong {
		answers = append(answers, models.Answer{Text: w, Letter: letters[i]})
	}
	return models.Question{
		Text:    text,
		Type:    models.MultipleChoice,
		Points:  points,
		Answers: answers,
	}
}

func textQuestion(qType models.QuestionType, text string, points int, correctAnswer string) models.Question {
	return models.Question{
		Text:          text,
		Type:          qType,
		Points:        points,
		CorrectAnswer: correctAnswer,
	}
}
