package services

import (
	"errors"
	"testing"
	"time"

	"sekur/models"

	"gorm.io/gorm"
)

func TestCreateAndGetLesson(t *testing.T) {
	db := newTestDB(t)
	svc := NewLessonService(db)

	created, err := svc.CreateLesson(&CreateLessonRequest{
		Title:   "Threat Modeling",
		Content: "# Threat Modeling\n\nSTRIDE and friends.",
	})
	if err != nil {
		t.Fatalf("create lesson: %v", err)
	}

	got, err := svc.GetLesson(created.ID)
	if err != nil {
		t.Fatalf("get lesson: %v", err)
	}
	if got.Title != "Threat Modeling" {
		t.Fatalf("unexpected title %q", got.Title)
	}

	if _, err := svc.GetLesson(9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListLessonsOrderedByID(t *testing.T) {
	db := newTestDB(t)
	svc := NewLessonService(db)

	seedLesson(t, db, "First")
	seedLesson(t, db, "Second")

	lessons, err := svc.ListLessons()
	if err != nil {
		t.Fatalf("list lessons: %v", err)
	}
	if len(lessons) != 2 || lessons[0].Title != "First" || lessons[1].Title != "Second" {
		t.Fatalf("unexpected listing: %+v", lessons)
	}
}

func TestUpdateLessonPartial(t *testing.T) {
	db := newTestDB(t)
	svc := NewLessonService(db)
	lesson := seedLesson(t, db, "Old Title")

	updated, err := svc.UpdateLesson(lesson.ID, &UpdateLessonRequest{Title: "New Title"})
	if err != nil {
		t.Fatalf("update lesson: %v", err)
	}
	if updated.Title != "New Title" {
		t.Fatalf("title not updated: %q", updated.Title)
	}
	if updated.Content != lesson.Content {
		t.Fatalf("content must survive a title-only update")
	}

	if _, err := svc.UpdateLesson(9999, &UpdateLessonRequest{Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteLessonCascadesThroughQuiz(t *testing.T) {
	db := newTestDB(t)
	svc := NewLessonService(db)

	user := seedUser(t, db, "student@sekur.com", "Student")
	lesson := seedLesson(t, db, "OSINT")
	quiz := seedQuiz(t, db, lesson.ID, "OSINT Quiz", []models.Question{
		mcQuestion("q1", 1, "right", "wrong"),
		textQuestion(models.ShortAnswer, "q2", 2, "recon"),
	})

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		attempt := seedAttempt(t, db, user.ID, quiz.ID, i, 3, now.Add(time.Duration(i)*time.Minute))
		answer := models.QuizAttemptAnswer{
			AttemptID:  attempt.ID,
			QuestionID: quiz.Questions[0].ID,
			UserAnswer: "right",
			IsCorrect:  true,
		}
		if err := db.Create(&answer).Error; err != nil {
			t.Fatalf("seed attempt answer: %v", err)
		}
	}
	if err := db.Create(&models.UserProgress{UserID: user.ID, LessonID: lesson.ID}).Error; err != nil {
		t.Fatalf("seed progress: %v", err)
	}

	if err := svc.DeleteLesson(lesson.ID); err != nil {
		t.Fatalf("delete lesson: %v", err)
	}

	for model, name := range map[interface{}]string{
		&models.Lesson{}:            "lessons",
		&models.Quiz{}:              "quizzes",
		&models.Question{}:          "questions",
		&models.Answer{}:            "answers",
		&models.QuizAttempt{}:       "attempts",
		&models.QuizAttemptAnswer{}: "attempt answers",
		&models.UserProgress{}:      "progress rows",
	} {
		var count int64
		db.Model(model).Count(&count)
		if count != 0 {
			t.Fatalf("expected all %s removed, found %d", name, count)
		}
	}

	// Hard delete: a new quiz can claim the freed lesson slot elsewhere,
	// and the row really is gone rather than flagged.
	var raw int64
	if err := db.Session(&gorm.Session{}).Table("lessons").Count(&raw).Error; err != nil {
		t.Fatalf("raw count: %v", err)
	}
	if raw != 0 {
		t.Fatalf("lesson row still present in table")
	}

	if err := svc.DeleteLesson(lesson.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestDeleteLessonRollsBackWhenCascadeFails(t *testing.T) {
	db := newTestDB(t)
	svc := NewLessonService(db)

	user := seedUser(t, db, "student@sekur.com", "Student")
	lesson := seedLesson(t, db, "Rollback Lesson")
	quiz := seedQuiz(t, db, lesson.ID, "Rollback Quiz", []models.Question{
		textQuestion(models.TrueFalse, "q", 1, "true"),
	})
	seedAttempt(t, db, user.ID, quiz.ID, 1, 1, time.Now().UTC())

	// Break a table the cascade touches after the quiz rows, so the
	// transaction fails partway through.
	if err := db.Migrator().DropTable(&models.UserProgress{}); err != nil {
		t.Fatalf("drop progress table: %v", err)
	}

	if err := svc.DeleteLesson(lesson.ID); err == nil {
		t.Fatalf("expected delete to fail against the broken table")
	}

	for model, name := range map[interface{}]string{
		&models.Lesson{}:      "lessons",
		&models.Quiz{}:        "quizzes",
		&models.Question{}:    "questions",
		&models.QuizAttempt{}: "attempts",
	} {
		var count int64
		db.Model(model).Count(&count)
		if count != 1 {
			t.Fatalf("failed cascade must leave %s intact, found %d rows", name, count)
		}
	}
}

func TestDeleteLessonLeavesOtherLessonsAlone(t *testing.T) {
	db := newTestDB(t)
	svc := NewLessonService(db)

	doomed := seedLesson(t, db, "Doomed")
	kept := seedLesson(t, db, "Kept")
	seedQuiz(t, db, kept.ID, "Kept Quiz", []models.Question{textQuestion(models.TrueFalse, "q", 1, "true")})

	if err := svc.DeleteLesson(doomed.ID); err != nil {
		t.Fatalf("delete lesson: %v", err)
	}

	var lessonCount, quizCount int64
	db.Model(&models.Lesson{}).Count(&lessonCount)
	db.Model(&models.Quiz{}).Count(&quizCount)
	if lessonCount != 1 || quizCount != 1 {
		t.Fatalf("unrelated rows were deleted: %d lessons, %d quizzes", lessonCount, quizCount)
	}
}
