package models

import "time"

type QuizAttemptAnswer struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	AttemptID    uint      `json:"attemptId" gorm:"not null;index"`
	QuestionID   uint      `json:"questionId" gorm:"not null"`
	UserAnswer   string    `json:"userAnswer" gorm:"not null"`
	IsCorrect    bool      `json:"isCorrect" gorm:"not null"`
	PointsEarned int       `json:"pointsEarned" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
}
