package models

import "time"

// Answer is a multiple-choice option for a question.
type Answer struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	QuestionID uint      `json:"questionId" gorm:"not null;index"`
	Text       string    `json:"text" gorm:"not null"`
	IsCorrect  bool      `json:"isCorrect" gorm:"not null;default:false"`
	Letter     string    `json:"letter,omitempty"` // A, B, C, D
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
