package models

import "time"

// QuizAttempt is one immutable submission record. Attempts are
// append-only history: repeated submissions create new rows and the
// MaxScore frozen here keeps old attempts stable when a quiz is edited.
type QuizAttempt struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      uint       `json:"userId" gorm:"not null;index"`
	QuizID      uint       `json:"quizId" gorm:"not null;index"`
	Score       int        `json:"score" gorm:"not null"`
	MaxScore    int        `json:"maxScore" gorm:"not null"`
	Completed   bool       `json:"completed" gorm:"not null;default:false"` // score reached the passing threshold
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// Relationships
	Quiz    *Quiz               `json:"quiz,omitempty"`
	Answers []QuizAttemptAnswer `json:"answers,omitempty" gorm:"foreignKey:AttemptID"`
}
