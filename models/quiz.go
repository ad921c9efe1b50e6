package models

import "time"

type Quiz struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	LessonID  uint      `json:"lessonId" gorm:"uniqueIndex;not null"` // one quiz per lesson
	Title     string    `json:"title" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relationships
	Lesson    *Lesson    `json:"lesson,omitempty"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}
