package models

import "time"

// UserProgress tracks per-user lesson completion, created lazily the
// first time a completion-relevant event happens.
type UserProgress struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      uint       `json:"userId" gorm:"not null;uniqueIndex:idx_user_lesson"`
	LessonID    uint       `json:"lessonId" gorm:"not null;uniqueIndex:idx_user_lesson"`
	Completed   bool       `json:"completed" gorm:"not null;default:false"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// Relationships
	Lesson Lesson `json:"lesson,omitempty"`
}
