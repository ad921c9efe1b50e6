package models

import "time"

type Lesson struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"not null"`
	Content   string    `json:"content" gorm:"type:text;not null"` // markdown
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relationships
	Quiz     *Quiz          `json:"quiz,omitempty" gorm:"foreignKey:LessonID"`
	Progress []UserProgress `json:"-" gorm:"foreignKey:LessonID"`
}
