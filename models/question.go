package models

import "time"

type QuestionType string

const (
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
	TrueFalse      QuestionType = "TRUE_FALSE"
	FillInBlank    QuestionType = "FILL_IN_BLANK"
	ShortAnswer    QuestionType = "SHORT_ANSWER"
)

func (t QuestionType) Valid() bool {
	switch t {
	case MultipleChoice, TrueFalse, FillInBlank, ShortAnswer:
		return true
	}
	return false
}

type Question struct {
	ID     uint         `json:"id" gorm:"primaryKey"`
	QuizID uint         `json:"quizId" gorm:"not null;index"`
	Text   string       `json:"text" gorm:"not null"`
	Type   QuestionType `json:"type" gorm:"type:varchar(20);not null;default:'MULTIPLE_CHOICE'"`
	// CorrectAnswer holds the expected text for every type except
	// MULTIPLE_CHOICE, where the correct option carries an IsCorrect flag.
	CorrectAnswer string    `json:"correctAnswer,omitempty"`
	Points        int       `json:"points" gorm:"not null;default:1"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// Relationships
	Answers []Answer `json:"answers,omitempty" gorm:"foreignKey:QuestionID"`
}
