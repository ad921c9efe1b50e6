package services

import (
	"math"
	"strings"

	"sekur/models"
)

// PassingPercent is the threshold at which an attempt counts as
// completed and auto-completes the owning lesson.
const PassingPercent = 75

type SubmittedAnswer struct {
	QuestionID uint   `json:"questionId" binding:"required"`
	UserAnswer string `json:"userAnswer" binding:"required"`
}

type QuestionResult struct {
	QuestionID    uint   `json:"questionId"`
	UserAnswer    string `json:"userAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	PointsEarned  int    `json:"pointsEarned"`
	CorrectAnswer string `json:"correctAnswer"`
}

type GradeResult struct {
	Score      int
	MaxScore   int
	Percentage int
	Passed     bool
	Results    []QuestionResult
}

// Grade evaluates a submission against a quiz. It is a pure function:
// re-grading the same submission always yields the same result.
// Answers referencing unknown question ids are skipped, while
// unanswered questions still count toward MaxScore.
func Grade(quiz *models.Quiz, answers []SubmittedAnswer) GradeResult {
	byID := make(map[uint]*models.Question, len(quiz.Questions))
	maxScore := 0
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		byID[q.ID] = q
		maxScore += questionPoints(q)
	}

	score := 0
	results := make([]QuestionResult, 0, len(answers))
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		correct := evaluate(q, a.UserAnswer)
		earned := 0
		if correct {
			earned = questionPoints(q)
			score += earned
		}
		results = append(results, QuestionResult{
			QuestionID:    a.QuestionID,
			UserAnswer:    a.UserAnswer,
			IsCorrect:     correct,
			PointsEarned:  earned,
			CorrectAnswer: correctAnswerFor(q),
		})
	}

	pct := Percentage(score, maxScore)
	return GradeResult{
		Score:      score,
		MaxScore:   maxScore,
		Percentage: pct,
		Passed:     pct >= PassingPercent,
		Results:    results,
	}
}

// evaluate applies the per-type matching rules. TRUE_FALSE is
// case-insensitive but never trimmed; FILL_IN_BLANK and SHORT_ANSWER
// are case-insensitive and whitespace-trimmed.
func evaluate(q *models.Question, userAnswer string) bool {
	switch q.Type {
	case models.MultipleChoice:
		// Exact, case-sensitive match against the flagged option.
		for _, opt := range q.Answers {
			if opt.IsCorrect {
				return userAnswer == opt.Text
			}
		}
		return false
	case models.TrueFalse:
		return strings.EqualFold(userAnswer, q.CorrectAnswer)
	case models.FillInBlank, models.ShortAnswer:
		return strings.EqualFold(strings.TrimSpace(userAnswer), strings.TrimSpace(q.CorrectAnswer))
	}
	return false
}

func correctAnswerFor(q *models.Question) string {
	if q.Type == models.MultipleChoice {
		for _, opt := range q.Answers {
			if opt.IsCorrect {
				return opt.Text
			}
		}
		return ""
	}
	return q.CorrectAnswer
}

func questionPoints(q *models.Question) int {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}

// Percentage returns the rounded percent score. A zero max score (a
// quiz with no questions) is treated as 0% instead of dividing by zero.
func Percentage(score, maxScore int) int {
	if maxScore <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(maxScore) * 100))
}
