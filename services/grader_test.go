package services

import (
	"reflect"
	"testing"

	"sekur/models"
)

// buildQuiz assigns ids so submissions can reference questions.
func buildQuiz(questions ...models.Question) *models.Quiz {
	for i := range questions {
		questions[i].ID = uint(i + 1)
	}
	return &models.Quiz{ID: 1, LessonID: 1, Title: "test quiz", Questions: questions}
}

func TestGradeMultipleChoiceExactMatch(t *testing.T) {
	quiz := buildQuiz(mcQuestion("What does XSS stand for?", 1, "Cross-site scripting", "Extra-safe sockets"))

	res := Grade(quiz, []SubmittedAnswer{{QuestionID: 1, UserAnswer: "Cross-site scripting"}})
	if res.Score != 1 || !res.Results[0].IsCorrect {
		t.Fatalf("expected exact match to be correct, got %+v", res)
	}

	// Case differences are not forgiven for multiple choice.
	res = Grade(quiz, []SubmittedAnswer{{QuestionID: 1, UserAnswer: "cross-site scripting"}})
	if res.Score != 0 || res.Results[0].IsCorrect {
		t.Fatalf("expected case mismatch to be incorrect, got %+v", res)
	}
}

func TestGradeTrueFalseCaseInsensitiveButNotTrimmed(t *testing.T) {
	quiz := buildQuiz(textQuestion(models.TrueFalse, "Phishing targets people.", 1, "true"))

	res := Grade(quiz, []SubmittedAnswer{{QuestionID: 1, UserAnswer: "True"}})
	if res.Score != 1 {
		t.Fatalf("expected case-insensitive match, got score %d", res.Score)
	}

	res = Grade(quiz, []SubmittedAnswer{{QuestionID: 1, UserAnswer: " true "}})
	if res.Score != 0 {
		t.Fatalf("expected padded answer to fail for TRUE_FALSE, got score %d", res.Score)
	}
}

func TestGradeFillInBlankAndShortAnswerTrimmed(t *testing.T) {
	quiz := buildQuiz(
		textQuestion(models.FillInBlank, "A ___ attack floods a server.", 1, "DDoS"),
		textQuestion(models.ShortAnswer, "Name the principle of least ___.", 1, " privilege "),
	)

	res := Grade(quiz, []SubmittedAnswer{
		{QuestionID: 1, UserAnswer: " ddos "},
		{QuestionID: 2, UserAnswer: "PRIVILEGE"},
	})
	if res.Score != 2 {
		t.Fatalf("expected trimmed case-insensitive matches, got score %d", res.Score)
	}
}

func TestGradeSkipsUnknownQuestionIDs(t *testing.T) {
	quiz := buildQuiz(textQuestion(models.TrueFalse, "q", 1, "true"))

	res := Grade(quiz, []SubmittedAnswer{
		{QuestionID: 99, UserAnswer: "whatever"},
		{QuestionID: 1, UserAnswer: "true"},
	})
	if len(res.Results) != 1 {
		t.Fatalf("expected unknown question to be skipped, got %d results", len(res.Results))
	}
	if res.Score != 1 || res.MaxScore != 1 {
		t.Fatalf("unexpected score %d/%d", res.Score, res.MaxScore)
	}
}

func TestGradePassingBoundaryExactly75(t *testing.T) {
	quiz := buildQuiz(
		textQuestion(models.TrueFalse, "q1", 1, "true"),
		textQuestion(models.TrueFalse, "q2", 1, "true"),
		textQuestion(models.TrueFalse, "q3", 1, "true"),
		textQuestion(models.TrueFalse, "q4", 1, "true"),
	)

	res := Grade(quiz, []SubmittedAnswer{
		{QuestionID: 1, UserAnswer: "true"},
		{QuestionID: 2, UserAnswer: "true"},
		{QuestionID: 3, UserAnswer: "true"},
		{QuestionID: 4, UserAnswer: "false"},
	})
	if res.Score != 3 || res.MaxScore != 4 || res.Percentage != 75 {
		t.Fatalf("expected 3/4 = 75%%, got %d/%d = %d%%", res.Score, res.MaxScore, res.Percentage)
	}
	if !res.Passed {
		t.Fatalf("exactly 75%% must pass")
	}
}

func TestGradeUnansweredQuestionsCountTowardMaxScore(t *testing.T) {
	quiz := buildQuiz(
		textQuestion(models.TrueFalse, "q1", 2, "true"),
		textQuestion(models.TrueFalse, "q2", 3, "true"),
	)

	res := Grade(quiz, []SubmittedAnswer{{QuestionID: 1, UserAnswer: "true"}})
	if res.Score != 2 || res.MaxScore != 5 {
		t.Fatalf("expected 2/5, got %d/%d", res.Score, res.MaxScore)
	}
	if res.Percentage != 40 {
		t.Fatalf("expected 40%%, got %d%%", res.Percentage)
	}
}

func TestGradeZeroPointQuestionsDefaultToOne(t *testing.T) {
	quiz := buildQuiz(textQuestion(models.TrueFalse, "q", 0, "true"))

	res := Grade(quiz, []SubmittedAnswer{{QuestionID: 1, UserAnswer: "true"}})
	if res.Score != 1 || res.MaxScore != 1 {
		t.Fatalf("expected zero-point question to count as one, got %d/%d", res.Score, res.MaxScore)
	}
}

func TestGradeEmptyQuizIsZeroPercent(t *testing.T) {
	quiz := buildQuiz()

	res := Grade(quiz, nil)
	if res.MaxScore != 0 || res.Percentage != 0 || res.Passed {
		t.Fatalf("expected empty quiz to grade to 0%% and not pass, got %+v", res)
	}
}

func TestGradeIsIdempotentAndBoundedByMaxScore(t *testing.T) {
	quiz := buildQuiz(
		mcQuestion("q1", 2, "right", "wrong"),
		textQuestion(models.ShortAnswer, "q2", 3, "answer"),
		textQuestion(models.TrueFalse, "q3", 1, "false"),
	)
	submission := []SubmittedAnswer{
		{QuestionID: 1, UserAnswer: "right"},
		{QuestionID: 2, UserAnswer: "nope"},
		{QuestionID: 3, UserAnswer: "false"},
	}

	first := Grade(quiz, submission)
	second := Grade(quiz, submission)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("grading must be a pure function of quiz and submission")
	}
	if first.Score > first.MaxScore {
		t.Fatalf("score %d exceeds max score %d", first.Score, first.MaxScore)
	}
}

func TestGradeMultipleChoiceWithoutCorrectOptionNeverMatches(t *testing.T) {
	q := models.Question{
		Text: "broken question", Type: models.MultipleChoice, Points: 1,
		Answers: []models.Answer{{Text: "a"}, {Text: "b"}},
	}
	quiz := buildQuiz(q)

	res := Grade(quiz, []SubmittedAnswer{{QuestionID: 1, UserAnswer: "a"}})
	if res.Score != 0 {
		t.Fatalf("question without a flagged option must not be creditable")
	}
}

func TestPercentageRounding(t *testing.T) {
	cases := []struct {
		score, max, want int
	}{
		{1, 3, 33},
		{2, 3, 67},
		{6, 10, 60},
		{9, 10, 90},
		{0, 0, 0},
		{5, 0, 0},
	}
	for _, tc := range cases {
		if got := Percentage(tc.score, tc.max); got != tc.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tc.score, tc.max, got, tc.want)
		}
	}
}
