package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreAnswer(t *testing.T) {
	q := Question{ID: "c1", Question: "perro", CorrectAnswer: "dog", Options: []string{"dog", "cat"}}

	tests := []struct {
		name      string
		submitted string
		remaining int
		want      Score
	}{
		{"fast correct", "dog", 21, Score{IsCorrect: true, Points: 7}},
		{"full budget", "dog", 30, Score{IsCorrect: true, Points: 10}},
		{"slow correct keeps one point", "dog", 1, Score{IsCorrect: true, Points: 1}},
		{"correct at zero", "dog", 0, Score{IsCorrect: true, Points: 1}},
		{"remaining above budget is capped", "dog", 90, Score{IsCorrect: true, Points: 10}},
		{"wrong", "cat", 25, Score{}},
		{"timeout", "", 0, Score{}},
		{"case sensitive", "Dog", 20, Score{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreAnswer(q, tt.submitted, tt.remaining, DefaultBudgetSeconds))
		})
	}
}

func TestRecord(t *testing.T) {
	q := Question{ID: "c1", Question: "gato", CorrectAnswer: "cat"}

	rec := Record(q, "cat", 21, DefaultBudgetSeconds)

	assert.Equal(t, AnswerRecord{
		QuestionID:       "c1",
		Question:         "gato",
		CorrectAnswer:    "cat",
		UserAnswer:       "cat",
		IsCorrect:        true,
		TimeSpentSeconds: 9,
		Points:           7,
	}, rec)

	timeout := Record(q, "", 0, DefaultBudgetSeconds)
	assert.False(t, timeout.IsCorrect)
	assert.Equal(t, 30, timeout.TimeSpentSeconds)
	assert.Zero(t, timeout.Points)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))

	records := []AnswerRecord{
		{IsCorrect: true, Points: 7, TimeSpentSeconds: 9},
		{IsCorrect: true, Points: 1, TimeSpentSeconds: 29},
		{IsCorrect: false, Points: 0, TimeSpentSeconds: 30},
	}

	assert.Equal(t, Summary{
		TotalScore:       8,
		CorrectCount:     2,
		TotalQuestions:   3,
		Accuracy:         67,
		AverageTimeSpent: 22.67,
	}, Summarize(records))
}
