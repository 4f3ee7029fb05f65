package quiz

import "math"

// DefaultBudgetSeconds is the per-question countdown.
const DefaultBudgetSeconds = 30

// Score is the outcome of one answer.
type Score struct {
	IsCorrect bool `json:"isCorrect"`
	Points    int  `json:"points"`
}

// ScoreAnswer grades submitted against q. A correct answer earns one point per
// three seconds left, never less than one; an empty submission is a timeout.
func ScoreAnswer(q Question, submitted string, secondsRemaining, budgetSeconds int) Score {
	if submitted == "" || submitted != q.CorrectAnswer {
		return Score{}
	}
	remaining := max(0, min(secondsRemaining, budgetSeconds))
	return Score{IsCorrect: true, Points: max(1, remaining/3)}
}

// AnswerRecord is what a session keeps per question.
type AnswerRecord struct {
	QuestionID       string `json:"questionId"`
	Question         string `json:"question"`
	CorrectAnswer    string `json:"correctAnswer"`
	UserAnswer       string `json:"userAnswer"`
	IsCorrect        bool   `json:"isCorrect"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
	Points           int    `json:"points"`
}

// Record scores an answer and captures it for the session history.
func Record(q Question, submitted string, secondsRemaining, budgetSeconds int) AnswerRecord {
	score := ScoreAnswer(q, submitted, secondsRemaining, budgetSeconds)
	remaining := max(0, min(secondsRemaining, budgetSeconds))
	return AnswerRecord{
		QuestionID:       q.ID,
		Question:         q.Question,
		CorrectAnswer:    q.CorrectAnswer,
		UserAnswer:       submitted,
		IsCorrect:        score.IsCorrect,
		TimeSpentSeconds: budgetSeconds - remaining,
		Points:           score.Points,
	}
}

// Summary aggregates a finished session.
type Summary struct {
	TotalScore       int     `json:"totalScore"`
	CorrectCount     int     `json:"correctCount"`
	TotalQuestions   int     `json:"totalQuestions"`
	Accuracy         int     `json:"accuracy"`
	AverageTimeSpent float64 `json:"averageTimeSpent"`
}

func Summarize(records []AnswerRecord) Summary {
	s := Summary{TotalQuestions: len(records)}
	if len(records) == 0 {
		return s
	}
	spent := 0
	for _, r := range records {
		s.TotalScore += r.Points
		spent += r.TimeSpentSeconds
		if r.IsCorrect {
			s.CorrectCount++
		}
	}
	s.Accuracy = int(math.Round(float64(s.CorrectCount) / float64(s.TotalQuestions) * 100))
	s.AverageTimeSpent = math.Round(float64(spent)/float64(s.TotalQuestions)*100) / 100
	return s
}
