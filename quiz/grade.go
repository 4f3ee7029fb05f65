package quiz

import (
	"fmt"

	"github.com/andrewpaige1/lingocards-api/errs"
)

// Submitted is one answer of a finished quiz as the client reports it.
type Submitted struct {
	QuestionID       string `json:"questionId"`
	Answer           string `json:"answer"`
	SecondsRemaining int    `json:"secondsRemaining"`
}

// Grade scores a finished quiz against the set's cards. Every question id must
// name a card of the set and appear at most once; the correct answer always
// comes from the stored card, never from the client.
func Grade(cards []Card, answers []Submitted, budgetSeconds int) ([]AnswerRecord, error) {
	if budgetSeconds <= 0 {
		budgetSeconds = DefaultBudgetSeconds
	}
	byID := make(map[string]Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}

	fields := make(map[string]string)
	if len(answers) == 0 {
		fields["answers"] = "At least one answer is required"
	}
	seen := make(map[string]bool, len(answers))
	records := make([]AnswerRecord, 0, len(answers))
	for i, a := range answers {
		key := fmt.Sprintf("answers[%d].questionId", i)
		card, ok := byID[a.QuestionID]
		switch {
		case !ok:
			fields[key] = "Question does not belong to this set"
			continue
		case seen[a.QuestionID]:
			fields[key] = "Question answered more than once"
			continue
		}
		seen[a.QuestionID] = true
		q := Question{ID: card.ID, Question: card.Question, CorrectAnswer: card.Answer}
		records = append(records, Record(q, a.Answer, a.SecondsRemaining, budgetSeconds))
	}
	if len(fields) > 0 {
		return nil, errs.Validation("invalid quiz answers", fields)
	}
	return records, nil
}
