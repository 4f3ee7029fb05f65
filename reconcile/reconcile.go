// Package reconcile turns a submitted set edit into create, update and delete
// operations on the set's cards.
package reconcile

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/andrewpaige1/lingocards-api/errs"
	"github.com/andrewpaige1/lingocards-api/models"
)

// TempPrefix marks ids assigned by the client to cards that are not saved yet.
const TempPrefix = "temp-"

const (
	maxTitleLen    = 100
	maxQuestionLen = 500
	maxAnswerLen   = 1000
)

// FormCard is a card as the edit form submits it.
type FormCard struct {
	ID       string `json:"id,omitempty"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Example  string `json:"example,omitempty"`
}

// IsNew reports whether the card carries a client-local id.
func (c FormCard) IsNew() bool {
	return c.ID == "" || strings.HasPrefix(c.ID, TempPrefix)
}

func (c FormCard) trimmed() FormCard {
	return FormCard{
		ID:       c.ID,
		Question: strings.TrimSpace(c.Question),
		Answer:   strings.TrimSpace(c.Answer),
		Example:  strings.TrimSpace(c.Example),
	}
}

// blank cards are dropped from the edit instead of failing it.
func (c FormCard) blank() bool {
	return c.Question == "" && c.Answer == ""
}

// Plan is the outcome of Reconcile. The three lists never share an id.
type Plan struct {
	ToCreate []FormCard `json:"toCreate"`
	ToUpdate []FormCard `json:"toUpdate"`
	ToDelete []string   `json:"toDelete"`
}

// Changes is the explicit edit shape: added cards, edited cards and removed ids.
type Changes struct {
	NewCards     []FormCard `json:"newCards,omitempty"`
	UpdatedCards []FormCard `json:"updatedCards,omitempty"`
	DeletedCards []string   `json:"deletedCards,omitempty"`
}

// FromChanges folds explicit changes into the full list of form cards the set
// would hold afterwards. Removed ids that are not persisted are ignored.
func FromChanges(existing []models.Flashcard, ch Changes) []FormCard {
	deleted := make(map[string]bool, len(ch.DeletedCards))
	for _, id := range ch.DeletedCards {
		deleted[id] = true
	}
	updated := make(map[string]FormCard, len(ch.UpdatedCards))
	for _, c := range ch.UpdatedCards {
		updated[c.ID] = c
	}

	form := make([]FormCard, 0, len(existing)+len(ch.NewCards))
	persisted := make(map[string]bool, len(existing))
	for _, card := range existing {
		persisted[card.ID] = true
		if deleted[card.ID] {
			continue
		}
		if u, ok := updated[card.ID]; ok {
			form = append(form, u)
			continue
		}
		form = append(form, FormCard{ID: card.ID, Question: card.Question, Answer: card.Answer, Example: card.Example})
	}
	// unknown ids stay in the form so validation can reject them
	for _, c := range ch.UpdatedCards {
		if !persisted[c.ID] && !deleted[c.ID] {
			form = append(form, c)
		}
	}
	for i, c := range ch.NewCards {
		c.ID = fmt.Sprintf("%snew-%d", TempPrefix, i)
		form = append(form, c)
	}
	return form
}

// Validate checks an edit before anything is written. Any field error rejects
// the whole submission.
func Validate(title string, existing []models.Flashcard, cards []FormCard) error {
	fields := make(map[string]string)

	title = strings.TrimSpace(title)
	switch {
	case title == "":
		fields["title"] = "Title is required"
	case utf8.RuneCountInString(title) > maxTitleLen:
		fields["title"] = fmt.Sprintf("Title must be at most %d characters", maxTitleLen)
	}

	persisted := make(map[string]bool, len(existing))
	for _, c := range existing {
		persisted[c.ID] = true
	}
	seen := make(map[string]bool, len(cards))
	valid := 0
	for i, raw := range cards {
		c := raw.trimmed()
		key := fmt.Sprintf("cards[%d]", i)
		if c.blank() {
			continue
		}
		if !c.IsNew() {
			switch {
			case !persisted[c.ID]:
				fields[key+".id"] = "Card does not belong to this set"
			case seen[c.ID]:
				fields[key+".id"] = "Card appears more than once"
			}
			seen[c.ID] = true
		}
		switch {
		case c.Question == "":
			fields[key+".question"] = "Question is required"
		case utf8.RuneCountInString(c.Question) > maxQuestionLen:
			fields[key+".question"] = fmt.Sprintf("Question must be at most %d characters", maxQuestionLen)
		}
		switch {
		case c.Answer == "":
			fields[key+".answer"] = "Answer is required"
		case utf8.RuneCountInString(c.Answer) > maxAnswerLen:
			fields[key+".answer"] = fmt.Sprintf("Answer must be at most %d characters", maxAnswerLen)
		}
		if c.Question != "" && c.Answer != "" {
			valid++
		}
	}
	if valid == 0 {
		fields["cards"] = "At least one card needs a question and an answer"
	}

	if len(fields) > 0 {
		return errs.Validation("invalid flashcard set", fields)
	}
	return nil
}

// Reconcile diffs the submitted cards against the persisted ones. Blank cards
// are dropped, so a persisted card that was blanked out ends up in ToDelete.
// Ids that are not persisted in the set are skipped; Validate rejects them.
func Reconcile(existing []models.Flashcard, form []FormCard) Plan {
	persisted := make(map[string]bool, len(existing))
	for _, c := range existing {
		persisted[c.ID] = true
	}

	plan := Plan{ToCreate: []FormCard{}, ToUpdate: []FormCard{}, ToDelete: []string{}}
	kept := make(map[string]bool, len(form))
	for _, raw := range form {
		c := raw.trimmed()
		if c.blank() {
			continue
		}
		switch {
		case c.IsNew():
			c.ID = ""
			plan.ToCreate = append(plan.ToCreate, c)
		case persisted[c.ID] && !kept[c.ID]:
			kept[c.ID] = true
			plan.ToUpdate = append(plan.ToUpdate, c)
		}
	}
	for _, c := range existing {
		if !kept[c.ID] {
			plan.ToDelete = append(plan.ToDelete, c.ID)
		}
	}
	return plan
}

// Size is the card count after the plan is applied to a set of prev cards.
func (p Plan) Size(prev int) int {
	return prev - len(p.ToDelete) + len(p.ToCreate)
}
