package reconcile

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/andrewpaige1/lingocards-api/errs"
	"github.com/andrewpaige1/lingocards-api/models"
	"github.com/andrewpaige1/lingocards-api/progress"
)

// Submission is an edited set as the client sends it. When Cards is present it
// is the full card list of the form; otherwise the explicit Changes are used.
type Submission struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Cards       []FormCard `json:"cards,omitempty"`
	Changes
}

// Editor applies submissions.
type Editor struct {
	db     *gorm.DB
	ledger *progress.Ledger
	logger *slog.Logger
}

func NewEditor(db *gorm.DB, ledger *progress.Ledger, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{db: db, ledger: ledger, logger: logger}
}

// Submit validates and applies an edit of setID by userID in one transaction,
// then recomputes the set's progress against the new card count.
func (e *Editor) Submit(ctx context.Context, userID, setID string, sub Submission) (*models.FlashcardSet, error) {
	var result models.FlashcardSet
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var set models.FlashcardSet
		if err := tx.Where("id = ? AND user_id = ?", setID, userID).First(&set).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("flashcard set not found")
			}
			return errors.Wrap(err, "load set")
		}

		var existing []models.Flashcard
		if err := tx.Where("set_id = ?", setID).Order(models.CardOrder).Find(&existing).Error; err != nil {
			return errors.Wrap(err, "load cards")
		}

		form := sub.Cards
		if form == nil {
			form = FromChanges(existing, sub.Changes)
		}
		if err := Validate(sub.Title, existing, form); err != nil {
			return err
		}
		plan := Reconcile(existing, form)

		if err := e.apply(ctx, tx, &set, existing, sub, plan); err != nil {
			return err
		}
		e.logger.Info("flashcard set edited",
			slog.String("set_id", setID),
			slog.Int("created", len(plan.ToCreate)),
			slog.Int("updated", len(plan.ToUpdate)),
			slog.Int("deleted", len(plan.ToDelete)),
			slog.Int("card_count", plan.Size(len(existing))))

		return tx.Preload("Flashcards", func(db *gorm.DB) *gorm.DB {
			return db.Order(models.CardOrder)
		}).First(&result, "id = ?", setID).Error
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (e *Editor) apply(ctx context.Context, tx *gorm.DB, set *models.FlashcardSet, existing []models.Flashcard, sub Submission, plan Plan) error {
	fields := map[string]any{"title": strings.TrimSpace(sub.Title)}
	if sub.Description != nil {
		fields["description"] = strings.TrimSpace(*sub.Description)
	}
	if err := tx.Model(set).Updates(fields).Error; err != nil {
		return errors.Wrap(err, "update set")
	}

	if len(plan.ToDelete) > 0 {
		if err := tx.Where("set_id = ? AND id IN ?", set.ID, plan.ToDelete).Delete(&models.Flashcard{}).Error; err != nil {
			return errors.Wrap(err, "delete cards")
		}
	}

	current := make(map[string]models.Flashcard, len(existing))
	next := 0
	for _, c := range existing {
		current[c.ID] = c
		next = max(next, c.Position+1)
	}
	for _, c := range plan.ToUpdate {
		old := current[c.ID]
		if old.Question == c.Question && old.Answer == c.Answer && old.Example == c.Example {
			continue
		}
		if err := tx.Model(&models.Flashcard{}).Where("id = ? AND set_id = ?", c.ID, set.ID).Updates(map[string]any{
			"question": c.Question,
			"answer":   c.Answer,
			"example":  c.Example,
		}).Error; err != nil {
			return errors.Wrapf(err, "update card %s", c.ID)
		}
	}

	if len(plan.ToCreate) > 0 {
		cards := make([]models.Flashcard, len(plan.ToCreate))
		for i, c := range plan.ToCreate {
			cards[i] = models.Flashcard{
				SetID:    set.ID,
				Question: c.Question,
				Answer:   c.Answer,
				Example:  c.Example,
				Position: next + i,
			}
		}
		if err := tx.Create(&cards).Error; err != nil {
			return errors.Wrap(err, "create cards")
		}
	}

	_, err := e.ledger.WithTx(tx).Recompute(ctx, set.ID)
	return err
}

// Create validates and stores a new set with its cards and a zero progress row
// for the owner. Blank cards are dropped like in an edit.
func (e *Editor) Create(ctx context.Context, userID string, sub Submission) (*models.FlashcardSet, error) {
	form := sub.Cards
	if form == nil {
		form = FromChanges(nil, sub.Changes)
	}
	if err := Validate(sub.Title, nil, form); err != nil {
		return nil, err
	}
	plan := Reconcile(nil, form)

	set := models.FlashcardSet{UserID: userID, Title: strings.TrimSpace(sub.Title)}
	if sub.Description != nil {
		set.Description = strings.TrimSpace(*sub.Description)
	}
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&set).Error; err != nil {
			return errors.Wrap(err, "create set")
		}
		if err := e.apply(ctx, tx, &set, nil, sub, plan); err != nil {
			return err
		}
		if err := e.ledger.WithTx(tx).Initialize(ctx, userID, set.ID); err != nil {
			return err
		}
		return tx.Preload("Flashcards", func(db *gorm.DB) *gorm.DB {
			return db.Order(models.CardOrder)
		}).First(&set, "id = ?", set.ID).Error
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("flashcard set created", slog.String("set_id", set.ID), slog.Int("card_count", set.CardCount))
	return &set, nil
}
