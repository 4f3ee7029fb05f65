package handlers

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/andrewpaige1/lingocards-api/errs"
	"github.com/andrewpaige1/lingocards-api/models"
	"github.com/andrewpaige1/lingocards-api/reconcile"
	"github.com/andrewpaige1/lingocards-api/utils"
)

// GET /api/sets/{setID}/flashcards
func (db *DBHandler) GetFlashcardsForSet(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	set, err := findOwnedSet(db.WithContext(r.Context()), user.ID, r.PathValue("setID"))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	cards := []models.Flashcard{}
	if err := db.WithContext(r.Context()).Where("set_id = ?", set.ID).Order(models.CardOrder).Find(&cards).Error; err != nil {
		utils.WriteError(w, r, errors.Wrap(err, "list cards"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, cards)
}

// POST /api/sets/{setID}/flashcards
func (db *DBHandler) CreateFlashCard(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req reconcile.FormCard
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	var card models.Flashcard
	err := db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		set, err := findOwnedSet(tx, user.ID, r.PathValue("setID"))
		if err != nil {
			return err
		}
		req.ID = ""
		if err := reconcile.Validate(set.Title, nil, []reconcile.FormCard{req}); err != nil {
			return err
		}

		var last models.Flashcard
		next := 0
		err = tx.Where("set_id = ?", set.ID).Order("position desc").Limit(1).Find(&last).Error
		if err != nil {
			return errors.Wrap(err, "load last card")
		}
		if last.ID != "" {
			next = last.Position + 1
		}

		card = models.Flashcard{
			SetID:    set.ID,
			Question: strings.TrimSpace(req.Question),
			Answer:   strings.TrimSpace(req.Answer),
			Example:  strings.TrimSpace(req.Example),
			Position: next,
		}
		if err := tx.Create(&card).Error; err != nil {
			return errors.Wrap(err, "create card")
		}
		_, err = db.Ledger.WithTx(tx).Recompute(r.Context(), set.ID)
		return err
	})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, card)
}

// DELETE /api/sets/{setID}/flashcards/{flashcardID}
func (db *DBHandler) DeleteFlashCardByID(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	err := db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		set, err := findOwnedSet(tx, user.ID, r.PathValue("setID"))
		if err != nil {
			return err
		}
		res := tx.Where("id = ? AND set_id = ?", r.PathValue("flashcardID"), set.ID).Delete(&models.Flashcard{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete card")
		}
		if res.RowsAffected == 0 {
			return errs.NotFound("flashcard not found")
		}
		_, err = db.Ledger.WithTx(tx).Recompute(r.Context(), set.ID)
		return err
	})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
