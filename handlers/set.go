package handlers

import (
	"log/slog"
	"net/http"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/andrewpaige1/lingocards-api/errs"
	"github.com/andrewpaige1/lingocards-api/models"
	"github.com/andrewpaige1/lingocards-api/reconcile"
	"github.com/andrewpaige1/lingocards-api/utils"
)

// findOwnedSet loads setID if it belongs to userID. Sets of other users are
// reported as missing.
func findOwnedSet(tx *gorm.DB, userID, setID string) (*models.FlashcardSet, error) {
	var set models.FlashcardSet
	err := tx.Where("id = ? AND user_id = ?", setID, userID).First(&set).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("flashcard set not found")
		}
		return nil, errors.Wrap(err, "load set")
	}
	return &set, nil
}

// GET /api/sets
func (db *DBHandler) GetSetsForUser(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	sets := []models.FlashcardSet{}
	if err := db.WithContext(r.Context()).Where("user_id = ?", user.ID).Order("created_at desc").Find(&sets).Error; err != nil {
		utils.WriteError(w, r, errors.Wrap(err, "list sets"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, sets)
}

// POST /api/sets
func (db *DBHandler) CreateFlashCardSet(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var sub reconcile.Submission
	if err := utils.DecodeJSON(r, &sub); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	set, err := db.Editor.Create(r.Context(), user.ID, sub)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, set)
}

// GET /api/sets/{setID}
func (db *DBHandler) GetSetByID(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var set models.FlashcardSet
	err := db.WithContext(r.Context()).
		Preload("Flashcards", func(tx *gorm.DB) *gorm.DB { return tx.Order(models.CardOrder) }).
		Where("id = ? AND user_id = ?", r.PathValue("setID"), user.ID).
		First(&set).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, r, errs.NotFound("flashcard set not found"))
			return
		}
		utils.WriteError(w, r, errors.Wrap(err, "load set"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, set)
}

// PUT /api/sets/{setID}
// Accepts either the full card list of the edit form or explicit
// newCards/updatedCards/deletedCards.
func (db *DBHandler) UpdateSetByID(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var sub reconcile.Submission
	if err := utils.DecodeJSON(r, &sub); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	set, err := db.Editor.Submit(r.Context(), user.ID, r.PathValue("setID"), sub)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, set)
}

// DELETE /api/sets/{setID}
func (db *DBHandler) DeleteSetByID(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	setID := r.PathValue("setID")

	err := db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		set, err := findOwnedSet(tx, user.ID, setID)
		if err != nil {
			return err
		}
		for _, m := range []any{&models.FlashcardProgress{}, &models.QuizResult{}, &models.Flashcard{}} {
			if err := tx.Where("set_id = ?", setID).Delete(m).Error; err != nil {
				return errors.Wrap(err, "delete set rows")
			}
		}
		return errors.Wrap(tx.Delete(set).Error, "delete set")
	})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	db.Log.Info("DeleteSetByID: deleted set", slog.String("set_id", setID), slog.String("user_id", user.ID))
	w.WriteHeader(http.StatusNoContent)
}
