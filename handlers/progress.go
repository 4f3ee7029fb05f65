package handlers

import (
	"net/http"

	"github.com/andrewpaige1/lingocards-api/progress"
	"github.com/andrewpaige1/lingocards-api/utils"
)

// GET /api/sets/{setID}/progress
func (db *DBHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	snap, err := db.Ledger.GetProgress(r.Context(), user.ID, r.PathValue("setID"))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, snap)
}

// PUT /api/sets/{setID}/progress
func (db *DBHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var u progress.Update
	if err := utils.DecodeJSON(r, &u); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	snap, err := db.Ledger.RecordProgress(r.Context(), user.ID, r.PathValue("setID"), u)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, snap)
}

// POST /api/sets/{setID}/study
func (db *DBHandler) FinishStudy(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var res progress.StudyResult
	if err := utils.DecodeJSON(r, &res); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	snap, err := db.Ledger.FinishStudy(r.Context(), user.ID, r.PathValue("setID"), res)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, snap)
}
