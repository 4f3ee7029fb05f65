package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/andrewpaige1/lingocards-api/errs"
	"github.com/andrewpaige1/lingocards-api/models"
	"github.com/andrewpaige1/lingocards-api/progress"
	"github.com/andrewpaige1/lingocards-api/quiz"
	"github.com/andrewpaige1/lingocards-api/utils"
)

type quizResponse struct {
	SetID              string          `json:"setId"`
	SecondsPerQuestion int             `json:"secondsPerQuestion"`
	Questions          []quiz.Question `json:"questions"`
}

// loadQuizCards returns the cards of an owned set, rejecting sets too small to quiz.
func loadQuizCards(tx *gorm.DB, userID, setID string) ([]quiz.Card, error) {
	set, err := findOwnedSet(tx, userID, setID)
	if err != nil {
		return nil, err
	}
	var cards []models.Flashcard
	if err := tx.Where("set_id = ?", set.ID).Order(models.CardOrder).Find(&cards).Error; err != nil {
		return nil, errors.Wrap(err, "load cards")
	}
	if len(cards) < quiz.MinCards {
		return nil, errs.Validation("set is too small for a quiz", map[string]string{
			"cards": "A quiz needs at least 2 cards",
		})
	}
	return quiz.FromFlashcards(cards), nil
}

// GET /api/sets/{setID}/quiz
func (db *DBHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	setID := r.PathValue("setID")

	cards, err := loadQuizCards(db.WithContext(r.Context()), user.ID, setID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, quizResponse{
		SetID:              setID,
		SecondsPerQuestion: db.Env.QuizSeconds,
		Questions:          quiz.NewGenerator(nil).Generate(cards),
	})
}

type quizResultRequest struct {
	Answers      []quiz.Submitted `json:"answers"`
	Learned      *int             `json:"learned,omitempty"`
	LearnedDelta *int             `json:"learnedDelta,omitempty"`
	LastReviewed *time.Time       `json:"lastReviewed,omitempty"`
}

type quizResultResponse struct {
	Result   *models.QuizResult `json:"result"`
	Progress *progress.Snapshot `json:"progress,omitempty"`
}

// POST /api/sets/{setID}/quiz/results
// Answers are scored here against the stored cards. A learned count sent with
// the answers is recorded in the same transaction.
func (db *DBHandler) CreateQuizResult(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	setID := r.PathValue("setID")

	var req quizResultRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	update := progress.Update{Learned: req.Learned, LearnedDelta: req.LearnedDelta, LastReviewed: req.LastReviewed}
	recordProgress := req.Learned != nil || req.LearnedDelta != nil
	if recordProgress {
		if err := update.Validate(); err != nil {
			utils.WriteError(w, r, err)
			return
		}
	}

	var resp quizResultResponse
	err := db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		cards, err := loadQuizCards(tx, user.ID, setID)
		if err != nil {
			return err
		}
		records, err := quiz.Grade(cards, req.Answers, db.Env.QuizSeconds)
		if err != nil {
			return err
		}
		answers, err := json.Marshal(records)
		if err != nil {
			return errors.Wrap(err, "encode answers")
		}

		summary := quiz.Summarize(records)
		result := models.QuizResult{
			UserID:           user.ID,
			SetID:            setID,
			TotalScore:       summary.TotalScore,
			CorrectCount:     summary.CorrectCount,
			TotalQuestions:   summary.TotalQuestions,
			Accuracy:         summary.Accuracy,
			AverageTimeSpent: summary.AverageTimeSpent,
			Answers:          datatypes.JSON(answers),
		}
		if err := tx.Create(&result).Error; err != nil {
			return errors.Wrap(err, "create quiz result")
		}
		resp.Result = &result

		if recordProgress {
			resp.Progress, err = db.Ledger.WithTx(tx).RecordProgress(r.Context(), user.ID, setID, update)
		}
		return err
	})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	db.Log.Info("CreateQuizResult: stored result",
		slog.String("set_id", setID),
		slog.Int("total_score", resp.Result.TotalScore),
		slog.Int("accuracy", resp.Result.Accuracy))
	utils.WriteJSON(w, http.StatusCreated, resp)
}

// GET /api/sets/{setID}/quiz/results
func (db *DBHandler) GetQuizResults(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	set, err := findOwnedSet(db.WithContext(r.Context()), user.ID, r.PathValue("setID"))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	results := []models.QuizResult{}
	err = db.WithContext(r.Context()).
		Where("user_id = ? AND set_id = ?", user.ID, set.ID).
		Order("total_score desc").Order("played_at desc").
		Find(&results).Error
	if err != nil {
		utils.WriteError(w, r, errors.Wrap(err, "list quiz results"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, results)
}
