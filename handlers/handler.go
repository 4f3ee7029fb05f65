package handlers

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/andrewpaige1/lingocards-api/config"
	"github.com/andrewpaige1/lingocards-api/errs"
	"github.com/andrewpaige1/lingocards-api/middleware"
	"github.com/andrewpaige1/lingocards-api/models"
	"github.com/andrewpaige1/lingocards-api/progress"
	"github.com/andrewpaige1/lingocards-api/reconcile"
	"github.com/andrewpaige1/lingocards-api/utils"
)

type DBHandler struct {
	*gorm.DB
	Env    *config.Config
	Ledger *progress.Ledger
	Editor *reconcile.Editor
	Log    *slog.Logger
}

func NewDBHandler(cfg *config.Config, db *gorm.DB, logger *slog.Logger) *DBHandler {
	if logger == nil {
		logger = slog.Default()
	}
	ledger := progress.NewLedger(db, logger)
	return &DBHandler{
		DB:     db,
		Env:    cfg,
		Ledger: ledger,
		Editor: reconcile.NewEditor(db, ledger, logger),
		Log:    logger,
	}
}

// Routes registers every API route on mux.
func (db *DBHandler) Routes(mux *http.ServeMux) {
	authed := middleware.RequireUser(db.DB)
	limiter := middleware.NewRateLimiter(rate.Limit(1), 5)

	// Auth
	mux.HandleFunc("POST /api/auth/register", limiter.Wrap(db.Register))
	mux.HandleFunc("POST /api/auth/login", limiter.Wrap(db.Login))
	mux.HandleFunc("GET /api/me", authed(db.Me))

	// Set
	mux.HandleFunc("GET /api/sets", authed(db.GetSetsForUser))
	mux.HandleFunc("POST /api/sets", authed(db.CreateFlashCardSet))
	mux.HandleFunc("GET /api/sets/{setID}", authed(db.GetSetByID))
	mux.HandleFunc("PUT /api/sets/{setID}", authed(db.UpdateSetByID))
	mux.HandleFunc("DELETE /api/sets/{setID}", authed(db.DeleteSetByID))

	// Flashcard
	mux.HandleFunc("GET /api/sets/{setID}/flashcards", authed(db.GetFlashcardsForSet))
	mux.HandleFunc("POST /api/sets/{setID}/flashcards", authed(db.CreateFlashCard))
	mux.HandleFunc("DELETE /api/sets/{setID}/flashcards/{flashcardID}", authed(db.DeleteFlashCardByID))

	// Progress
	mux.HandleFunc("GET /api/sets/{setID}/progress", authed(db.GetProgress))
	mux.HandleFunc("PUT /api/sets/{setID}/progress", authed(db.UpdateProgress))
	mux.HandleFunc("POST /api/sets/{setID}/study", authed(db.FinishStudy))

	// Quiz
	mux.HandleFunc("GET /api/sets/{setID}/quiz", authed(db.GetQuiz))
	mux.HandleFunc("POST /api/sets/{setID}/quiz/results", authed(db.CreateQuizResult))
	mux.HandleFunc("GET /api/sets/{setID}/quiz/results", authed(db.GetQuizResults))

	// Course
	mux.HandleFunc("GET /api/courses", authed(db.GetCoursesForUser))
	mux.HandleFunc("POST /api/courses", authed(db.CreateCourse))
	mux.HandleFunc("POST /api/courses/{courseID}/join", authed(db.JoinCourse))
}

func currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := utils.CurrentUser(r)
	if !ok {
		utils.WriteError(w, r, errs.Unauthorized("authentication required"))
	}
	return user, ok
}
