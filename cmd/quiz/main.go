// Command quiz runs a timed multiple-choice quiz on a flashcard set in the
// terminal and records the correct answers as learned progress.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/andrewpaige1/lingocards-api/config"
	"github.com/andrewpaige1/lingocards-api/errs"
	"github.com/andrewpaige1/lingocards-api/models"
	"github.com/andrewpaige1/lingocards-api/progress"
	"github.com/andrewpaige1/lingocards-api/quiz"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		email   string
		setID   string
		seconds int
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "quiz --email <email> --set <set id>",
		Short: "Take a timed quiz on one of your flashcard sets",
		Long: "Answer with the option number or the answer text. " +
			"Type p to pause, r to resume and q to quit.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if seconds > 0 {
				cfg.QuizSeconds = seconds
			}
			logger := config.NewLogger(cfg, cmd.ErrOrStderr())

			db, err := config.Connect(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			user, cards, err := loadQuiz(ctx, db, email, setID)
			if err != nil {
				return err
			}

			session := quiz.NewSession(quiz.NewGenerator(nil), cards, cfg.QuizBudget())
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()

			summary, err := play(ctx, session, cmd.InOrStdin(), cmd.OutOrStdout(), ticker.C, nil)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary)

			if dryRun || summary.CorrectCount == 0 {
				return nil
			}
			snap, err := progress.NewLedger(db, logger).RecordProgress(ctx, user.ID, setID, progress.Delta(summary.CorrectCount))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Progress: %d/%d learned (%d%%)\n", snap.Learned, snap.Total, snap.Percentage)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email of the set owner")
	cmd.Flags().StringVar(&setID, "set", "", "id of the flashcard set")
	cmd.Flags().IntVar(&seconds, "seconds", 0, "seconds per question (defaults to QUIZ_SECONDS)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "do not record progress")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("set")
	return cmd
}

// loadQuiz returns the user and the cards of a set they own.
func loadQuiz(ctx context.Context, db *gorm.DB, email, setID string) (*models.User, []quiz.Card, error) {
	db = db.WithContext(ctx)

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errs.NotFound("user not found")
		}
		return nil, nil, errors.Wrap(err, "load user")
	}

	var set models.FlashcardSet
	if err := db.Where("id = ? AND user_id = ?", setID, user.ID).First(&set).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errs.NotFound("flashcard set not found")
		}
		return nil, nil, errors.Wrap(err, "load set")
	}

	var cards []models.Flashcard
	if err := db.Where("set_id = ?", set.ID).Order(models.CardOrder).Find(&cards).Error; err != nil {
		return nil, nil, errors.Wrap(err, "load cards")
	}
	if len(cards) < quiz.MinCards {
		return nil, nil, errs.Validation("set is too small for a quiz", map[string]string{
			"cards": fmt.Sprintf("A quiz needs at least %d cards", quiz.MinCards),
		})
	}
	slog.Debug("quiz loaded", slog.String("set_id", set.ID), slog.Int("cards", len(cards)))
	return &user, quiz.FromFlashcards(cards), nil
}
