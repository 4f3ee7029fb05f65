package progress

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/andrewpaige1/lingocards-api/errs"
	"github.com/andrewpaige1/lingocards-api/models"
)

// StudyResult is the outcome of a guided study session. Learned, when set,
// replaces the delta computed from the correct cards.
type StudyResult struct {
	CorrectCardIDs   []string   `json:"correctCardIds"`
	IncorrectCardIDs []string   `json:"incorrectCardIds"`
	Learned          *int       `json:"learned,omitempty"`
	LastReviewed     *time.Time `json:"lastReviewed,omitempty"`
}

// FinishStudy records a study session. Without an absolute count the learned
// count grows by the number of distinct correct cards that still belong to the set.
func (l *Ledger) FinishStudy(ctx context.Context, userID, setID string, res StudyResult) (*Snapshot, error) {
	if res.Learned != nil {
		return l.RecordProgress(ctx, userID, setID, Update{Learned: res.Learned, LastReviewed: res.LastReviewed})
	}

	var snap *Snapshot
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findOwnedSet(tx, userID, setID); err != nil {
			return err
		}
		delta, err := countSetCards(tx, setID, res.CorrectCardIDs)
		if err != nil {
			return err
		}
		l.logger.Debug("study session finished",
			slog.String("set_id", setID), slog.Int("correct", delta), slog.Int("incorrect", len(res.IncorrectCardIDs)))

		snap, err = l.WithTx(tx).RecordProgress(ctx, userID, setID, Update{LearnedDelta: &delta, LastReviewed: res.LastReviewed})
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func countSetCards(db *gorm.DB, setID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := db.Model(&models.Flashcard{}).Where("set_id = ? AND id IN ?", setID, ids).Count(&n).Error
	if err != nil {
		return 0, errs.Internal("count correct cards", err)
	}
	return int(n), nil
}
