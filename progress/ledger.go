// Package progress keeps the per-user learned count of a flashcard set and the
// denormalized CardCount/Progress columns of the set in step with it.
package progress

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrewpaige1/lingocards-api/errs"
	"github.com/andrewpaige1/lingocards-api/models"
)

// Snapshot is the learned state of one (user, set) pair.
type Snapshot struct {
	Learned      int       `json:"learned"`
	Total        int       `json:"total"`
	Percentage   int       `json:"percentage"`
	LastReviewed time.Time `json:"lastReviewed"`
}

// Update is a progress write. Exactly one of Learned and LearnedDelta must be set.
type Update struct {
	Learned      *int       `json:"learned,omitempty"`
	LearnedDelta *int       `json:"learnedDelta,omitempty"`
	LastReviewed *time.Time `json:"lastReviewed,omitempty"`
}

// Absolute is a convenience constructor for an absolute write.
func Absolute(learned int) Update {
	return Update{Learned: &learned}
}

// Delta is a convenience constructor for an additive write.
func Delta(delta int) Update {
	return Update{LearnedDelta: &delta}
}

func (u Update) Validate() error {
	switch {
	case u.Learned == nil && u.LearnedDelta == nil:
		return errs.Validation("learned or learnedDelta is required", map[string]string{
			"learned": "learned is required",
		})
	case u.Learned != nil && u.LearnedDelta != nil:
		return errs.Validation("learned and learnedDelta are mutually exclusive", map[string]string{
			"learnedDelta": "send either learned or learnedDelta",
		})
	case u.Learned != nil && *u.Learned < 0:
		return errs.Validation("learned must be a non-negative integer", map[string]string{
			"learned": "must be a non-negative integer",
		})
	case u.LearnedDelta != nil && *u.LearnedDelta < 0:
		return errs.Validation("learnedDelta must be a non-negative integer", map[string]string{
			"learnedDelta": "must be a non-negative integer",
		})
	}
	return nil
}

// Percentage is round(learned/total*100), or 0 for an empty set.
func Percentage(learned, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(learned) / float64(total) * 100))
}

// Clamp bounds learned to [0, total].
func Clamp(learned, total int) int {
	if total < 0 {
		total = 0
	}
	return max(0, min(learned, total))
}

// Ledger records progress. All writes run in one transaction per call; when the
// ledger is bound to an outer transaction with WithTx they join it.
type Ledger struct {
	db     *gorm.DB
	now    func() time.Time
	logger *slog.Logger
}

func NewLedger(db *gorm.DB, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{db: db, now: time.Now, logger: logger}
}

// WithClock returns a copy of l that reads the current time from now.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	c := *l
	c.now = now
	return &c
}

// WithTx returns a copy of l that issues its queries on tx.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	c := *l
	c.db = tx
	return &c
}

// RecordProgress stores a new learned count for userID on setID. Counts above the
// number of cards are capped; the set must belong to userID.
func (l *Ledger) RecordProgress(ctx context.Context, userID, setID string, u Update) (*Snapshot, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	reviewed := l.now().UTC()
	if u.LastReviewed != nil {
		reviewed = u.LastReviewed.UTC()
	}

	var snap *Snapshot
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		set, err := findOwnedSet(tx, userID, setID)
		if err != nil {
			return err
		}
		total, err := countCards(tx, setID)
		if err != nil {
			return err
		}

		var learned int
		if u.Learned != nil {
			learned = *u.Learned
		} else {
			prior, err := findProgress(tx, userID, setID)
			if err != nil && !errs.Is(err, errs.KindNotFound) {
				return err
			}
			if prior != nil {
				learned = prior.Learned
			}
			// compare before adding so a huge delta cannot wrap around
			if *u.LearnedDelta >= total-learned {
				learned = total
			} else {
				learned += *u.LearnedDelta
			}
		}
		if clamped := Clamp(learned, total); clamped != learned {
			l.logger.Debug("learned count capped",
				slog.String("set_id", setID), slog.Int("requested", learned), slog.Int("total", total))
			learned = clamped
		}

		row := models.FlashcardProgress{UserID: userID, SetID: setID, Learned: learned, LastReviewed: reviewed}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "set_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"learned", "last_reviewed"}),
		}).Create(&row).Error; err != nil {
			return errs.Internal("upsert progress", err)
		}

		snap, err = recompute(tx, set)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// GetProgress returns the stored progress of userID on setID. A missing row is
// NotFound even when the set exists.
func (l *Ledger) GetProgress(ctx context.Context, userID, setID string) (*Snapshot, error) {
	db := l.db.WithContext(ctx)
	if _, err := findOwnedSet(db, userID, setID); err != nil {
		return nil, err
	}
	row, err := findProgress(db, userID, setID)
	if err != nil {
		return nil, err
	}
	total, err := countCards(db, setID)
	if err != nil {
		return nil, err
	}
	learned := Clamp(row.Learned, total)
	return &Snapshot{
		Learned:      learned,
		Total:        total,
		Percentage:   Percentage(learned, total),
		LastReviewed: row.LastReviewed,
	}, nil
}

// Initialize creates the zero progress row for a newly created set.
func (l *Ledger) Initialize(ctx context.Context, userID, setID string) error {
	row := models.FlashcardProgress{UserID: userID, SetID: setID, LastReviewed: l.now().UTC()}
	if err := l.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return errs.Internal("create progress row", err)
	}
	return nil
}

// Recompute refreshes CardCount and Progress of setID from the live card rows
// and the owner's learned count, capping the learned count if cards were removed.
// It must run at the end of every transaction that changes cards or progress.
func (l *Ledger) Recompute(ctx context.Context, setID string) (*Snapshot, error) {
	db := l.db.WithContext(ctx)
	var set models.FlashcardSet
	if err := db.Where("id = ?", setID).First(&set).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("flashcard set not found")
		}
		return nil, errs.Internal("load set", err)
	}
	return recompute(db, &set)
}

func recompute(tx *gorm.DB, set *models.FlashcardSet) (*Snapshot, error) {
	total, err := countCards(tx, set.ID)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Total: total}
	row, err := findProgress(tx, set.UserID, set.ID)
	switch {
	case err == nil:
		if row.Learned > total {
			if err := tx.Model(row).Update("learned", total).Error; err != nil {
				return nil, errs.Internal("cap learned count", err)
			}
			row.Learned = total
		}
		snap.Learned = row.Learned
		snap.LastReviewed = row.LastReviewed
	case !errs.Is(err, errs.KindNotFound):
		return nil, err
	}
	snap.Percentage = Percentage(snap.Learned, total)

	if err := tx.Model(&models.FlashcardSet{}).Where("id = ?", set.ID).Updates(map[string]any{
		"card_count": total,
		"progress":   snap.Percentage,
	}).Error; err != nil {
		return nil, errs.Internal("update set progress", err)
	}
	set.CardCount = total
	set.Progress = snap.Percentage
	return snap, nil
}

func findOwnedSet(db *gorm.DB, userID, setID string) (*models.FlashcardSet, error) {
	var set models.FlashcardSet
	if err := db.Where("id = ? AND user_id = ?", setID, userID).First(&set).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("flashcard set not found")
		}
		return nil, errs.Internal("load set", err)
	}
	return &set, nil
}

func findProgress(db *gorm.DB, userID, setID string) (*models.FlashcardProgress, error) {
	var row models.FlashcardProgress
	if err := db.Where("user_id = ? AND set_id = ?", userID, setID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("progress not found")
		}
		return nil, errs.Internal("load progress", err)
	}
	return &row, nil
}

func countCards(db *gorm.DB, setID string) (int, error) {
	var n int64
	if err := db.Model(&models.Flashcard{}).Where("set_id = ?", setID).Count(&n).Error; err != nil {
		return 0, errs.Internal("count cards", err)
	}
	return int(n), nil
}
