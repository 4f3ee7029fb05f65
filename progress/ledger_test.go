package progress

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrewpaige1/lingocards-api/dbtest"
	"github.com/andrewpaige1/lingocards-api/errs"
	"github.com/andrewpaige1/lingocards-api/models"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newLedger(db *gorm.DB) *Ledger {
	return NewLedger(db, nil).WithClock(func() time.Time { return fixedNow })
}

func loadSet(t *testing.T, db *gorm.DB, id string) models.FlashcardSet {
	t.Helper()
	var set models.FlashcardSet
	require.NoError(t, db.First(&set, "id = ?", id).Error)
	return set
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		learned, total, want int
	}{
		{0, 0, 0},
		{5, 0, 0},
		{5, 10, 50},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{7, 7, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percentage(tt.learned, tt.total), "%d/%d", tt.learned, tt.total)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 10, Clamp(12, 10))
	assert.Equal(t, 0, Clamp(-1, 10))
	assert.Equal(t, 0, Clamp(3, 0))
	assert.Equal(t, 4, Clamp(4, 10))
}

func TestRecordProgressAfterStudy(t *testing.T) {
	db := dbtest.NewDB(t)
	user := dbtest.CreateUser(t, db, "learner@example.com")
	set, _ := dbtest.CreateSet(t, db, user.ID, 10)
	ledger := newLedger(db)
	ctx := context.Background()

	_, err := ledger.RecordProgress(ctx, user.ID, set.ID, Absolute(2))
	require.NoError(t, err)

	// three more correct answers in the session
	snap, err := ledger.RecordProgress(ctx, user.ID, set.ID, Absolute(2+3))
	require.NoError(t, err)

	assert.Equal(t, 5, snap.Learned)
	assert.Equal(t, 10, snap.Total)
	assert.Equal(t, 50, snap.Percentage)
	assert.True(t, fixedNow.Equal(snap.LastReviewed))

	stored := loadSet(t, db, set.ID)
	assert.Equal(t, 50, stored.Progress)
	assert.Equal(t, 10, stored.CardCount)
}

func TestRecordProgressCapsAboveTotal(t *testing.T) {
	db := dbtest.NewDB(t)
	user := dbtest.CreateUser(t, db, "learner@example.com")
	set, _ := dbtest.CreateSet(t, db, user.ID, 4)
	ledger := newLedger(db)

	snap, err := ledger.RecordProgress(context.Background(), user.ID, set.ID, Absolute(9))
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Learned)
	assert.Equal(t, 100, snap.Percentage)

	var row models.FlashcardProgress
	require.NoError(t, db.First(&row, "user_id = ? AND set_id = ?", user.ID, set.ID).Error)
	assert.Equal(t, 4, row.Learned)
}

func TestRecordProgressRejectsInvalidUpdates(t *testing.T) {
	db := dbtest.NewDB(t)
	user := dbtest.CreateUser(t, db, "learner@example.com")
	set, _ := dbtest.CreateSet(t, db, user.ID, 4)
	ledger := newLedger(db)
	two := 2

	tests := []struct {
		name   string
		update Update
	}{
		{"negative absolute", Absolute(-1)},
		{"negative delta", Delta(-2)},
		{"missing value", Update{}},
		{"both values", Update{Learned: &two, LearnedDelta: &two}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.RecordProgress(context.Background(), user.ID, set.ID, tt.update)
			assert.True(t, errs.Is(err, errs.KindValidation), "got %v", err)
		})
	}

	var row models.FlashcardProgress
	require.NoError(t, db.First(&row, "user_id = ? AND set_id = ?", user.ID, set.ID).Error)
	assert.Equal(t, 0, row.Learned, "rejected writes must not touch the row")
}

func TestRecordProgressIsIdempotent(t *testing.T) {
	db := dbtest.NewDB(t)
	user := dbtest.CreateUser(t, db, "learner@example.com")
	set, _ := dbtest.CreateSet(t, db, user.ID, 8)
	ledger := newLedger(db)
	ctx := context.Background()
	reviewed := fixedNow.Add(-time.Hour)
	update := Update{Learned: ptr(5), LastReviewed: &reviewed}

	first, err := ledger.RecordProgress(ctx, user.ID, set.ID, update)
	require.NoError(t, err)
	second, err := ledger.RecordProgress(ctx, user.ID, set.ID, update)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	var rows []models.FlashcardProgress
	require.NoError(t, db.Where("set_id = ?", set.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, 5, rows[0].Learned)
	assert.True(t, reviewed.Equal(rows[0].LastReviewed))
	assert.Equal(t, 63, loadSet(t, db, set.ID).Progress)
}

func TestRecordProgressDeltaAddsToPrior(t *testing.T) {
	db := dbtest.NewDB(t)
	user := dbtest.CreateUser(t, db, "learner@example.com")
	set, _ := dbtest.CreateSet(t, db, user.ID, 10)
	ledger := newLedger(db)
	ctx := context.Background()

	_, err := ledger.RecordProgress(ctx, user.ID, set.ID, Absolute(4))
	require.NoError(t, err)
	snap, err := ledger.RecordProgress(ctx, user.ID, set.ID, Delta(3))
	require.NoError(t, err)
	assert.Equal(t, 7, snap.Learned)

	snap, err = ledger.RecordProgress(ctx, user.ID, set.ID, Delta(30))
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Learned)
	assert.Equal(t, 100, snap.Percentage)

	_, err = ledger.RecordProgress(ctx, user.ID, set.ID, Absolute(5))
	require.NoError(t, err)
	snap, err = ledger.RecordProgress(ctx, user.ID, set.ID, Delta(math.MaxInt))
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Learned, "a huge delta caps at the card count")
	assert.Equal(t, 100, snap.Percentage)
}

func TestRecordProgressCreatesMissingRow(t *testing.T) {
	db := dbtest.NewDB(t)
	user := dbtest.CreateUser(t, db, "learner@example.com")
	set, _ := dbtest.CreateSet(t, db, user.ID, 5)
	require.NoError(t, db.Where("set_id = ?", set.ID).Delete(&models.FlashcardProgress{}).Error)
	ledger := newLedger(db)

	snap, err := ledger.RecordProgress(context.Background(), user.ID, set.ID, Delta(2))
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Learned)
	assert.Equal(t, 40, snap.Percentage)
}

func TestRecordProgressForeignSetIsNotFound(t *testing.T) {
	db := dbtest.NewDB(t)
	owner := dbtest.CreateUser(t, db, "owner@example.com")
	other := dbtest.CreateUser(t, db, "other@example.com")
	set, _ := dbtest.CreateSet(t, db, owner.ID, 3)
	ledger := newLedger(db)
	ctx := context.Background()

	_, err := ledger.RecordProgress(ctx, other.ID, set.ID, Absolute(1))
	assert.True(t, errs.Is(err, errs.KindNotFound))

	_, err = ledger.RecordProgress(ctx, owner.ID, "missing", Absolute(1))
	assert.True(t, errs.Is(err, errs.KindNotFound))

	_, err = ledger.GetProgress(ctx, other.ID, set.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestGetProgress(t *testing.T) {
	db := dbtest.NewDB(t)
	user := dbtest.CreateUser(t, db, "learner@example.com")
	set, _ := dbtest.CreateSet(t, db, user.ID, 4)
	ledger := newLedger(db)
	ctx := context.Background()

	snap, err := ledger.GetProgress(ctx, user.ID, set.ID)
	require.NoError(t, err)
	assert.Equal(t, Snapshot{Learned: 0, Total: 4, Percentage: 0, LastReviewed: snap.LastReviewed}, *snap)

	_, err = ledger.RecordProgress(ctx, user.ID, set.ID, Absolute(3))
	require.NoError(t, err)
	snap, err = ledger.GetProgress(ctx, user.ID, set.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Learned)
	assert.Equal(t, 75, snap.Percentage)

	require.NoError(t, db.Where("set_id = ?", set.ID).Delete(&models.FlashcardProgress{}).Error)
	_, err = ledger.GetProgress(ctx, user.ID, set.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound), "no row is distinct from zero learned")
}

func TestRecomputeCapsLearnedWhenCardsShrink(t *testing.T) {
	db := dbtest.NewDB(t)
	user := dbtest.CreateUser(t, db, "learner@example.com")
	set, cards := dbtest.CreateSet(t, db, user.ID, 10)
	ledger := newLedger(db)
	ctx := context.Background()

	_, err := ledger.RecordProgress(ctx, user.ID, set.ID, Absolute(8))
	require.NoError(t, err)

	require.NoError(t, db.Delete(&models.Flashcard{}, "id IN ?", []string{cards[0].ID, cards[1].ID, cards[2].ID}).Error)
	snap, err := ledger.Recompute(ctx, set.ID)
	require.NoError(t, err)

	assert.Equal(t, 7, snap.Learned)
	assert.Equal(t, 7, snap.Total)
	assert.Equal(t, 100, snap.Percentage)

	stored := loadSet(t, db, set.ID)
	assert.Equal(t, 7, stored.CardCount)
	assert.Equal(t, 100, stored.Progress)
}

func TestRecomputeEmptySet(t *testing.T) {
	db := dbtest.NewDB(t)
	user := dbtest.CreateUser(t, db, "learner@example.com")
	set, _ := dbtest.CreateSet(t, db, user.ID, 2)
	ledger := newLedger(db)
	ctx := context.Background()

	_, err := ledger.RecordProgress(ctx, user.ID, set.ID, Absolute(2))
	require.NoError(t, err)
	require.NoError(t, db.Delete(&models.Flashcard{}, "set_id = ?", set.ID).Error)

	snap, err := ledger.Recompute(ctx, set.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Percentage)
	assert.Equal(t, 0, loadSet(t, db, set.ID).Progress)

	_, err = ledger.Recompute(ctx, "missing")
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestRecordProgressJoinsOuterTransaction(t *testing.T) {
	db := dbtest.NewDB(t)
	user := dbtest.CreateUser(t, db, "learner@example.com")
	set, _ := dbtest.CreateSet(t, db, user.ID, 4)
	ledger := newLedger(db)

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := ledger.WithTx(tx).RecordProgress(context.Background(), user.ID, set.ID, Absolute(4)); err != nil {
			return err
		}
		return errs.Validation("abort", nil)
	})
	require.Error(t, err)

	var row models.FlashcardProgress
	require.NoError(t, db.First(&row, "user_id = ? AND set_id = ?", user.ID, set.ID).Error)
	assert.Equal(t, 0, row.Learned)
	assert.Equal(t, 0, loadSet(t, db, set.ID).Progress)
}

func TestStorageFailuresAreInternal(t *testing.T) {
	db := dbtest.NewDB(t)
	user := dbtest.CreateUser(t, db, "learner@example.com")
	set, _ := dbtest.CreateSet(t, db, user.ID, 3)
	ledger := newLedger(db)
	require.NoError(t, db.Migrator().DropTable(&models.FlashcardProgress{}))

	_, err := ledger.GetProgress(context.Background(), user.ID, set.ID)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindInternal, e.Kind)
	assert.Equal(t, "load progress", e.Message)
	assert.NotNil(t, e.Cause)
}

func ptr(v int) *int { return &v }
