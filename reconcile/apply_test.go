package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrewpaige1/lingocards-api/dbtest"
	"github.com/andrewpaige1/lingocards-api/errs"
	"github.com/andrewpaige1/lingocards-api/models"
	"github.com/andrewpaige1/lingocards-api/progress"
)

func newEditor(db *gorm.DB) (*Editor, *progress.Ledger) {
	ledger := progress.NewLedger(db, nil)
	return NewEditor(db, ledger, nil), ledger
}

func cardsOf(t *testing.T, db *gorm.DB, setID string) []models.Flashcard {
	t.Helper()
	var cards []models.Flashcard
	require.NoError(t, db.Where("set_id = ?", setID).Order(models.CardOrder).Find(&cards).Error)
	return cards
}

func TestSubmitRecomputesAfterDeletes(t *testing.T) {
	db := dbtest.NewDB(t)
	user := dbtest.CreateUser(t, db, "editor@example.com")
	set, cards := dbtest.CreateSet(t, db, user.ID, 10)
	editor, ledger := newEditor(db)
	ctx := context.Background()

	_, err := ledger.RecordProgress(ctx, user.ID, set.ID, progress.Absolute(8))
	require.NoError(t, err)

	updated, err := editor.Submit(ctx, user.ID, set.ID, Submission{Title: "set", Cards: formOf(cards[3:])})
	require.NoError(t, err)

	assert.Equal(t, 7, updated.CardCount)
	assert.Equal(t, 100, updated.Progress)
	assert.Len(t, updated.Flashcards, 7)

	snap, err := ledger.GetProgress(ctx, user.ID, set.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, snap.Learned)

	var row models.FlashcardProgress
	require.NoError(t, db.First(&row, "user_id = ? AND set_id = ?", user.ID, set.ID).Error)
	assert.Equal(t, 7, row.Learned)
}

func TestSubmitAppliesMixedEdit(t *testing.T) {
	db := dbtest.NewDB(t)
	user := dbtest.CreateUser(t, db, "editor@example.com")
	set, cards := dbtest.CreateSet(t, db, user.ID, 3)
	editor, _ := newEditor(db)
	desc := "  irregular verbs "

	updated, err := editor.Submit(context.Background(), user.ID, set.ID, Submission{
		Title:       "  Verbs ",
		Description: &desc,
		Cards: []FormCard{
			{ID: cards[0].ID, Question: "edited", Answer: cards[0].Answer},
			{ID: cards[1].ID},
			{ID: cards[2].ID, Question: cards[2].Question, Answer: cards[2].Answer},
			{ID: "temp-1", Question: "ir", Answer: "to go", Example: "voy a casa"},
			{ID: "temp-2"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Verbs", updated.Title)
	assert.Equal(t, "irregular verbs", updated.Description)
	assert.Equal(t, 3, updated.CardCount)

	stored := cardsOf(t, db, set.ID)
	require.Len(t, stored, 3)
	assert.Equal(t, cards[0].ID, stored[0].ID)
	assert.Equal(t, "edited", stored[0].Question)
	assert.Equal(t, cards[2].ID, stored[1].ID)
	assert.Equal(t, "ir", stored[2].Question)
	assert.Equal(t, "voy a casa", stored[2].Example)
	assert.Equal(t, 3, stored[2].Position)
	assert.NotEmpty(t, stored[2].ID)
}

func TestSubmitWithExplicitChanges(t *testing.T) {
	db := dbtest.NewDB(t)
	user := dbtest.CreateUser(t, db, "editor@example.com")
	set, cards := dbtest.CreateSet(t, db, user.ID, 2)
	editor, _ := newEditor(db)

	updated, err := editor.Submit(context.Background(), user.ID, set.ID, Submission{
		Title: "set",
		Changes: Changes{
			NewCards:     []FormCard{{Question: "n", Answer: "m"}},
			DeletedCards: []string{cards[0].ID, "already-gone"},
		},
	})
	require.NoError(t, err)

	require.Len(t, updated.Flashcards, 2)
	assert.Equal(t, cards[1].ID, updated.Flashcards[0].ID)
	assert.Equal(t, "n", updated.Flashcards[1].Question)
	assert.Equal(t, 2, updated.CardCount)
}

func TestSubmitValidationWritesNothing(t *testing.T) {
	db := dbtest.NewDB(t)
	user := dbtest.CreateUser(t, db, "editor@example.com")
	set, cards := dbtest.CreateSet(t, db, user.ID, 2)
	editor, _ := newEditor(db)

	_, err := editor.Submit(context.Background(), user.ID, set.ID, Submission{
		Title: "renamed",
		Cards: []FormCard{
			{ID: cards[0].ID, Question: "", Answer: "still here"},
			{ID: "temp-1", Question: "new", Answer: "card"},
		},
	})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindValidation))
	assert.Contains(t, errs.FieldsOf(err), "cards[0].question")

	var stored models.FlashcardSet
	require.NoError(t, db.First(&stored, "id = ?", set.ID).Error)
	assert.Equal(t, "set", stored.Title)
	assert.Len(t, cardsOf(t, db, set.ID), 2)
}

func TestSubmitForeignSetIsNotFound(t *testing.T) {
	db := dbtest.NewDB(t)
	owner := dbtest.CreateUser(t, db, "owner@example.com")
	other := dbtest.CreateUser(t, db, "other@example.com")
	set, cards := dbtest.CreateSet(t, db, owner.ID, 2)
	editor, _ := newEditor(db)

	_, err := editor.Submit(context.Background(), other.ID, set.ID, Submission{Title: "mine", Cards: formOf(cards)})
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestCreate(t *testing.T) {
	db := dbtest.NewDB(t)
	user := dbtest.CreateUser(t, db, "editor@example.com")
	editor, ledger := newEditor(db)
	ctx := context.Background()

	set, err := editor.Create(ctx, user.ID, Submission{
		Title: "Capitals",
		Cards: []FormCard{
			{ID: "temp-1", Question: "France", Answer: "Paris"},
			{},
			{Question: "Peru", Answer: "Lima"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, set.UserID)
	assert.Equal(t, 2, set.CardCount)
	require.Len(t, set.Flashcards, 2)
	assert.Equal(t, "France", set.Flashcards[0].Question)
	assert.Equal(t, "Peru", set.Flashcards[1].Question)

	snap, err := ledger.GetProgress(ctx, user.ID, set.ID)
	require.NoError(t, err)
	assert.Equal(t, progress.Snapshot{Learned: 0, Total: 2, Percentage: 0, LastReviewed: snap.LastReviewed}, *snap)

	_, err = editor.Create(ctx, user.ID, Submission{Title: "Empty", Cards: []FormCard{{}}})
	assert.True(t, errs.Is(err, errs.KindValidation))
}
