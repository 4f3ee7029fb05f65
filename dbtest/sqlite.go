// Package dbtest opens throwaway databases for package tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/andrewpaige1/lingocards-api/config"
	"github.com/andrewpaige1/lingocards-api/models"
)

// NewDB returns a migrated in-memory sqlite database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user with the given email.
func CreateUser(t testing.TB, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{Email: email, Name: email, PasswordHash: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// CreateSet inserts a set owned by userID with n generated cards and a zero progress row.
// The denormalized fields are written directly so the helper does not depend on the ledger.
func CreateSet(t testing.TB, db *gorm.DB, userID string, n int) (*models.FlashcardSet, []models.Flashcard) {
	t.Helper()

	set := &models.FlashcardSet{Title: "set", UserID: userID, CardCount: n}
	if err := db.Create(set).Error; err != nil {
		t.Fatalf("create set: %v", err)
	}
	cards := make([]models.Flashcard, n)
	for i := range cards {
		cards[i] = models.Flashcard{
			SetID:    set.ID,
			Question: fmt.Sprintf("q%d", i),
			Answer:   fmt.Sprintf("a%d", i),
			Position: i,
		}
		if err := db.Create(&cards[i]).Error; err != nil {
			t.Fatalf("create card: %v", err)
		}
	}
	row := &models.FlashcardProgress{UserID: userID, SetID: set.ID}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("create progress: %v", err)
	}
	return set, cards
}
