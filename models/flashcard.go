package models

import (
	"time"

	"gorm.io/gorm"
)

// Flashcard represents an individual flashcard
type Flashcard struct {
	ID       string `gorm:"primaryKey;size:21" json:"id"`
	Question string `gorm:"not null;size:500" json:"question"`
	Answer   string `gorm:"not null;size:1000" json:"answer"`
	Example  string `gorm:"size:1000" json:"example,omitempty"`
	// Position preserves creation order within the set.
	Position int `gorm:"not null;default:0" json:"position"`

	SetID        string       `gorm:"not null;index;size:21" json:"setId"`
	FlashcardSet FlashcardSet `gorm:"foreignKey:SetID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (f *Flashcard) BeforeCreate(tx *gorm.DB) error {
	return assignID(&f.ID)
}

// CardOrder is the creation order used for every card listing.
const CardOrder = "position asc, created_at asc"
