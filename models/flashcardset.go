package models

import (
	"time"

	"gorm.io/gorm"
)

// FlashcardSet represents a collection of flashcards.
// CardCount and Progress are denormalized; only progress.Recompute writes them.
type FlashcardSet struct {
	ID          string `gorm:"primaryKey;size:21" json:"id"`
	Title       string `gorm:"not null;size:100" json:"title"`
	Description string `gorm:"size:1000" json:"description,omitempty"`
	CardCount   int    `gorm:"not null;default:0" json:"cardCount"`
	Progress    int    `gorm:"not null;default:0" json:"progress"`
	UserID      string `gorm:"not null;index;size:21" json:"userId"`
	User        User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`

	Flashcards []Flashcard `gorm:"foreignKey:SetID;constraint:OnDelete:CASCADE;" json:"flashcards,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *FlashcardSet) BeforeCreate(tx *gorm.DB) error {
	return assignID(&s.ID)
}
