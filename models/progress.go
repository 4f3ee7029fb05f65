package models

import (
	"time"

	"gorm.io/gorm"
)

// FlashcardProgress is the learned count of one user for one set.
type FlashcardProgress struct {
	ID           string    `gorm:"primaryKey;size:21" json:"id"`
	UserID       string    `gorm:"not null;size:21;uniqueIndex:idx_progress_user_set" json:"userId"`
	SetID        string    `gorm:"not null;size:21;uniqueIndex:idx_progress_user_set" json:"setId"`
	Learned      int       `gorm:"not null;default:0" json:"learned"`
	LastReviewed time.Time `gorm:"not null" json:"lastReviewed"`

	User         User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	FlashcardSet FlashcardSet `gorm:"foreignKey:SetID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (p *FlashcardProgress) BeforeCreate(tx *gorm.DB) error {
	return assignID(&p.ID)
}
