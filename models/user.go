package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user in the system
type User struct {
	ID            string         `gorm:"primaryKey;size:21" json:"id"`
	Email         string         `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Name          string         `gorm:"not null;size:100" json:"name"`
	PasswordHash  string         `gorm:"not null" json:"-"`
	FlashcardSets []FlashcardSet `gorm:"foreignKey:UserID" json:"-"`
	Memberships   []Membership   `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	return assignID(&u.ID)
}
