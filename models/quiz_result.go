package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuizResult is one finished quiz session.
type QuizResult struct {
	ID               string         `gorm:"primaryKey;size:21" json:"id"`
	UserID           string         `gorm:"not null;index;size:21" json:"userId"`
	User             User           `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	SetID            string         `gorm:"not null;index;size:21" json:"setId"`
	FlashcardSet     FlashcardSet   `gorm:"foreignKey:SetID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	TotalScore       int            `gorm:"not null" json:"totalScore"`
	CorrectCount     int            `gorm:"not null" json:"correctCount"`
	TotalQuestions   int            `gorm:"not null" json:"totalQuestions"`
	Accuracy         int            `gorm:"not null" json:"accuracy"`
	AverageTimeSpent float64        `gorm:"not null" json:"averageTimeSpent"`
	Answers          datatypes.JSON `json:"answers"`
	PlayedAt         time.Time      `gorm:"autoCreateTime" json:"playedAt"`
}

func (q *QuizResult) BeforeCreate(tx *gorm.DB) error {
	return assignID(&q.ID)
}
