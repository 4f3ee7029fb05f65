package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Course groups users; membership carries the role.
type Course struct {
	ID          string    `gorm:"primaryKey;size:21" json:"id"`
	Title       string    `gorm:"not null;size:100" json:"title"`
	Description string    `gorm:"size:1000" json:"description,omitempty"`
	OwnerID     string    `gorm:"not null;index;size:21" json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	return assignID(&c.ID)
}

type Membership struct {
	ID       string    `gorm:"primaryKey;size:21" json:"id"`
	UserID   string    `gorm:"not null;size:21;uniqueIndex:idx_membership_user_course" json:"userId"`
	CourseID string    `gorm:"not null;size:21;uniqueIndex:idx_membership_user_course" json:"courseId"`
	Role     Role      `gorm:"not null;size:16;default:member" json:"role"`
	Course   Course    `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE;" json:"course"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joinedAt"`
}

func (m *Membership) BeforeCreate(tx *gorm.DB) error {
	return assignID(&m.ID)
}
