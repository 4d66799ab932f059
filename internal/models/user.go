package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
}

// Profile is a user's public directory record. One row per user; readable by
// every authenticated session, writable only by its owner.
type Profile struct {
	ID          uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	FirstName   string         `gorm:"size:100" json:"first_name"`
	LastName    string         `gorm:"size:100" json:"last_name"`
	DOB         string         `gorm:"size:10" json:"dob"`
	City        string         `gorm:"size:100" json:"city"`
	State       string         `gorm:"size:100" json:"state"`
	Education   string         `gorm:"size:255" json:"education"`
	SoftSkills  []string       `gorm:"serializer:json;type:text" json:"soft_skills"`
	HardSkills  []string       `gorm:"serializer:json;type:text" json:"hard_skills"`
	AvatarURL   string         `gorm:"size:255" json:"avatar_url"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// DisplayName is the full name shown on profile cards.
func (p *Profile) DisplayName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
