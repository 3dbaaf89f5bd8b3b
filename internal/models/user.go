package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "O"
)

// Valid reports whether g is one of the supported gender categories.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"-"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Codename     string    `gorm:"column:codinome;type:varchar(20);uniqueIndex;not null" json:"codinome"`
	Gender       Gender    `gorm:"column:genero;type:varchar(1);not null" json:"genero"`
	AvatarURL    string    `gorm:"type:varchar(2048);not null" json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Ecos      []Eco      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Sussurros []Sussurro `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
