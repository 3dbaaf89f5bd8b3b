package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Tag struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"column:nome;type:varchar(40);uniqueIndex;not null" json:"nome"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	EcoTags []EcoTag `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE" json:"-"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
