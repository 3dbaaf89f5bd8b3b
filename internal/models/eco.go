package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Eco struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	AuthorID  string    `gorm:"column:author_id;type:varchar(36);not null;index" json:"author_id"`
	Thread1   string    `gorm:"column:thread_1;type:varchar(144);not null" json:"thread_1"`
	Thread2   *string   `gorm:"column:thread_2;type:varchar(144)" json:"thread_2"`
	Thread3   *string   `gorm:"column:thread_3;type:varchar(244)" json:"thread_3"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	EcoTags   []EcoTag   `gorm:"foreignKey:EcoID;constraint:OnDelete:CASCADE" json:"-"`
	Sussurros []Sussurro `gorm:"foreignKey:EcoID;constraint:OnDelete:CASCADE" json:"-"`
}

func (e *Eco) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
