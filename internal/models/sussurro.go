package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Sussurro struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	EcoID     string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_sussurros_eco_author" json:"eco_id"`
	AuthorID  string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_sussurros_eco_author" json:"author_id"`
	Content   string    `gorm:"column:conteudo;type:varchar(144);not null" json:"conteudo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Sussurro) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
