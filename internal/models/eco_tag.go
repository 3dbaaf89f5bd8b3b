package models

import "time"

// EcoTag links an eco to one of its tags. Rows are written once, when the eco is created.
type EcoTag struct {
	EcoID     string    `gorm:"type:varchar(36);primaryKey" json:"eco_id"`
	TagID     string    `gorm:"type:varchar(36);primaryKey;index" json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}
