package database

import (
	"gorm.io/gorm"

	"github.com/ecohistorias/eco-api/internal/utils"
)

// Paginate limits a query to one page. A non-positive limit leaves the query
// unbounded.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params.Limit <= 0 {
			return db
		}
		offset := max(params.Offset, 0)
		return db.Offset(offset).Limit(params.Limit)
	}
}

// Chronological orders rows of table by creation time, oldest first, with the
// id as a tiebreaker for rows created in the same instant.
func Chronological(table string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + ".created_at ASC").Order(table + ".id ASC")
	}
}
