package database

import (
	"fmt"
	"log"

	"github.com/ecohistorias/eco-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds the indexes the feed and sussurro queries rely on
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model interface{}
		name  string
	}{
		// Feed ordering and author lookups
		{&models.Eco{}, "idx_ecos_created_at"},
		{&models.Eco{}, "idx_ecos_author_id"},

		// Tag filter joins on tag_id
		{&models.EcoTag{}, "idx_eco_tags_tag_id"},

		// One sussurro per author per eco
		{&models.Sussurro{}, "idx_sussurros_eco_author"},

		{&models.PasswordResetToken{}, "idx_password_reset_tokens_user_id"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}
		if err := migrator.CreateIndex(idx.model, idx.name); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
		log.Printf("Created index %s", idx.name)
	}

	return nil
}
