package repository

import (
	"context"

	"github.com/ecohistorias/eco-api/internal/models"
	"gorm.io/gorm"
)

// GormTagRepository is a GORM implementation of TagRepository
type GormTagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &GormTagRepository{db: db}
}

func (r *GormTagRepository) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Order("nome ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *GormTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *GormTagRepository) FindByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).Where("nome = ?", name).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *GormTagRepository) CountByIDs(ctx context.Context, ids []string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Tag{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}

type ecoTagRow struct {
	EcoID string
	ID    string
	Name  string `gorm:"column:nome"`
}

func (r *GormTagRepository) ListByEcoIDs(ctx context.Context, ecoIDs []string) (map[string][]models.Tag, error) {
	result := make(map[string][]models.Tag, len(ecoIDs))
	if len(ecoIDs) == 0 {
		return result, nil
	}

	var rows []ecoTagRow
	err := r.db.WithContext(ctx).
		Table("eco_tags").
		Select("eco_tags.eco_id, tags.id, tags.nome").
		Joins("JOIN tags ON tags.id = eco_tags.tag_id").
		Where("eco_tags.eco_id IN ?", ecoIDs).
		Order("tags.nome ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.EcoID] = append(result[row.EcoID], models.Tag{ID: row.ID, Name: row.Name})
	}
	return result, nil
}
