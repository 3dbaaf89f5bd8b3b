package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ecohistorias/eco-api/internal/database"
	"github.com/ecohistorias/eco-api/internal/models"
	"github.com/ecohistorias/eco-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrSussurroExists is returned when the author already replied to the eco.
	ErrSussurroExists = errors.New("sussurro repository: author already replied to this eco")
	// ErrSussurroLimit is returned when the eco holds the maximum number of sussurros.
	ErrSussurroLimit = errors.New("sussurro repository: eco reached its sussurro limit")
	// ErrCreateSussurro is returned when the insert itself fails.
	ErrCreateSussurro = errors.New("sussurro repository: create sussurro failed")
)

// GormSussurroRepository is a GORM implementation of SussurroRepository
type GormSussurroRepository struct {
	db *gorm.DB
}

// NewSussurroRepository creates a new SussurroRepository
func NewSussurroRepository(db *gorm.DB) SussurroRepository {
	return &GormSussurroRepository{db: db}
}

// CreateLimited checks both limits and inserts inside one transaction. The
// parent eco row is locked first so concurrent creates on the same eco count
// one after another. The unique (eco_id, author_id) index rejects a duplicate
// that slips past the check.
func (r *GormSussurroRepository) CreateLimited(ctx context.Context, sussurro *models.Sussurro, maxPerEco int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&models.Eco{}, "id = ?", sussurro.EcoID).Error; err != nil {
			return err
		}

		var own int64
		if err := tx.Model(&models.Sussurro{}).
			Where("eco_id = ? AND author_id = ?", sussurro.EcoID, sussurro.AuthorID).
			Count(&own).Error; err != nil {
			return err
		}
		if own > 0 {
			return ErrSussurroExists
		}

		var total int64
		if err := tx.Model(&models.Sussurro{}).
			Where("eco_id = ?", sussurro.EcoID).
			Count(&total).Error; err != nil {
			return err
		}
		if total >= int64(maxPerEco) {
			return ErrSussurroLimit
		}

		if err := tx.Create(sussurro).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSussurroExists
			}
			return fmt.Errorf("%w: %v", ErrCreateSussurro, err)
		}
		return nil
	})
}

func (r *GormSussurroRepository) FindByID(ctx context.Context, id string) (*models.Sussurro, error) {
	var sussurro models.Sussurro
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&sussurro).Error; err != nil {
		return nil, err
	}
	return &sussurro, nil
}

func (r *GormSussurroRepository) List(ctx context.Context, filter SussurroFilter) ([]SussurroRow, int64, error) {
	countQuery := r.db.WithContext(ctx).Model(&models.Sussurro{})
	if filter.EcoID != "" {
		countQuery = countQuery.Where("eco_id = ?", filter.EcoID)
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).
		Table("sussurros").
		Select("sussurros.id, sussurros.eco_id, sussurros.author_id, sussurros.conteudo, " +
			"sussurros.created_at, sussurros.updated_at, users.codinome, users.avatar_url, users.genero").
		Joins("JOIN users ON users.id = sussurros.author_id").
		Scopes(database.Chronological("sussurros"))
	if filter.EcoID != "" {
		query = query.Where("sussurros.eco_id = ?", filter.EcoID)
	}
	query = query.Scopes(database.Paginate(utils.PaginationParams{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}))

	rows := []SussurroRow{}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *GormSussurroRepository) UpdateContent(ctx context.Context, id, content string) error {
	return r.db.WithContext(ctx).
		Model(&models.Sussurro{ID: id}).
		Update("conteudo", content).Error
}

func (r *GormSussurroRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Sussurro{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
