package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ecohistorias/eco-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrCreateEco is returned when inserting the eco row fails.
	ErrCreateEco = errors.New("eco repository: create eco failed")
	// ErrCreateEcoTags is returned when inserting the tag links fails.
	ErrCreateEcoTags = errors.New("eco repository: create eco tags failed")
	// ErrDeleteEco is returned when any step of the cascading delete fails.
	ErrDeleteEco = errors.New("eco repository: delete eco failed")
)

var ecoColumns = []string{
	"ecos.id",
	"ecos.author_id",
	"ecos.thread_1",
	"ecos.thread_2",
	"ecos.thread_3",
	"ecos.created_at",
	"ecos.updated_at",
	"users.codinome",
	"users.avatar_url",
	"users.genero",
}

const sussurroCountColumn = "(SELECT COUNT(*) FROM sussurros WHERE sussurros.eco_id = ecos.id) AS sussurro_count"

// GormEcoRepository is a GORM implementation of EcoRepository
type GormEcoRepository struct {
	db *gorm.DB
}

// NewEcoRepository creates a new EcoRepository
func NewEcoRepository(db *gorm.DB) EcoRepository {
	return &GormEcoRepository{db: db}
}

func (r *GormEcoRepository) CreateWithTags(ctx context.Context, eco *models.Eco, tagIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(eco).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateEco, err)
		}

		links := make([]models.EcoTag, len(tagIDs))
		for i, tagID := range tagIDs {
			links[i] = models.EcoTag{
				EcoID: eco.ID,
				TagID: tagID,
			}
		}

		if err := tx.Create(&links).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateEcoTags, err)
		}

		return nil
	})
}

func (r *GormEcoRepository) FindByID(ctx context.Context, id string) (*models.Eco, error) {
	var eco models.Eco
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&eco).Error; err != nil {
		return nil, err
	}
	return &eco, nil
}

// applyFeedFilter adds the joins and conditions shared by the page and count queries
func applyFeedFilter(b sq.SelectBuilder, filter FeedFilter) sq.SelectBuilder {
	b = b.Join("users ON users.id = ecos.author_id")
	if filter.TagID != "" {
		b = b.Join("eco_tags ON eco_tags.eco_id = ecos.id").
			Where(sq.Eq{"eco_tags.tag_id": filter.TagID})
	}
	if filter.EcoID != "" {
		b = b.Where(sq.Eq{"ecos.id": filter.EcoID})
	}
	return b
}

// FeedQuery builds the SQL for one feed page. Placeholders are '?', which
// gorm rebinds for the active dialect.
func FeedQuery(filter FeedFilter) (string, []interface{}, error) {
	b := sq.Select(ecoColumns...).
		Column(sussurroCountColumn).
		From("ecos")
	b = applyFeedFilter(b, filter).OrderBy("ecos.created_at DESC", "ecos.id ASC")

	if filter.Limit > 0 {
		b = b.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}
	return b.ToSql()
}

func feedCountQuery(filter FeedFilter) (string, []interface{}, error) {
	return applyFeedFilter(sq.Select("COUNT(*)").From("ecos"), filter).ToSql()
}

func (r *GormEcoRepository) Feed(ctx context.Context, filter FeedFilter) ([]EcoRow, int64, error) {
	countSQL, countArgs, err := feedCountQuery(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("build feed count: %w", err)
	}

	var total int64
	if err := r.db.WithContext(ctx).Raw(countSQL, countArgs...).Scan(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []EcoRow{}, 0, nil
	}

	pageSQL, pageArgs, err := FeedQuery(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("build feed query: %w", err)
	}

	rows := []EcoRow{}
	if err := r.db.WithContext(ctx).Raw(pageSQL, pageArgs...).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func (r *GormEcoRepository) FindRow(ctx context.Context, id string) (*EcoRow, error) {
	rows, _, err := r.Feed(ctx, FeedFilter{EcoID: id, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *GormEcoRepository) UpdateThreads(ctx context.Context, id string, update ThreadUpdate) error {
	updates := map[string]interface{}{}
	if update.Thread1 != nil {
		updates["thread_1"] = *update.Thread1
	}
	if update.Thread2 != nil {
		updates["thread_2"] = nullIfEmpty(*update.Thread2)
	}
	if update.Thread3 != nil {
		updates["thread_3"] = nullIfEmpty(*update.Thread3)
	}
	if len(updates) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Model(&models.Eco{ID: id}).Updates(updates).Error
}

func (r *GormEcoRepository) TagIDs(ctx context.Context, ecoID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.EcoTag{}).
		Where("eco_id = ?", ecoID).
		Order("tag_id").
		Pluck("tag_id", &ids).Error
	return ids, err
}

// Delete removes sussurros and tag links before the eco so no row is left
// pointing at it, whether or not the schema cascades.
func (r *GormEcoRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("eco_id = ?", id).Delete(&models.Sussurro{}).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrDeleteEco, err)
		}

		if err := tx.Where("eco_id = ?", id).Delete(&models.EcoTag{}).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrDeleteEco, err)
		}

		result := tx.Where("id = ?", id).Delete(&models.Eco{})
		if result.Error != nil {
			return fmt.Errorf("%w: %v", ErrDeleteEco, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
