package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ecohistorias/eco-api/internal/constants"
	"github.com/ecohistorias/eco-api/internal/models"
	"github.com/ecohistorias/eco-api/internal/repository"
	"gorm.io/gorm"
)

var ErrTagExists = errors.New("tag already exists")

// TagService manages the tag catalog
type TagService struct {
	tagRepo repository.TagRepository
}

// NewTagService creates a new TagService
func NewTagService(tagRepo repository.TagRepository) *TagService {
	return &TagService{tagRepo: tagRepo}
}

// ListTags returns the catalog ordered by name
func (s *TagService) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// CreateTag adds a tag to the catalog
func (s *TagService) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if err := checkText("nome", name, true, constants.MaxTagNameLength); err != nil {
		return nil, err
	}

	tag := &models.Tag{Name: name}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTagExists
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return tag, nil
}

// SeedTags inserts the names that are not in the catalog yet and reports how
// many were created.
func (s *TagService) SeedTags(ctx context.Context, names []string) (int, error) {
	created := 0
	for _, name := range names {
		_, err := s.tagRepo.FindByName(ctx, strings.TrimSpace(name))
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, fmt.Errorf("failed to look up tag %q: %w", name, err)
		}

		if _, err := s.CreateTag(ctx, name); err != nil {
			if errors.Is(err, ErrTagExists) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}
