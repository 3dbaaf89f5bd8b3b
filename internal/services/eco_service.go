package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ecohistorias/eco-api/internal/constants"
	"github.com/ecohistorias/eco-api/internal/models"
	"github.com/ecohistorias/eco-api/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEcoNotFound       = errors.New("eco not found")
	ErrNotEcoAuthor      = errors.New("only the author can change this eco")
	ErrTagsChanged       = errors.New("eco tags changed during update")
	ErrFailedToCreateEco = errors.New("failed to create eco")
)

// EcoService enforces the eco rules: bounded threads, 1 to 3 distinct
// existing tags, and tags that never change after creation.
type EcoService struct {
	ecoRepo      repository.EcoRepository
	tagRepo      repository.TagRepository
	sussurroRepo repository.SussurroRepository
}

// NewEcoService creates a new EcoService
func NewEcoService(ecoRepo repository.EcoRepository, tagRepo repository.TagRepository, sussurroRepo repository.SussurroRepository) *EcoService {
	return &EcoService{
		ecoRepo:      ecoRepo,
		tagRepo:      tagRepo,
		sussurroRepo: sussurroRepo,
	}
}

// EcoView is an eco with its author's public profile and its tags
type EcoView struct {
	repository.EcoRow
	Tags []models.Tag
}

// EcoDetail adds the sussurros of the eco
type EcoDetail struct {
	EcoView
	Sussurros []repository.SussurroRow
}

// CreateEcoInput represents input for creating an eco
type CreateEcoInput struct {
	AuthorID string
	Thread1  string
	Thread2  *string
	Thread3  *string
	TagIDs   []string
}

// UpdateEcoInput represents input for updating an eco. TagIDs is non-nil
// whenever the request carried tag_ids at all, and such requests are refused.
type UpdateEcoInput struct {
	EcoID   string
	ActorID string
	Thread1 *string
	Thread2 *string
	Thread3 *string
	TagIDs  *[]string
}

// ListFeedInput represents filters for the feed
type ListFeedInput struct {
	TagID  string
	Limit  int
	Offset int
}

func validateThreads(thread1 *string, thread1Required bool, thread2, thread3 *string) error {
	if thread1 != nil || thread1Required {
		value := ""
		if thread1 != nil {
			value = *thread1
		}
		if err := checkText("thread_1", value, true, constants.MaxThreadLength); err != nil {
			return err
		}
	}
	if err := checkOptionalText("thread_2", thread2, constants.MaxThreadLength); err != nil {
		return err
	}
	return checkOptionalText("thread_3", thread3, constants.MaxFinalThreadLength)
}

// validateTagIDs checks the tag list shape: non-empty, no repeats, at most three.
func validateTagIDs(tagIDs []string) error {
	if len(tagIDs) < constants.MinEcoTags {
		return fieldError("tag_ids", "at least %d tag is required", constants.MinEcoTags)
	}

	seen := make(map[string]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		if _, err := uuid.Parse(id); err != nil {
			return fieldError("tag_ids", "tag id %q is not a valid UUID", id)
		}
		if _, dup := seen[id]; dup {
			return fieldError("tag_ids", "no repeated tags")
		}
		seen[id] = struct{}{}
	}

	if len(seen) > constants.MaxEcoTags {
		return fieldError("tag_ids", "at most %d tags are allowed", constants.MaxEcoTags)
	}
	return nil
}

// ValidateCreateEco checks every field rule without touching storage.
func ValidateCreateEco(input CreateEcoInput) error {
	if err := validateThreads(&input.Thread1, true, input.Thread2, input.Thread3); err != nil {
		return err
	}
	return validateTagIDs(input.TagIDs)
}

// CreateEco validates the input, checks every tag exists and stores the eco
// with its tag links atomically.
func (s *EcoService) CreateEco(ctx context.Context, input CreateEcoInput) (*EcoView, error) {
	if err := ValidateCreateEco(input); err != nil {
		return nil, err
	}

	count, err := s.tagRepo.CountByIDs(ctx, input.TagIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to check tags: %w", err)
	}
	if count != int64(len(input.TagIDs)) {
		return nil, fieldError("tag_ids", "one or more tags do not exist")
	}

	eco := &models.Eco{
		AuthorID: input.AuthorID,
		Thread1:  input.Thread1,
		Thread2:  emptyToNil(input.Thread2),
		Thread3:  emptyToNil(input.Thread3),
	}

	if err := s.ecoRepo.CreateWithTags(ctx, eco, input.TagIDs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateEco, err)
	}

	return s.loadView(ctx, eco.ID)
}

// ListFeed returns a page of ecos, newest first, optionally filtered by tag.
func (s *EcoService) ListFeed(ctx context.Context, input ListFeedInput) ([]EcoView, int64, error) {
	rows, total, err := s.ecoRepo.Feed(ctx, repository.FeedFilter{
		TagID:  input.TagID,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ecos: %w", err)
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	tags, err := s.tagRepo.ListByEcoIDs(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load eco tags: %w", err)
	}

	views := make([]EcoView, len(rows))
	for i, row := range rows {
		views[i] = EcoView{EcoRow: row, Tags: tags[row.ID]}
	}
	return views, total, nil
}

// GetEco returns an eco with tags and all of its sussurros.
func (s *EcoService) GetEco(ctx context.Context, id string) (*EcoDetail, error) {
	view, err := s.loadView(ctx, id)
	if err != nil {
		return nil, err
	}

	sussurros, _, err := s.sussurroRepo.List(ctx, repository.SussurroFilter{EcoID: id})
	if err != nil {
		return nil, fmt.Errorf("failed to load sussurros: %w", err)
	}

	return &EcoDetail{EcoView: *view, Sussurros: sussurros}, nil
}

// UpdateEco changes thread text only. Requests carrying tag_ids are refused
// before any write, and the stored tag set is compared before and after.
func (s *EcoService) UpdateEco(ctx context.Context, input UpdateEcoInput) (*EcoView, error) {
	if input.TagIDs != nil {
		return nil, fieldError("tag_ids", "tags cannot be changed after an eco is created")
	}
	if err := validateThreads(input.Thread1, false, input.Thread2, input.Thread3); err != nil {
		return nil, err
	}

	if _, err := s.authorizedEco(ctx, input.EcoID, input.ActorID); err != nil {
		return nil, err
	}

	before, err := s.ecoRepo.TagIDs(ctx, input.EcoID)
	if err != nil {
		return nil, fmt.Errorf("failed to load eco tags: %w", err)
	}

	err = s.ecoRepo.UpdateThreads(ctx, input.EcoID, repository.ThreadUpdate{
		Thread1: input.Thread1,
		Thread2: input.Thread2,
		Thread3: input.Thread3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update eco: %w", err)
	}

	after, err := s.ecoRepo.TagIDs(ctx, input.EcoID)
	if err != nil {
		return nil, fmt.Errorf("failed to load eco tags: %w", err)
	}
	if !slices.Equal(before, after) {
		return nil, ErrTagsChanged
	}

	return s.loadView(ctx, input.EcoID)
}

// DeleteEco removes the eco together with its tag links and sussurros.
func (s *EcoService) DeleteEco(ctx context.Context, id, actorID string) error {
	if _, err := s.authorizedEco(ctx, id, actorID); err != nil {
		return err
	}

	if err := s.ecoRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEcoNotFound
		}
		return fmt.Errorf("failed to delete eco: %w", err)
	}
	return nil
}

func (s *EcoService) authorizedEco(ctx context.Context, id, actorID string) (*models.Eco, error) {
	eco, err := s.ecoRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEcoNotFound
		}
		return nil, fmt.Errorf("failed to find eco: %w", err)
	}
	if eco.AuthorID != actorID {
		return nil, ErrNotEcoAuthor
	}
	return eco, nil
}

func (s *EcoService) loadView(ctx context.Context, id string) (*EcoView, error) {
	row, err := s.ecoRepo.FindRow(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEcoNotFound
		}
		return nil, fmt.Errorf("failed to find eco: %w", err)
	}

	tags, err := s.tagRepo.ListByEcoIDs(ctx, []string{id})
	if err != nil {
		return nil, fmt.Errorf("failed to load eco tags: %w", err)
	}

	return &EcoView{EcoRow: *row, Tags: tags[id]}, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
