package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ecohistorias/eco-api/internal/constants"
	"github.com/ecohistorias/eco-api/internal/models"
	"github.com/ecohistorias/eco-api/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSussurroNotFound  = errors.New("sussurro not found")
	ErrNotSussurroAuthor = errors.New("only the author can change this sussurro")
	ErrSussurroExists    = errors.New("you already replied to this eco")
	ErrSussurroLimit     = errors.New("sussurro limit reached")
)

// SussurroService handles replies to ecos
type SussurroService struct {
	sussurroRepo repository.SussurroRepository
	ecoRepo      repository.EcoRepository
	maxPerEco    int
}

// NewSussurroService creates a new SussurroService
func NewSussurroService(sussurroRepo repository.SussurroRepository, ecoRepo repository.EcoRepository) *SussurroService {
	return &SussurroService{
		sussurroRepo: sussurroRepo,
		ecoRepo:      ecoRepo,
		maxPerEco:    constants.MaxSussurrosPerEco,
	}
}

// CreateSussurroInput represents input for creating a sussurro
type CreateSussurroInput struct {
	EcoID    string
	AuthorID string
	Content  string
}

// ListSussurrosInput represents filters for listing sussurros
type ListSussurrosInput struct {
	EcoID  string
	Limit  int
	Offset int
}

// ListSussurros returns sussurros oldest first. An eco filter returns the
// whole thread, otherwise the listing is paginated.
func (s *SussurroService) ListSussurros(ctx context.Context, input ListSussurrosInput) ([]repository.SussurroRow, int64, error) {
	filter := repository.SussurroFilter{EcoID: input.EcoID}
	if input.EcoID == "" {
		filter.Limit = input.Limit
		filter.Offset = input.Offset
	} else if _, err := uuid.Parse(input.EcoID); err != nil {
		return nil, 0, fieldError("eco_id", "eco_id must be a valid UUID")
	}

	rows, total, err := s.sussurroRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sussurros: %w", err)
	}
	return rows, total, nil
}

// CreateSussurro stores a reply if the eco exists, the author has not replied
// yet and the eco has room for another sussurro.
func (s *SussurroService) CreateSussurro(ctx context.Context, input CreateSussurroInput) (*models.Sussurro, error) {
	if _, err := uuid.Parse(input.EcoID); err != nil {
		return nil, fieldError("eco_id", "eco_id must be a valid UUID")
	}
	if err := checkText("conteudo", input.Content, true, constants.MaxSussurroLength); err != nil {
		return nil, err
	}

	if _, err := s.ecoRepo.FindByID(ctx, input.EcoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEcoNotFound
		}
		return nil, fmt.Errorf("failed to find eco: %w", err)
	}

	sussurro := &models.Sussurro{
		EcoID:    input.EcoID,
		AuthorID: input.AuthorID,
		Content:  input.Content,
	}

	if err := s.sussurroRepo.CreateLimited(ctx, sussurro, s.maxPerEco); err != nil {
		switch {
		case errors.Is(err, repository.ErrSussurroExists):
			return nil, ErrSussurroExists
		case errors.Is(err, repository.ErrSussurroLimit):
			return nil, ErrSussurroLimit
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrEcoNotFound
		default:
			return nil, fmt.Errorf("failed to create sussurro: %w", err)
		}
	}

	return sussurro, nil
}

// UpdateSussurro replaces the text of a sussurro owned by actorID
func (s *SussurroService) UpdateSussurro(ctx context.Context, id, actorID, content string) (*models.Sussurro, error) {
	if err := checkText("conteudo", content, true, constants.MaxSussurroLength); err != nil {
		return nil, err
	}

	sussurro, err := s.authorizedSussurro(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.sussurroRepo.UpdateContent(ctx, id, content); err != nil {
		return nil, fmt.Errorf("failed to update sussurro: %w", err)
	}

	return s.reload(ctx, sussurro.ID)
}

// DeleteSussurro removes a sussurro owned by actorID
func (s *SussurroService) DeleteSussurro(ctx context.Context, id, actorID string) error {
	if _, err := s.authorizedSussurro(ctx, id, actorID); err != nil {
		return err
	}

	if err := s.sussurroRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSussurroNotFound
		}
		return fmt.Errorf("failed to delete sussurro: %w", err)
	}
	return nil
}

func (s *SussurroService) authorizedSussurro(ctx context.Context, id, actorID string) (*models.Sussurro, error) {
	sussurro, err := s.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	if sussurro.AuthorID != actorID {
		return nil, ErrNotSussurroAuthor
	}
	return sussurro, nil
}

func (s *SussurroService) reload(ctx context.Context, id string) (*models.Sussurro, error) {
	sussurro, err := s.sussurroRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSussurroNotFound
		}
		return nil, fmt.Errorf("failed to find sussurro: %w", err)
	}
	return sussurro, nil
}
