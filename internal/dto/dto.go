package dto

import (
	"time"

	"github.com/ecohistorias/eco-api/internal/models"
	"github.com/ecohistorias/eco-api/internal/repository"
	"github.com/ecohistorias/eco-api/internal/services"
	"github.com/ecohistorias/eco-api/internal/utils"
)

// UserDTO is the public face of an account. Email and password hash never leave the server.
type UserDTO struct {
	ID        string        `json:"id"`
	Codename  string        `json:"codinome"`
	AvatarURL string        `json:"avatar_url"`
	Gender    models.Gender `json:"genero"`
}

// AuthorDTO identifies who wrote an eco or sussurro
type AuthorDTO struct {
	ID        string        `json:"id"`
	Codename  string        `json:"codinome"`
	AvatarURL string        `json:"avatar_url"`
	Gender    models.Gender `json:"genero,omitempty"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token,omitempty"`
}

// TagDTO represents a tag in API responses
type TagDTO struct {
	ID   string `json:"id"`
	Name string `json:"nome"`
}

// EcoDTO represents an eco in API responses
type EcoDTO struct {
	ID            string    `json:"id"`
	Thread1       string    `json:"thread_1"`
	Thread2       *string   `json:"thread_2"`
	Thread3       *string   `json:"thread_3"`
	Author        AuthorDTO `json:"author"`
	Tags          []TagDTO  `json:"tags"`
	SussurroCount int64     `json:"sussurros_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// EcoDetailDTO adds the sussurros of an eco
type EcoDetailDTO struct {
	EcoDTO
	Sussurros []SussurroDTO `json:"sussurros"`
}

// SussurroDTO represents a sussurro in API responses
type SussurroDTO struct {
	ID        string     `json:"id"`
	EcoID     string     `json:"eco_id"`
	Content   string     `json:"conteudo"`
	Author    *AuthorDTO `json:"author,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// EcoListResponse represents a page of the feed
type EcoListResponse struct {
	Ecos       []EcoDTO                 `json:"ecos"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// SussurroListResponse represents a list of sussurros
type SussurroListResponse struct {
	Sussurros  []SussurroDTO             `json:"sussurros"`
	Pagination *utils.PaginationResponse `json:"pagination,omitempty"`
}

// Conversion functions

func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Codename:  user.Codename,
		AvatarURL: user.AvatarURL,
		Gender:    user.Gender,
	}
}

func ToTagDTO(tag models.Tag) TagDTO {
	return TagDTO{ID: tag.ID, Name: tag.Name}
}

func ToTagDTOs(tags []models.Tag) []TagDTO {
	out := make([]TagDTO, len(tags))
	for i, tag := range tags {
		out[i] = ToTagDTO(tag)
	}
	return out
}

// ToEcoDTO converts a feed row with its tags
func ToEcoDTO(view services.EcoView) EcoDTO {
	return EcoDTO{
		ID:      view.ID,
		Thread1: view.Thread1,
		Thread2: view.Thread2,
		Thread3: view.Thread3,
		Author: AuthorDTO{
			ID:        view.AuthorID,
			Codename:  view.Codename,
			AvatarURL: view.AvatarURL,
			Gender:    view.Gender,
		},
		Tags:          ToTagDTOs(view.Tags),
		SussurroCount: view.SussurroCount,
		CreatedAt:     view.CreatedAt,
		UpdatedAt:     view.UpdatedAt,
	}
}

func ToEcoDetailDTO(detail services.EcoDetail) EcoDetailDTO {
	return EcoDetailDTO{
		EcoDTO:    ToEcoDTO(detail.EcoView),
		Sussurros: ToSussurroRowDTOs(detail.Sussurros),
	}
}

// ToEcoListResponse converts a feed page
func ToEcoListResponse(views []services.EcoView, params utils.PaginationParams, total int64) EcoListResponse {
	items := make([]EcoDTO, len(views))
	for i, view := range views {
		items[i] = ToEcoDTO(view)
	}
	return EcoListResponse{
		Ecos:       items,
		Pagination: utils.NewPaginationResponse(params, total),
	}
}

// ToSussurroDTO converts a stored sussurro. Author fields are not loaded.
func ToSussurroDTO(s models.Sussurro) SussurroDTO {
	return SussurroDTO{
		ID:        s.ID,
		EcoID:     s.EcoID,
		Content:   s.Content,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func ToSussurroRowDTOs(rows []repository.SussurroRow) []SussurroDTO {
	out := make([]SussurroDTO, len(rows))
	for i, row := range rows {
		out[i] = SussurroDTO{
			ID:      row.ID,
			EcoID:   row.EcoID,
			Content: row.Content,
			Author: &AuthorDTO{
				ID:        row.AuthorID,
				Codename:  row.Codename,
				AvatarURL: row.AvatarURL,
				Gender:    row.Gender,
			},
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		}
	}
	return out
}
