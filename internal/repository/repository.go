package repository

import (
	"context"
	"time"

	"github.com/ecohistorias/eco-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// ExistsByEmail reports whether an account uses the email
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByCodename reports whether an account uses the codinome
	ExistsByCodename(ctx context.Context, codename string) (bool, error)
}

// TagRepository defines the interface for tag catalog access
type TagRepository interface {
	// List returns every tag ordered by name
	List(ctx context.Context) ([]models.Tag, error)

	// Create adds a tag to the catalog
	Create(ctx context.Context, tag *models.Tag) error

	// FindByName finds a tag by its exact name
	FindByName(ctx context.Context, name string) (*models.Tag, error)

	// CountByIDs counts how many of the given tag IDs exist
	CountByIDs(ctx context.Context, ids []string) (int64, error)

	// ListByEcoIDs returns the tags of each eco, keyed by eco ID
	ListByEcoIDs(ctx context.Context, ecoIDs []string) (map[string][]models.Tag, error)
}

// EcoRepository defines the interface for eco data access
type EcoRepository interface {
	// CreateWithTags inserts the eco and one link per tag in a single transaction
	CreateWithTags(ctx context.Context, eco *models.Eco, tagIDs []string) error

	// FindByID finds an eco by ID
	FindByID(ctx context.Context, id string) (*models.Eco, error)

	// Feed lists ecos with author fields and sussurro counts
	Feed(ctx context.Context, filter FeedFilter) ([]EcoRow, int64, error)

	// FindRow loads a single eco with author fields and sussurro count
	FindRow(ctx context.Context, id string) (*EcoRow, error)

	// UpdateThreads updates thread columns only
	UpdateThreads(ctx context.Context, id string, update ThreadUpdate) error

	// TagIDs returns the IDs of the tags linked to an eco
	TagIDs(ctx context.Context, ecoID string) ([]string, error)

	// Delete removes an eco with its tag links and sussurros
	Delete(ctx context.Context, id string) error
}

// FeedFilter holds filtering options for listing ecos
type FeedFilter struct {
	TagID  string
	EcoID  string
	Limit  int
	Offset int
}

// ThreadUpdate carries the thread columns to change. A nil field is left
// untouched; an empty optional thread is stored as NULL.
type ThreadUpdate struct {
	Thread1 *string
	Thread2 *string
	Thread3 *string
}

// EcoRow is an eco joined with its author's public profile
type EcoRow struct {
	ID            string
	AuthorID      string
	Thread1       string  `gorm:"column:thread_1"`
	Thread2       *string `gorm:"column:thread_2"`
	Thread3       *string `gorm:"column:thread_3"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Codename      string        `gorm:"column:codinome"`
	AvatarURL     string        `gorm:"column:avatar_url"`
	Gender        models.Gender `gorm:"column:genero"`
	SussurroCount int64         `gorm:"column:sussurro_count"`
}

// SussurroRepository defines the interface for sussurro data access
type SussurroRepository interface {
	// CreateLimited inserts a sussurro unless the author already replied to
	// the eco or the eco holds maxPerEco sussurros
	CreateLimited(ctx context.Context, sussurro *models.Sussurro, maxPerEco int) error

	// FindByID finds a sussurro by ID
	FindByID(ctx context.Context, id string) (*models.Sussurro, error)

	// List returns sussurros with author fields, oldest first
	List(ctx context.Context, filter SussurroFilter) ([]SussurroRow, int64, error)

	// UpdateContent replaces the text of a sussurro
	UpdateContent(ctx context.Context, id, content string) error

	// Delete removes a sussurro
	Delete(ctx context.Context, id string) error
}

// SussurroFilter holds filtering options for listing sussurros
type SussurroFilter struct {
	EcoID  string
	Limit  int
	Offset int
}

// SussurroRow is a sussurro joined with its author's public profile
type SussurroRow struct {
	ID        string
	EcoID     string
	AuthorID  string
	Content   string `gorm:"column:conteudo"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Codename  string        `gorm:"column:codinome"`
	AvatarURL string        `gorm:"column:avatar_url"`
	Gender    models.Gender `gorm:"column:genero"`
}

// PasswordResetRepository defines the interface for reset token access
type PasswordResetRepository interface {
	// Create stores a new reset token
	Create(ctx context.Context, token *models.PasswordResetToken) error

	// FindByToken finds a reset token by its value
	FindByToken(ctx context.Context, token string) (*models.PasswordResetToken, error)

	// Consume marks a usable token as used and sets the owner's password hash
	// in one transaction, returning the owner's ID
	Consume(ctx context.Context, token string, now time.Time, passwordHash string) (string, error)
}
