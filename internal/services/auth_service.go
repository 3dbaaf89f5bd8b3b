package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/ecohistorias/eco-api/internal/constants"
	"github.com/ecohistorias/eco-api/internal/models"
	"github.com/ecohistorias/eco-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrCodenameTaken        = errors.New("codinome already in use")
	ErrAccountConflict      = errors.New("email or codinome already in use")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
)

var codenamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// AuthService handles registration and login.
type AuthService struct {
	userRepo repository.UserRepository

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Email     string
	Password  string
	Codename  string
	Gender    models.Gender
	AvatarURL string
}

// ValidateRegistration checks every field rule without touching storage.
func ValidateRegistration(input RegisterInput) error {
	if err := validate.Var(input.Email, "required,email"); err != nil {
		return fieldError("email", "email must be a valid address")
	}
	if err := checkPassword("senha", input.Password); err != nil {
		return err
	}
	if n := len(input.Codename); n < constants.MinCodenameLength || n > constants.MaxCodenameLength {
		return fieldError("codinome", "codinome must be between %d and %d characters",
			constants.MinCodenameLength, constants.MaxCodenameLength)
	}
	if !codenamePattern.MatchString(input.Codename) {
		return fieldError("codinome", "codinome may only contain letters, numbers and underscores")
	}
	if !input.Gender.Valid() {
		return fieldError("genero", "genero must be one of M, F, O")
	}
	if !isHTTPURL(input.AvatarURL) {
		return fieldError("avatar_url", "avatar_url must be an absolute http(s) URL")
	}
	return nil
}

// Register validates the input, checks uniqueness and stores the user with a
// hashed password.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.AvatarURL = strings.TrimSpace(input.AvatarURL)
	if err := ValidateRegistration(input); err != nil {
		return nil, err
	}

	taken, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	taken, err = s.userRepo.ExistsByCodename(ctx, input.Codename)
	if err != nil {
		return nil, fmt.Errorf("failed to check codinome: %w", err)
	}
	if taken {
		return nil, ErrCodenameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), constants.BcryptCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Codename:     input.Codename,
		Gender:       input.Gender,
		AvatarURL:    input.AvatarURL,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAccountConflict
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateUser, err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials. Unknown emails and wrong passwords both return
// ErrInvalidCredentials, and both pay for one bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.timingHash(), []byte(input.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

func isHTTPURL(raw string) bool {
	if err := validate.Var(raw, "required,url"); err != nil {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (s *AuthService) timingHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("eco-unknown-account"), constants.BcryptCost)
	})
	return s.dummyHash
}
