package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ecohistorias/eco-api/internal/constants"
	"github.com/ecohistorias/eco-api/internal/mail"
	"github.com/ecohistorias/eco-api/internal/models"
	"github.com/ecohistorias/eco-api/internal/repository"
	"github.com/ecohistorias/eco-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidResetToken = errors.New("invalid or expired token")

const mailTimeout = 30 * time.Second

// PasswordResetService issues single-use reset tokens and consumes them
type PasswordResetService struct {
	userRepo    repository.UserRepository
	resetRepo   repository.PasswordResetRepository
	mailer      mail.Mailer
	frontendURL string
	ttl         time.Duration
	now         func() time.Time

	wg sync.WaitGroup
}

// NewPasswordResetService creates a new PasswordResetService
func NewPasswordResetService(
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetRepository,
	mailer mail.Mailer,
	frontendURL string,
	ttl time.Duration,
) *PasswordResetService {
	if ttl <= 0 {
		ttl = constants.DefaultResetTokenTTL
	}
	return &PasswordResetService{
		userRepo:    userRepo,
		resetRepo:   resetRepo,
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		ttl:         ttl,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// RequestReset creates a token for the account and mails the link in the
// background. Unknown emails succeed silently so callers cannot probe for
// accounts.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return fieldError("email", "email must be a valid address")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	token, err := utils.GenerateToken(constants.ResetTokenBytes)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	record := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.resetRepo.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	msg, err := mail.ResetMessage(user.Email, s.ResetLink(token), s.ttl)
	if err != nil {
		return fmt.Errorf("failed to render reset email: %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		if err := s.mailer.Send(sendCtx, msg); err != nil {
			log.Printf("Failed to send password reset email to user %s: %v", user.ID, err)
		}
	}()

	return nil
}

// ResetLink is the frontend page that accepts the token
func (s *PasswordResetService) ResetLink(token string) string {
	return s.frontendURL + "/reset-password?token=" + url.QueryEscape(token)
}

// ValidateToken reports whether the token can still be used
func (s *PasswordResetService) ValidateToken(ctx context.Context, token string) error {
	if len(token) < constants.MinResetTokenLength {
		return ErrInvalidResetToken
	}

	record, err := s.resetRepo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to find reset token: %w", err)
	}
	if !record.Usable(s.now()) {
		return ErrInvalidResetToken
	}
	return nil
}

// ResetPassword consumes the token and stores the new password hash. A token
// works once; later attempts get ErrInvalidResetToken.
func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(token) < constants.MinResetTokenLength {
		return fieldError("token", "token must be at least %d characters", constants.MinResetTokenLength)
	}
	if err := checkPassword("newPassword", newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), constants.BcryptCost)
	if err != nil {
		return ErrFailedToHashPassword
	}

	if _, err := s.resetRepo.Consume(ctx, token, s.now(), string(hash)); err != nil {
		if errors.Is(err, repository.ErrTokenUnusable) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return nil
}

// Wait blocks until every queued email has been handed to the mailer
func (s *PasswordResetService) Wait() {
	s.wg.Wait()
}
