package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/ecohistorias/eco-api/internal/constants"
	"github.com/ecohistorias/eco-api/internal/credentials"
	"github.com/ecohistorias/eco-api/internal/dto"
	apierrors "github.com/ecohistorias/eco-api/internal/errors"
	"github.com/ecohistorias/eco-api/internal/metrics"
	"github.com/ecohistorias/eco-api/internal/middleware"
	"github.com/ecohistorias/eco-api/internal/models"
	"github.com/ecohistorias/eco-api/internal/services"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	tokens      credentials.TokenStore
	metrics     *metrics.Metrics
}

// NewAuthHandler creates a new AuthHandler. tokens may be nil, in which case
// only the session cookie is issued.
func NewAuthHandler(authService *services.AuthService, tokens credentials.TokenStore, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokens:      tokens,
		metrics:     m,
	}
}

// Register creates an account and signs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Email     string `json:"email" binding:"required"`
		Password  string `json:"senha" binding:"required"`
		Codename  string `json:"codinome" binding:"required"`
		Gender    string `json:"genero" binding:"required"`
		AvatarURL string `json:"avatar_url" binding:"required"`
	}

	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Codename:  req.Codename,
		Gender:    models.Gender(req.Gender),
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}
	h.metrics.RecordRegistration()

	h.signIn(c, http.StatusCreated, user)
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"senha" binding:"required"`
	}

	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.metrics.RecordLogin("rejected")
		}
		respondAuthError(c, err)
		return
	}
	h.metrics.RecordLogin("ok")

	h.signIn(c, http.StatusOK, user)
}

// signIn stores the user in the session, issues a bearer token and writes the response.
func (h *AuthHandler) signIn(c *gin.Context, status int, user *models.User) {
	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		log.Printf("Failed to save session: %v", err)
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	resp := dto.AuthResponse{User: dto.ToUserDTO(*user)}
	if h.tokens != nil {
		token, err := h.tokens.Issue(c.Request.Context(), user.ID)
		if err != nil {
			log.Printf("Failed to issue token: %v", err)
			apierrors.InternalError(c, "Failed to issue token")
			return
		}
		resp.Token = token
	}

	c.JSON(status, resp)
}

// Logout removes the authentication session and revokes the bearer token.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := middleware.BearerToken(c); token != "" && h.tokens != nil {
		if err := h.tokens.Revoke(c.Request.Context(), token); err != nil {
			log.Printf("Failed to revoke token: %v", err)
		}
	}

	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// Profile returns the authenticated user.
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func respondAuthError(c *gin.Context, err error) {
	if respondFieldError(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrCodenameTaken),
		errors.Is(err, services.ErrAccountConflict):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c)
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		log.Printf("Auth request failed: %v", err)
		apierrors.InternalError(c, "")
	}
}
