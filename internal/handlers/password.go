package handlers

import (
	"errors"
	"log"
	"net/http"

	apierrors "github.com/ecohistorias/eco-api/internal/errors"
	"github.com/ecohistorias/eco-api/internal/metrics"
	"github.com/ecohistorias/eco-api/internal/services"
	"github.com/gin-gonic/gin"
)

const forgotPasswordMessage = "If the email is registered, a reset link has been sent"

type PasswordHandler struct {
	resetService *services.PasswordResetService
	metrics      *metrics.Metrics
}

func NewPasswordHandler(resetService *services.PasswordResetService, m *metrics.Metrics) *PasswordHandler {
	return &PasswordHandler{
		resetService: resetService,
		metrics:      m,
	}
}

// ForgotPassword always answers with the same message so accounts cannot be probed.
func (h *PasswordHandler) ForgotPassword(c *gin.Context) {
	type ForgotPasswordRequest struct {
		Email string `json:"email" binding:"required,email"`
	}

	var req ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.resetService.RequestReset(c.Request.Context(), req.Email); err != nil {
		if respondFieldError(c, err) {
			return
		}
		log.Printf("Password reset request failed: %v", err)
	} else {
		h.metrics.RecordResetRequest()
	}

	c.JSON(http.StatusOK, gin.H{"message": forgotPasswordMessage})
}

// ValidateResetToken reports whether a reset link can still be used
func (h *PasswordHandler) ValidateResetToken(c *gin.Context) {
	if err := h.resetService.ValidateToken(c.Request.Context(), c.Param("token")); err != nil {
		respondPasswordError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// ResetPassword consumes a reset token and sets the new password
func (h *PasswordHandler) ResetPassword(c *gin.Context) {
	type ResetPasswordRequest struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}

	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.resetService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		respondPasswordError(c, err)
		return
	}
	h.metrics.RecordPasswordReset()

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func respondPasswordError(c *gin.Context, err error) {
	if respondFieldError(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalidResetToken):
		apierrors.BadRequest(c, err.Error())
	default:
		log.Printf("Password reset failed: %v", err)
		apierrors.InternalError(c, "")
	}
}
