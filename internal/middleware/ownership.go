package middleware

import (
	"errors"

	"github.com/ecohistorias/eco-api/internal/database"
	apierrors "github.com/ecohistorias/eco-api/internal/errors"
	"github.com/ecohistorias/eco-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequireEcoAuthor loads the eco named by the :id parameter and lets only its
// author through.
func RequireEcoAuthor() gin.HandlerFunc {
	return func(c *gin.Context) {
		var eco models.Eco
		if !loadOwned(c, "Eco", &eco) {
			return
		}
		if userID, _ := GetUserID(c); eco.AuthorID != userID {
			apierrors.Forbidden(c, "Only the author can change this eco")
			return
		}

		c.Next()
	}
}

// RequireSussurroAuthor does the same for the sussurro named by :id.
func RequireSussurroAuthor() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sussurro models.Sussurro
		if !loadOwned(c, "Sussurro", &sussurro) {
			return
		}
		if userID, _ := GetUserID(c); sussurro.AuthorID != userID {
			apierrors.Forbidden(c, "Only the author can change this sussurro")
			return
		}

		c.Next()
	}
}

// loadOwned fetches the row for :id into dest, answering 400, 401 or 404 and
// returning false when the request cannot continue.
func loadOwned(c *gin.Context, kind string, dest interface{}) bool {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		apierrors.BadRequest(c, "Invalid "+kind+" ID")
		return false
	}

	if _, ok := GetUserID(c); !ok {
		apierrors.Unauthorized(c, "")
		return false
	}

	err := database.GetDB().WithContext(c.Request.Context()).Where("id = ?", id).First(dest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, kind+" not found")
		} else {
			apierrors.InternalError(c, "")
		}
		return false
	}
	return true
}
