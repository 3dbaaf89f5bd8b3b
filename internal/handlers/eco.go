package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ecohistorias/eco-api/internal/dto"
	apierrors "github.com/ecohistorias/eco-api/internal/errors"
	"github.com/ecohistorias/eco-api/internal/metrics"
	"github.com/ecohistorias/eco-api/internal/middleware"
	"github.com/ecohistorias/eco-api/internal/services"
	"github.com/ecohistorias/eco-api/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EcoHandler struct {
	ecoService *services.EcoService
	metrics    *metrics.Metrics
}

func NewEcoHandler(ecoService *services.EcoService, m *metrics.Metrics) *EcoHandler {
	return &EcoHandler{
		ecoService: ecoService,
		metrics:    m,
	}
}

// ListEcos returns the feed, newest first, optionally filtered by tag_id
func (h *EcoHandler) ListEcos(c *gin.Context) {
	tagID := c.Query("tag_id")
	if tagID != "" {
		if _, err := uuid.Parse(tagID); err != nil {
			apierrors.BadRequest(c, "Invalid tag_id")
			return
		}
	}

	params := utils.GetPaginationParams(c)
	views, total, err := h.ecoService.ListFeed(c.Request.Context(), services.ListFeedInput{
		TagID:  tagID,
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		respondEcoError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEcoListResponse(views, params, total))
}

// GetEco returns one eco with its tags and sussurros
func (h *EcoHandler) GetEco(c *gin.Context) {
	id, ok := uuidParam(c, "Invalid eco ID")
	if !ok {
		return
	}

	detail, err := h.ecoService.GetEco(c.Request.Context(), id)
	if err != nil {
		respondEcoError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEcoDetailDTO(*detail))
}

// CreateEco publishes an eco for the current user
func (h *EcoHandler) CreateEco(c *gin.Context) {
	type CreateEcoRequest struct {
		Thread1 string   `json:"thread_1"`
		Thread2 *string  `json:"thread_2"`
		Thread3 *string  `json:"thread_3"`
		TagIDs  []string `json:"tag_ids"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req CreateEcoRequest
	if !bindJSON(c, &req) {
		return
	}

	view, err := h.ecoService.CreateEco(c.Request.Context(), services.CreateEcoInput{
		AuthorID: userID,
		Thread1:  req.Thread1,
		Thread2:  req.Thread2,
		Thread3:  req.Thread3,
		TagIDs:   req.TagIDs,
	})
	if err != nil {
		respondEcoError(c, err)
		return
	}
	h.metrics.RecordEco()

	c.JSON(http.StatusCreated, dto.ToEcoDTO(*view))
}

// UpdateEco changes the threads of an eco. Any tag_ids key in the body,
// even null, is refused.
func (h *EcoHandler) UpdateEco(c *gin.Context) {
	type UpdateEcoRequest struct {
		Thread1 *string         `json:"thread_1"`
		Thread2 *string         `json:"thread_2"`
		Thread3 *string         `json:"thread_3"`
		TagIDs  json.RawMessage `json:"tag_ids"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	id, ok := uuidParam(c, "Invalid eco ID")
	if !ok {
		return
	}

	var req UpdateEcoRequest
	if !bindJSON(c, &req) {
		return
	}

	input := services.UpdateEcoInput{
		EcoID:   id,
		ActorID: userID,
		Thread1: req.Thread1,
		Thread2: req.Thread2,
		Thread3: req.Thread3,
	}
	if len(req.TagIDs) > 0 {
		// Any tag_ids key, null included, is refused by the service.
		input.TagIDs = &[]string{}
	}

	view, err := h.ecoService.UpdateEco(c.Request.Context(), input)
	if err != nil {
		respondEcoError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEcoDTO(*view))
}

// DeleteEco removes an eco with its tag links and sussurros
func (h *EcoHandler) DeleteEco(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	id, ok := uuidParam(c, "Invalid eco ID")
	if !ok {
		return
	}

	if err := h.ecoService.DeleteEco(c.Request.Context(), id, userID); err != nil {
		respondEcoError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func uuidParam(c *gin.Context, message string) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		apierrors.BadRequest(c, message)
		return "", false
	}
	return id, true
}

func respondEcoError(c *gin.Context, err error) {
	if respondFieldError(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrEcoNotFound):
		apierrors.NotFound(c, "Eco not found")
	case errors.Is(err, services.ErrNotEcoAuthor):
		apierrors.Forbidden(c, err.Error())
	default:
		log.Printf("Eco request failed: %v", err)
		apierrors.InternalError(c, "")
	}
}
