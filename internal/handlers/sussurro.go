package handlers

import (
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
)

type SussurroHandler struct {
	sussurroService *services.SussurroService
	metrics         *metrics.Metrics
}

func NewSussurroHandler(sussurroService *services.SussurroService, m *metrics.Metrics) *SussurroHandler {
	return &SussurroHandler{
		sussurroService: sussurroService,
		metrics:         m,
	}
}

// ListSussurros returns the sussurros of one eco (eco_id) or a page of all of them
func (h *SussurroHandler) ListSussurros(c *gin.Context) {
	ecoID := c.Query("eco_id")
	params := utils.GetPaginationParams(c)

	rows, total, err := h.sussurroService.ListSussurros(c.Request.Context(), services.ListSussurrosInput{
		EcoID:  ecoID,
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		respondSussurroError(c, err)
		return
	}

	resp := dto.SussurroListResponse{Sussurros: dto.ToSussurroRowDTOs(rows)}
	if ecoID == "" {
		pagination := utils.NewPaginationResponse(params, total)
		resp.Pagination = &pagination
	}
	c.JSON(http.StatusOK, resp)
}

// CreateSussurro replies to an eco
func (h *SussurroHandler) CreateSussurro(c *gin.Context) {
	type CreateSussurroRequest struct {
		EcoID   string `json:"eco_id" binding:"required"`
		Content string `json:"conteudo"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req CreateSussurroRequest
	if !bindJSON(c, &req) {
		return
	}

	sussurro, err := h.sussurroService.CreateSussurro(c.Request.Context(), services.CreateSussurroInput{
		EcoID:    req.EcoID,
		AuthorID: userID,
		Content:  req.Content,
	})
	if err != nil {
		respondSussurroError(c, err)
		return
	}
	h.metrics.RecordSussurro()

	c.JSON(http.StatusCreated, dto.ToSussurroDTO(*sussurro))
}

// UpdateSussurro replaces the text of the caller's sussurro
func (h *SussurroHandler) UpdateSussurro(c *gin.Context) {
	type UpdateSussurroRequest struct {
		Content string `json:"conteudo"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	id, ok := uuidParam(c, "Invalid sussurro ID")
	if !ok {
		return
	}

	var req UpdateSussurroRequest
	if !bindJSON(c, &req) {
		return
	}

	sussurro, err := h.sussurroService.UpdateSussurro(c.Request.Context(), id, userID, req.Content)
	if err != nil {
		respondSussurroError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSussurroDTO(*sussurro))
}

// DeleteSussurro removes the caller's sussurro
func (h *SussurroHandler) DeleteSussurro(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	id, ok := uuidParam(c, "Invalid sussurro ID")
	if !ok {
		return
	}

	if err := h.sussurroService.DeleteSussurro(c.Request.Context(), id, userID); err != nil {
		respondSussurroError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondSussurroError(c *gin.Context, err error) {
	if respondFieldError(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrEcoNotFound):
		apierrors.NotFound(c, "Eco not found")
	case errors.Is(err, services.ErrSussurroNotFound):
		apierrors.NotFound(c, "Sussurro not found")
	case errors.Is(err, services.ErrNotSussurroAuthor):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrSussurroExists):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrSussurroLimit):
		apierrors.BadRequest(c, err.Error())
	default:
		log.Printf("Sussurro request failed: %v", err)
		apierrors.InternalError(c, "")
	}
}
