package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/ecohistorias/eco-api/internal/codinome"
	"github.com/ecohistorias/eco-api/internal/constants"
	apierrors "github.com/ecohistorias/eco-api/internal/errors"
	"github.com/ecohistorias/eco-api/internal/metrics"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// CodinomeHandler suggests pseudonyms. The generator is shared by every
// client; each client's retry budget lives in its session.
type CodinomeHandler struct {
	generator  *codinome.Generator
	maxRetries int
	metrics    *metrics.Metrics
}

func NewCodinomeHandler(generator *codinome.Generator, maxRetries int, m *metrics.Metrics) *CodinomeHandler {
	if maxRetries <= 0 {
		maxRetries = codinome.DefaultMaxRetries
	}
	return &CodinomeHandler{
		generator:  generator,
		maxRetries: maxRetries,
		metrics:    m,
	}
}

// Generate returns a fresh codinome for the gender in ?genero=
func (h *CodinomeHandler) Generate(c *gin.Context) {
	session := sessions.Default(c)
	gen := h.restore(session)

	name, err := gen.Generate(c.Query("genero"))
	h.save(session, gen)

	switch {
	case err == nil:
		h.metrics.RecordCodinome("ok")
		c.JSON(http.StatusOK, gin.H{
			"codinome":             name,
			"tentativas_restantes": gen.Remaining(),
		})
	case errors.Is(err, codinome.ErrRetriesExhausted):
		h.metrics.RecordCodinome("exhausted")
		apierrors.ServiceUnavailable(c, err.Error())
	case errors.Is(err, codinome.ErrExhausted):
		h.metrics.RecordCodinome("retry")
		apierrors.ServiceUnavailableWithDetails(c, "No codinome available right now, try again", gin.H{
			"tentativas_restantes": gen.Remaining(),
		})
	default:
		log.Printf("Codinome generation failed: %v", err)
		apierrors.InternalError(c, "")
	}
}

// Reset gives the caller a full retry budget again
func (h *CodinomeHandler) Reset(c *gin.Context) {
	session := sessions.Default(c)
	gen := h.restore(session)
	gen.Reset()
	h.save(session, gen)

	c.JSON(http.StatusOK, gin.H{"tentativas_restantes": gen.Remaining()})
}

// restore resumes the caller's budget; a session without one starts full.
func (h *CodinomeHandler) restore(session sessions.Session) *codinome.Session {
	remaining, ok := session.Get(constants.SessionKeyRetries).(int)
	if !ok {
		remaining = h.maxRetries
	}
	return codinome.RestoreSession(h.generator, remaining, h.maxRetries)
}

func (h *CodinomeHandler) save(session sessions.Session, gen *codinome.Session) {
	session.Set(constants.SessionKeyRetries, gen.Remaining())
	if err := session.Save(); err != nil {
		log.Printf("Failed to save codinome retry budget: %v", err)
	}
}
