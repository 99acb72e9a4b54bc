package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"persona-studio/internal/domain"
	"persona-studio/internal/repository"
	"persona-studio/internal/service"
)

// PersonaHandler expone los personas ya entrenados.
type PersonaHandler struct {
	logger   *zap.Logger
	personas repository.PersonaRepository
	preview  *service.PreviewService
}

func NewPersonaHandler(logger *zap.Logger, personas repository.PersonaRepository, preview *service.PreviewService) *PersonaHandler {
	return &PersonaHandler{logger: logger, personas: personas, preview: preview}
}

// ListPersonas maneja GET /personas?user_id=.
func (h *PersonaHandler) ListPersonas(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	personas, err := h.personas.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list personas failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list personas"})
		return
	}
	if personas == nil {
		personas = []domain.Persona{}
	}
	c.JSON(http.StatusOK, gin.H{"personas": personas})
}

// GetPersona maneja GET /personas/:id.
func (h *PersonaHandler) GetPersona(c *gin.Context) {
	persona, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"persona": persona})
}

// Preview maneja POST /personas/:id/preview.
func (h *PersonaHandler) Preview(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	persona, ok := h.load(c)
	if !ok {
		return
	}
	reply, err := h.preview.Respond(c.Request.Context(), persona, req.Message)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("preview failed", zap.String("persona_id", persona.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate preview"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"persona_id": persona.ID, "reply": reply})
}

func (h *PersonaHandler) load(c *gin.Context) (domain.Persona, bool) {
	persona, err := h.personas.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "persona not found"})
			return domain.Persona{}, false
		}
		h.logger.Error("get persona failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load persona"})
		return domain.Persona{}, false
	}
	return persona, true
}
