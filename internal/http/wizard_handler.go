package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"persona-studio/internal/domain"
	"persona-studio/internal/service"
	"persona-studio/internal/wizard"
)

// WizardHandler expone el wizard de creacion de personas.
type WizardHandler struct {
	logger  *zap.Logger
	wizards *service.WizardService
	catalog wizard.Catalog
}

func NewWizardHandler(logger *zap.Logger, wizards *service.WizardService, catalog *wizard.Catalog) *WizardHandler {
	h := &WizardHandler{logger: logger, wizards: wizards}
	if catalog != nil {
		h.catalog = *catalog
	} else {
		h.catalog = wizard.DefaultCatalog()
	}
	return h
}

// ListTemplates maneja GET /templates.
func (h *WizardHandler) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": h.catalog.Templates})
}

// StartWizard maneja POST /wizards.
func (h *WizardHandler) StartWizard(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid start wizard request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	id, ctrl, err := h.wizards.Start(req.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"wizard_id": id, "wizard": ctrl.Snapshot()})
}

// GetWizard maneja GET /wizards/:id.
func (h *WizardHandler) GetWizard(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	h.writeSnapshot(c, http.StatusOK, ctrl)
}

// DiscardWizard maneja DELETE /wizards/:id.
func (h *WizardHandler) DiscardWizard(c *gin.Context) {
	if err := h.wizards.Discard(c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SelectTemplate maneja POST /wizards/:id/template.
func (h *WizardHandler) SelectTemplate(c *gin.Context) {
	var req struct {
		TemplateID string `json:"template_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	if err := ctrl.SelectTemplate(req.TemplateID); err != nil {
		h.writeError(c, err)
		return
	}
	h.writeSnapshot(c, http.StatusOK, ctrl)
}

// Advance maneja POST /wizards/:id/advance. Devuelve 422 si el paso no valida.
func (h *WizardHandler) Advance(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	errs, err := ctrl.Advance()
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !errs.Empty() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs, "wizard": ctrl.Snapshot()})
		return
	}
	h.writeSnapshot(c, http.StatusOK, ctrl)
}

// Retreat maneja POST /wizards/:id/retreat.
func (h *WizardHandler) Retreat(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	if err := ctrl.Retreat(); err != nil {
		h.writeError(c, err)
		return
	}
	h.writeSnapshot(c, http.StatusOK, ctrl)
}

// UpdateField maneja PATCH /wizards/:id/fields.
func (h *WizardHandler) UpdateField(c *gin.Context) {
	var req struct {
		Field string `json:"field" binding:"required"`
		Value any    `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field and value are required"})
		return
	}
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	if err := ctrl.UpdateField(req.Field, req.Value); err != nil {
		h.writeError(c, err)
		return
	}
	h.writeSnapshot(c, http.StatusOK, ctrl)
}

// AddKnowledge maneja POST /wizards/:id/knowledge.
func (h *WizardHandler) AddKnowledge(c *gin.Context) {
	var req struct {
		Kind  string `json:"kind" binding:"required"`
		Input string `json:"input"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	item, err := wizard.NewKnowledgeItem(domain.KnowledgeKind(strings.TrimSpace(req.Kind)), req.Input, time.Now())
	if err != nil {
		h.writeError(c, err)
		return
	}
	item, err = ctrl.AddKnowledgeItem(item)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item, "wizard": ctrl.Snapshot()})
}

// RemoveKnowledge maneja DELETE /wizards/:id/knowledge/:itemID.
func (h *WizardHandler) RemoveKnowledge(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	if err := ctrl.RemoveKnowledgeItem(c.Param("itemID")); err != nil {
		h.writeError(c, err)
		return
	}
	h.writeSnapshot(c, http.StatusOK, ctrl)
}

// SetTrainingConfig maneja PUT /wizards/:id/training-config.
func (h *WizardHandler) SetTrainingConfig(c *gin.Context) {
	var req domain.TrainingConfig
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	if _, err := ctrl.SetTrainingConfig(req); err != nil {
		h.writeError(c, err)
		return
	}
	h.writeSnapshot(c, http.StatusOK, ctrl)
}

// SavePreset maneja POST /wizards/:id/presets.
func (h *WizardHandler) SavePreset(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	preset, err := ctrl.SavePreset(req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"preset": preset})
}

// DeletePreset maneja DELETE /wizards/:id/presets/:presetID.
func (h *WizardHandler) DeletePreset(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	if err := ctrl.DeletePreset(c.Param("presetID")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ApplyPreset maneja POST /wizards/:id/presets/:presetID/apply.
func (h *WizardHandler) ApplyPreset(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	if _, err := ctrl.ApplyPreset(c.Param("presetID")); err != nil {
		h.writeError(c, err)
		return
	}
	h.writeSnapshot(c, http.StatusOK, ctrl)
}

// Commit maneja POST /wizards/:id/commit y arranca el entrenamiento simulado.
func (h *WizardHandler) Commit(c *gin.Context) {
	ctrl, err := h.wizards.Commit(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeSnapshot(c, http.StatusAccepted, ctrl)
}

func (h *WizardHandler) controller(c *gin.Context) (*wizard.Controller, bool) {
	ctrl, err := h.wizards.Get(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}
	return ctrl, true
}

func (h *WizardHandler) writeSnapshot(c *gin.Context, status int, ctrl *wizard.Controller) {
	c.JSON(status, gin.H{"wizard_id": c.Param("id"), "wizard": ctrl.Snapshot()})
}

func (h *WizardHandler) writeError(c *gin.Context, err error) {
	status := wizardErrorStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("wizard operation failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func wizardErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrWizardNotFound),
		errors.Is(err, wizard.ErrUnknownTemplate),
		errors.Is(err, wizard.ErrKnowledgeItemNotFound),
		errors.Is(err, wizard.ErrUnknownPreset):
		return http.StatusNotFound
	case errors.Is(err, service.ErrMissingUserID),
		errors.Is(err, wizard.ErrUnknownField),
		errors.Is(err, wizard.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, wizard.ErrCommitNotAllowed),
		errors.Is(err, wizard.ErrTrainingInProgress),
		errors.Is(err, wizard.ErrWizardClosed),
		errors.Is(err, wizard.ErrSystemPreset),
		errors.Is(err, wizard.ErrDuplicateKnowledgeItem):
		return http.StatusConflict
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
