package assignment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
	"github.com/grcworks/requirement-gathering-backend/internal/auth"
	"github.com/grcworks/requirement-gathering-backend/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// Assign links a question to a tenant (admin/consultant).
func (h *Handler) Assign(c *gin.Context) {
	var input AssignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id and question_id are required"})
		return
	}

	actor := auth.CurrentUser(c)
	tq, err := h.service.AssignQuestion(input.TenantID, input.QuestionID, actor, middleware.GetIPFromContext(c))
	if err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusCreated, toView(*tq))
}

// AssignDefaults assigns all required pool questions to the tenant.
func (h *Handler) AssignDefaults(c *gin.Context) {
	tenantID, ok := auth.ParamID(c, "id")
	if !ok {
		return
	}

	actor := auth.CurrentUser(c)
	created, err := h.service.AssignDefaults(tenantID, actor, middleware.GetIPFromContext(c))
	if err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assigned": created})
}

// ListForTenant serves the tenant question list; ?sort=status re-orders
// open work first.
func (h *Handler) ListForTenant(c *gin.Context) {
	tenantID, ok := auth.ParamID(c, "tenantId")
	if !ok {
		return
	}

	views, err := h.service.ListTenantQuestions(tenantID, c.Query("sort") == "status")
	if err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": views})
}

// SetStatus moves a thread between Unanswered / In Progress / Answered.
func (h *Handler) SetStatus(c *gin.Context) {
	id, ok := auth.ParamID(c, "id")
	if !ok {
		return
	}

	var input StatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	actor := auth.CurrentUser(c)
	tq, err := h.service.SetStatus(id, input.Status, actor, middleware.GetIPFromContext(c))
	if err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, toView(*tq))
}

// Unassign removes an assignment and its thread (admin).
func (h *Handler) Unassign(c *gin.Context) {
	id, ok := auth.ParamID(c, "id")
	if !ok {
		return
	}

	actor := auth.CurrentUser(c)
	if err := h.service.Unassign(id, actor, middleware.GetIPFromContext(c)); err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "question unassigned"})
}
