package tenant

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
	"github.com/grcworks/requirement-gathering-backend/internal/auditlog"
	"github.com/grcworks/requirement-gathering-backend/internal/auth"
	"github.com/grcworks/requirement-gathering-backend/middleware"
)

type Handler struct {
	service *Service
	authSvc auth.Service
	audit   *auditlog.Service
}

func NewHandler(s *Service, authSvc auth.Service, audit *auditlog.Service) *Handler {
	return &Handler{service: s, authSvc: authSvc, audit: audit}
}

func (h *Handler) CreateTenant(c *gin.Context) {
	var input TenantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	t, err := h.service.CreateTenant(input)
	if err != nil {
		apperrors.JSON(c, err)
		return
	}

	actor := auth.CurrentUser(c)
	h.audit.Record(actor.ID, &t.ID, auditlog.ActionTenantCreated,
		"tenant "+t.Name+" created", middleware.GetIPFromContext(c))

	c.JSON(http.StatusCreated, t)
}

func (h *Handler) GetTenant(c *gin.Context) {
	id, ok := auth.ParamID(c, "id")
	if !ok {
		return
	}

	t, err := h.service.GetTenant(id)
	if err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) ListTenants(c *gin.Context) {
	tenants, err := h.service.ListTenants()
	if err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenants": tenants})
}

func (h *Handler) UpdateTenant(c *gin.Context) {
	id, ok := auth.ParamID(c, "id")
	if !ok {
		return
	}

	var input TenantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	t, err := h.service.UpdateTenant(id, input)
	if err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTenant(c *gin.Context) {
	id, ok := auth.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteTenant(id); err != nil {
		apperrors.JSON(c, err)
		return
	}

	actor := auth.CurrentUser(c)
	h.audit.Record(actor.ID, nil, auditlog.ActionTenantDeleted,
		fmt.Sprintf("tenant %d deleted with all owned data", id), middleware.GetIPFromContext(c))

	c.JSON(http.StatusOK, gin.H{"message": "tenant deleted"})
}

// ListTenantUsers lists the accounts bound to a tenant.
func (h *Handler) ListTenantUsers(c *gin.Context) {
	id, ok := auth.ParamID(c, "id")
	if !ok {
		return
	}

	if _, err := h.service.GetTenant(id); err != nil {
		apperrors.JSON(c, err)
		return
	}

	users, err := h.authSvc.ListTenantUsers(id)
	if err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
