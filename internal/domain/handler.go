package domain

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
	"github.com/grcworks/requirement-gathering-backend/internal/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// ListDomains is readable by every authenticated user.
func (h *Handler) ListDomains(c *gin.Context) {
	domains, err := h.service.ListDomains()
	if err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"domains": domains})
}

func (h *Handler) CreateDomain(c *gin.Context) {
	var input DomainInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	d, err := h.service.CreateDomain(input)
	if err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *Handler) UpdateDomain(c *gin.Context) {
	id, ok := auth.ParamID(c, "id")
	if !ok {
		return
	}

	var input DomainInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	d, err := h.service.UpdateDomain(id, input)
	if err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDomain(c *gin.Context) {
	id, ok := auth.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteDomain(id); err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "domain deleted"})
}
