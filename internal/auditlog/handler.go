package auditlog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// ListLogs serves the admin audit view with optional filters:
// ?tenant_id= &action= &limit= &offset=
func (h *Handler) ListLogs(c *gin.Context) {
	tenantID, _ := strconv.ParseUint(c.Query("tenant_id"), 10, 32)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	action := c.Query("action")

	entries, total, err := h.service.List(uint(tenantID), action, limit, offset)
	if err != nil {
		apperrors.JSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":   entries,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
