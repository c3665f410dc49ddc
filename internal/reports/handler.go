package reports

import (
	"fmt"
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

// TenantProgress serves the downloadable progress report:
// ?tenant_id= &format=csv|excel|pdf (csv by default).
func (h *Handler) TenantProgress(c *gin.Context) {
	tenantID, err := strconv.ParseUint(c.Query("tenant_id"), 10, 32)
	if err != nil || tenantID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id is required"})
		return
	}

	report, err := h.service.TenantProgressReport(uint(tenantID), c.Query("format"))
	if err != nil {
		apperrors.JSON(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName))
	c.Data(http.StatusOK, report.ContentType, report.Data)
}
