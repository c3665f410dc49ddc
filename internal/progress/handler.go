package progress

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

// Dashboard serves progress plus recent activity for one tenant. Tenant
// access is enforced by the route middleware.
func (h *Handler) Dashboard(c *gin.Context) {
	tenantID, ok := auth.ParamID(c, "tenantId")
	if !ok {
		return
	}

	dashboard, err := h.service.GetDashboard(tenantID)
	if err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
