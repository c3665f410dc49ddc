package notification

import (
	"net/http"
	"strconv"

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

// List serves the current user's bell, newest first, with the unread count.
func (h *Handler) List(c *gin.Context) {
	user := auth.CurrentUser(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	rows, unread, err := h.service.List(user.ID, limit)
	if err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"notifications": rows,
		"unread":        unread,
	})
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, ok := auth.ParamID(c, "id")
	if !ok {
		return
	}

	user := auth.CurrentUser(c)
	if err := h.service.MarkRead(id, user.ID); err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification marked read"})
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	user := auth.CurrentUser(c)
	if err := h.service.MarkAllRead(user.ID); err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all notifications marked read"})
}

// RegisterDevice stores an FCM push token for the current user.
func (h *Handler) RegisterDevice(c *gin.Context) {
	var input DeviceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	user := auth.CurrentUser(c)
	if err := h.service.RegisterDevice(user.ID, input.Token, input.Platform); err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "device registered"})
}

func (h *Handler) UnregisterDevice(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	user := auth.CurrentUser(c)
	if err := h.service.UnregisterDevice(user.ID, token); err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "device unregistered"})
}
