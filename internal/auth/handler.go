package auth

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
	"github.com/grcworks/requirement-gathering-backend/internal/auditlog"
)

type Handler struct {
	service Service
	audit   *auditlog.Service
}

func NewHandler(s Service, audit *auditlog.Service) *Handler {
	return &Handler{service: s, audit: audit}
}

// clientIP reads the address stored by the audit middleware, falling back
// to gin's own resolution.
func clientIP(c *gin.Context) string {
	if ip := c.GetString("client_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// Login issues a token pair for valid credentials.
func (h *Handler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	tokens, user, err := h.service.Login(input)
	if err != nil {
		apperrors.JSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tokens": tokens,
		"user":   toUserResponse(*user),
	})
}

// Refresh exchanges a refresh token for a new access token.
func (h *Handler) Refresh(c *gin.Context) {
	var body struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken is required"})
		return
	}

	access, err := h.service.Refresh(body.RefreshToken)
	if err != nil {
		apperrors.JSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accessToken": access})
}

// ForgotPassword sends a reset link. Always answers 200 so the endpoint
// cannot be used to probe which emails exist.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var body struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid email is required"})
		return
	}

	if err := h.service.RequestPasswordReset(body.Email); err != nil {
		// Do not reveal whether the account exists.
		log.Printf("⚠️ Password reset request failed: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "if the account exists, a reset link has been sent"})
}

// ResetPassword consumes a reset token.
func (h *Handler) ResetPassword(c *gin.Context) {
	var body struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token and new_password are required"})
		return
	}

	if err := h.service.ResetPassword(body.Token, body.NewPassword); err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// Me returns the authenticated principal.
func (h *Handler) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	c.JSON(http.StatusOK, toUserResponse(*user))
}

// CreateUser creates an account (admin only; route-gated).
func (h *Handler) CreateUser(c *gin.Context) {
	var input CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	resp, err := h.service.CreateUser(input)
	if err != nil {
		apperrors.JSON(c, err)
		return
	}

	actor := CurrentUser(c)
	h.audit.Record(actor.ID, resp.TenantID, auditlog.ActionUserCreated,
		"user "+resp.Username+" created with role "+resp.Role, clientIP(c))

	c.JSON(http.StatusCreated, resp)
}

// ListUsers lists every account (admin only; route-gated).
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers()
	if err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// UpdateUserStatus activates or deactivates an account.
func (h *Handler) UpdateUserStatus(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	if err := h.service.UpdateUserStatus(id, body.Status); err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status updated"})
}
