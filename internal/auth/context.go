package auth

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ContextUserKey is where the auth middleware stores the resolved principal.
const ContextUserKey = "user"

// CurrentUser returns the authenticated principal from the request context,
// or nil when the request is unauthenticated.
func CurrentUser(c *gin.Context) *User {
	val, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := val.(User)
	if !ok {
		return nil
	}
	return &user
}

// ParamID parses a numeric path parameter. On failure it writes the 400
// response itself and returns ok=false.
func ParamID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " parameter"})
		return 0, false
	}
	return uint(id), true
}
