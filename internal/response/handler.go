package response

import (
	"fmt"
	"io"
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

// List serves a thread oldest-first.
func (h *Handler) List(c *gin.Context) {
	id, ok := auth.ParamID(c, "id")
	if !ok {
		return
	}

	views, err := h.service.ListResponses(id, auth.CurrentUser(c))
	if err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"responses": views})
}

// Post appends a response to a thread.
func (h *Handler) Post(c *gin.Context) {
	id, ok := auth.ParamID(c, "id")
	if !ok {
		return
	}

	var input ContentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	view, err := h.service.PostResponse(id, input.Content, auth.CurrentUser(c), middleware.GetIPFromContext(c))
	if err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Update edits a response (author or admin).
func (h *Handler) Update(c *gin.Context) {
	id, ok := auth.ParamID(c, "id")
	if !ok {
		return
	}

	var input ContentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	view, err := h.service.UpdateResponse(id, input.Content, auth.CurrentUser(c), middleware.GetIPFromContext(c))
	if err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Delete removes a response (author or admin).
func (h *Handler) Delete(c *gin.Context) {
	id, ok := auth.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteResponse(id, auth.CurrentUser(c), middleware.GetIPFromContext(c)); err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "response deleted"})
}

// Attach stores a multipart file against a response.
func (h *Handler) Attach(c *gin.Context) {
	id, ok := auth.ParamID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > MaxAttachmentSize {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": fmt.Sprintf("file exceeds the %d MiB limit", MaxAttachmentSize>>20)})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not open uploaded file"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	attachment, err := h.service.AttachFile(id, fileHeader.Filename, contentType, data,
		auth.CurrentUser(c), middleware.GetIPFromContext(c))
	if err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusCreated, attachment)
}

// Download streams an attachment after re-checking thread access.
func (h *Handler) Download(c *gin.Context) {
	id, ok := auth.ParamID(c, "id")
	if !ok {
		return
	}

	attachment, data, err := h.service.DownloadAttachment(id, auth.CurrentUser(c))
	if err != nil {
		apperrors.JSON(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.FileName))
	c.Data(http.StatusOK, attachment.ContentType, data)
}
