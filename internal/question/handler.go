package question

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
	"github.com/grcworks/requirement-gathering-backend/internal/auditlog"
	"github.com/grcworks/requirement-gathering-backend/internal/auth"
	"github.com/grcworks/requirement-gathering-backend/middleware"
)

type Handler struct {
	service *Service
	audit   *auditlog.Service
}

func NewHandler(s *Service, audit *auditlog.Service) *Handler {
	return &Handler{service: s, audit: audit}
}

// ListQuestions returns the global pool, optionally ?domain_id= filtered.
func (h *Handler) ListQuestions(c *gin.Context) {
	var domainID uint
	if raw := c.Query("domain_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid domain_id"})
			return
		}
		domainID = uint(parsed)
	}

	questions, err := h.service.ListQuestions(domainID)
	if err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

func (h *Handler) GetQuestion(c *gin.Context) {
	id, ok := auth.ParamID(c, "id")
	if !ok {
		return
	}

	q, err := h.service.GetQuestion(id)
	if err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *Handler) CreateQuestion(c *gin.Context) {
	var input QuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	q, err := h.service.CreateQuestion(input)
	if err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (h *Handler) UpdateQuestion(c *gin.Context) {
	id, ok := auth.ParamID(c, "id")
	if !ok {
		return
	}

	var input QuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	q, err := h.service.UpdateQuestion(id, input)
	if err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *Handler) DeleteQuestion(c *gin.Context) {
	id, ok := auth.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteQuestion(id); err != nil {
		apperrors.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "question deleted"})
}

// BulkImport accepts a JSON array of rows.
func (h *Handler) BulkImport(c *gin.Context) {
	var body struct {
		Rows []BulkQuestionRow `json:"rows" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rows array is required"})
		return
	}

	h.importRows(c, body.Rows)
}

// ImportWorkbook accepts a multipart .xlsx upload under "file".
func (h *Handler) ImportWorkbook(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not open uploaded file"})
		return
	}
	defer f.Close()

	rows, err := ParseWorkbook(f)
	if err != nil {
		apperrors.JSON(c, err)
		return
	}

	h.importRows(c, rows)
}

func (h *Handler) importRows(c *gin.Context, rows []BulkQuestionRow) {
	questions, rowErrs, err := h.service.ImportRows(rows)
	if err != nil {
		if len(rowErrs) > 0 {
			c.JSON(apperrors.Status(err), gin.H{
				"error": err.Error(),
				"rows":  rowErrs,
			})
			return
		}
		apperrors.JSON(c, err)
		return
	}

	actor := auth.CurrentUser(c)
	h.audit.Record(actor.ID, nil, auditlog.ActionQuestionsImport,
		fmt.Sprintf("%d questions imported", len(questions)), middleware.GetIPFromContext(c))

	c.JSON(http.StatusCreated, gin.H{
		"imported":  len(questions),
		"questions": questions,
	})
}
