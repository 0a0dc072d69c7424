package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"onebox-backend/internal/email/domain"
	emaildto "onebox-backend/internal/email/dto"
	"onebox-backend/internal/email/repository"
	"onebox-backend/internal/email/usecase"
)

// StatusProvider reports per-account connection liveness.
type StatusProvider interface {
	ConnectionStatus() map[string]bool
}

type EmailHandler struct {
	emailUsecase usecase.EmailUsecase
	status       StatusProvider
}

func NewEmailHandler(emailUsecase usecase.EmailUsecase, status StatusProvider) *EmailHandler {
	return &EmailHandler{
		emailUsecase: emailUsecase,
		status:       status,
	}
}

func (h *EmailHandler) SearchEmails(c *gin.Context) {
	q := domain.SearchQuery{
		Query:     c.Query("q"),
		AccountID: c.Query("accountId"),
		Folder:    c.Query("folder"),
		Category:  domain.Category(c.Query("category")),
	}

	if fromStr := c.Query("from"); fromStr != "" {
		if parsed, err := strconv.Atoi(fromStr); err == nil && parsed >= 0 {
			q.From = parsed
		}
	}
	if sizeStr := c.Query("size"); sizeStr != "" {
		if parsed, err := strconv.Atoi(sizeStr); err == nil && parsed > 0 {
			q.Size = parsed
		}
	}

	if q.Category != "" && !q.Category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	}

	emails, total, err := h.emailUsecase.SearchEmails(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, emaildto.SearchResponse{
		Emails: emails,
		Total:  total,
		From:   q.From,
		Size:   q.Size,
	})
}

func (h *EmailHandler) GetEmailByID(c *gin.Context) {
	id := c.Param("id")
	email, err := h.emailUsecase.GetEmailByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, email)
}

func (h *EmailHandler) UpdateCategory(c *gin.Context) {
	id := c.Param("id")

	var req emaildto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := domain.Category(req.Category)
	if !category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	}

	if err := h.emailUsecase.UpdateCategory(c.Request.Context(), id, category); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	email, err := h.emailUsecase.GetEmailByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, email)
}

func (h *EmailHandler) GenerateReply(c *gin.Context) {
	id := c.Param("id")
	reply, err := h.emailUsecase.GenerateReply(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, emaildto.ReplyResponse{SuggestedReply: reply})
}

func (h *EmailHandler) GetConnectionStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"accounts": h.status.ConnectionStatus()})
}

func (h *EmailHandler) GetStats(c *gin.Context) {
	stats, err := h.emailUsecase.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *EmailHandler) AddContext(c *gin.Context) {
	var req emaildto.AddContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.emailUsecase.AddContext(c.Request.Context(), req.Context, req.Metadata)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}
