package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harvestlink/harvest-market/internal/middleware"
	"github.com/harvestlink/harvest-market/internal/models"
)

// ContactStore is the storage surface the contact inbox needs.
type ContactStore interface {
	Create(ctx context.Context, m *models.ContactMessage) error
	List(ctx context.Context, filter models.ContactFilter) ([]models.ContactMessage, error)
	GetByID(ctx context.Context, id string) (*models.ContactMessage, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type ContactHandler struct {
	repo ContactStore
}

func NewContactHandler(repo ContactStore) *ContactHandler {
	return &ContactHandler{repo: repo}
}

// CreateContact accepts a public contact form submission. When the caller is
// logged in, the message is stamped with their id and role.
func (h *ContactHandler) CreateContact(c *gin.Context) {
	var req models.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	principal := middleware.Principal(c)

	role := req.Role
	if principal.ID != "" {
		role = principal.Role
	}
	// A self-declared role is never trusted past the known sender set.
	if !models.ValidContactRoles[role] {
		role = models.RoleGuest
	}

	message := &models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
		Role:    role,
		UserID:  principal.ID,
		Status:  models.ContactStatusNew,
	}

	if err := h.repo.Create(c.Request.Context(), message); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit message"})
		return
	}

	c.JSON(http.StatusCreated, message)
}

// GetContacts lists the inbox for admins, with ?role=, ?status= and ?q= filters
func (h *ContactHandler) GetContacts(c *gin.Context) {
	filter := models.ContactFilter{
		Role:   c.Query("role"),
		Status: c.Query("status"),
		Query:  c.Query("q"),
	}
	if filter.Status != "" && !models.ValidContactStatuses[filter.Status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
		return
	}

	messages, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, messages)
}

// GetContact returns one inbox message
func (h *ContactHandler) GetContact(c *gin.Context) {
	message, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch message"})
		return
	}
	if message == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}

	c.JSON(http.StatusOK, message)
}

// UpdateContactStatus moves a message through the triage states
func (h *ContactHandler) UpdateContactStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidContactStatuses[req.Status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	message, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch message"})
		return
	}
	if message == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}

	if err := h.repo.UpdateStatus(c.Request.Context(), message.ID, req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update message"})
		return
	}

	message.Status = req.Status
	c.JSON(http.StatusOK, message)
}
