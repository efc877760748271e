package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harvestlink/harvest-market/internal/middleware"
	"github.com/harvestlink/harvest-market/internal/models"
)

// ImpactStore is the storage surface the impact page needs.
type ImpactStore interface {
	Create(ctx context.Context, story *models.ImpactStory) error
	List(ctx context.Context) ([]models.ImpactStory, error)
}

type ImpactHandler struct {
	repo ImpactStore
}

func NewImpactHandler(repo ImpactStore) *ImpactHandler {
	return &ImpactHandler{repo: repo}
}

// GetStories lists all impact stories for the public page
func (h *ImpactHandler) GetStories(c *gin.Context) {
	stories, err := h.repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stories"})
		return
	}

	c.JSON(http.StatusOK, stories)
}

// CreateStory publishes a testimonial authored by the calling user
func (h *ImpactHandler) CreateStory(c *gin.Context) {
	var req models.CreateImpactStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidImpactRoles[req.Role] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be farmer or customer"})
		return
	}

	principal := middleware.Principal(c)

	story := &models.ImpactStory{
		Title:    req.Title,
		Role:     req.Role,
		Name:     req.Name,
		Location: req.Location,
		Quote:    req.Quote,
		Stats:    req.Stats,
		ImageURL: req.ImageURL,
		AuthorID: principal.ID,
	}

	if err := h.repo.Create(c.Request.Context(), story); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create story"})
		return
	}

	c.JSON(http.StatusCreated, story)
}
