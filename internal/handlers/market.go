package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harvestlink/harvest-market/internal/client"
	"github.com/harvestlink/harvest-market/internal/db"
	"github.com/harvestlink/harvest-market/internal/models"
)

type MarketHandler struct {
	repo   *db.MarketPriceRepository
	client *client.MarketClient
}

func NewMarketHandler(repo *db.MarketPriceRepository, client *client.MarketClient) *MarketHandler {
	return &MarketHandler{repo: repo, client: client}
}

// UploadPrice records a reference price observation (admin only)
func (h *MarketHandler) UploadPrice(c *gin.Context) {
	var req models.UploadPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be positive"})
		return
	}

	price, err := h.repo.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record price"})
		return
	}

	c.JSON(http.StatusCreated, price)
}

// GetLatestPrice returns the newest recorded price for a product name
func (h *MarketHandler) GetLatestPrice(c *gin.Context) {
	price, err := h.repo.Latest(c.Request.Context(), c.Param("productName"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch price"})
		return
	}
	if price == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No price recorded for product"})
		return
	}

	c.JSON(http.StatusOK, price)
}

// GetPrices lists recent recorded prices, optionally by category
func (h *MarketHandler) GetPrices(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	prices, err := h.repo.List(c.Request.Context(), c.Query("category"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch prices"})
		return
	}

	c.JSON(http.StatusOK, prices)
}

// GetIndiaPrices proxies live mandi prices from the Agmarknet feed,
// normalized to rupees per kilogram.
func (h *MarketHandler) GetIndiaPrices(c *gin.Context) {
	query := client.MandiQuery{
		Commodity: c.Query("commodity"),
		State:     c.Query("state"),
		Market:    c.Query("market"),
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		query.Limit = n
	}

	prices, err := h.client.FetchPrices(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch mandi prices"})
		return
	}

	c.JSON(http.StatusOK, prices)
}
