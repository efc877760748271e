package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harvestlink/harvest-market/internal/db"
	"github.com/harvestlink/harvest-market/internal/middleware"
	"github.com/harvestlink/harvest-market/internal/models"
)

type ProductHandler struct {
	repo   *db.ProductRepository
	cached *db.CachedProductRepository
}

func NewProductHandler(repo *db.ProductRepository, cached *db.CachedProductRepository) *ProductHandler {
	return &ProductHandler{repo: repo, cached: cached}
}

// GetProducts lists the public catalog. ?upcoming=true narrows to produce not
// yet harvested, ?farmer_id= narrows to a single farm.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	filter := models.ProductFilter{FarmerID: c.Query("farmer_id")}
	if raw := c.Query("upcoming"); raw != "" {
		upcoming, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "upcoming must be true or false"})
			return
		}
		filter.Upcoming = &upcoming
	}

	products, err := h.cached.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetProduct returns a single catalog entry
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.cached.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// GetMyProducts lists the calling farmer's own catalog
func (h *ProductHandler) GetMyProducts(c *gin.Context) {
	principal := middleware.Principal(c)

	products, err := h.cached.List(c.Request.Context(), models.ProductFilter{FarmerID: principal.ID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

// CreateProduct adds a catalog entry owned by the calling farmer
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be positive"})
		return
	}

	principal := middleware.Principal(c)

	product, err := h.repo.Create(c.Request.Context(), req, principal.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	h.cached.Invalidate(c.Request.Context(), product.ID, product.FarmerID)
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct applies a partial update. Only the owning farmer or an admin
// may modify an entry, and ownership itself never changes.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	principal := middleware.Principal(c)
	if product.FarmerID != principal.ID && !principal.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your product"})
		return
	}

	applyProductUpdate(product, req)
	if product.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be positive"})
		return
	}

	if err := h.repo.Update(c.Request.Context(), product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	h.cached.Invalidate(c.Request.Context(), product.ID, product.FarmerID)
	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a catalog entry (owning farmer or admin)
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	product, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	principal := middleware.Principal(c)
	if product.FarmerID != principal.ID && !principal.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your product"})
		return
	}

	if err := h.repo.Delete(c.Request.Context(), product.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	h.cached.Invalidate(c.Request.Context(), product.ID, product.FarmerID)
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

func applyProductUpdate(p *models.Product, req models.UpdateProductRequest) {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Quantity != nil {
		p.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
	}
	if req.Offer != nil {
		p.Offer = *req.Offer
	}
	if req.ImageURL != nil {
		p.ImageURL = *req.ImageURL
	}
	if req.IsUpcoming != nil {
		p.IsUpcoming = *req.IsUpcoming
	}
	if req.AvailableDate != nil {
		p.AvailableDate = req.AvailableDate
	}
}
