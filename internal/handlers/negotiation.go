package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harvestlink/harvest-market/internal/middleware"
	"github.com/harvestlink/harvest-market/internal/models"
	"github.com/harvestlink/harvest-market/internal/service"
)

type NegotiationHandler struct {
	svc *service.NegotiationService
}

func NewNegotiationHandler(svc *service.NegotiationService) *NegotiationHandler {
	return &NegotiationHandler{svc: svc}
}

// StartNegotiation opens (or returns the existing open) thread on a product
func (h *NegotiationHandler) StartNegotiation(c *gin.Context) {
	negotiation, err := h.svc.StartNegotiation(c.Request.Context(), middleware.Principal(c), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, negotiation)
}

// PostMessage appends a message or counteroffer to a thread
func (h *NegotiationHandler) PostMessage(c *gin.Context) {
	var req models.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	negotiation, err := h.svc.PostMessage(c.Request.Context(), middleware.Principal(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, negotiation)
}

// AcceptNegotiation settles a thread at a final price (farmer only)
func (h *NegotiationHandler) AcceptNegotiation(c *gin.Context) {
	// An empty body is fine, the final price then resolves from the thread.
	// ContentLength can be -1 on chunked requests, so decode and treat only
	// EOF as "no body".
	var req models.AcceptNegotiationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	negotiation, err := h.svc.AcceptNegotiation(c.Request.Context(), middleware.Principal(c), c.Param("id"), req.FinalPrice)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, negotiation)
}

// RejectNegotiation terminally declines a thread (farmer only)
func (h *NegotiationHandler) RejectNegotiation(c *gin.Context) {
	negotiation, err := h.svc.RejectNegotiation(c.Request.Context(), middleware.Principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, negotiation)
}

// GetNegotiationsByProduct lists a product's open threads visible to the caller
func (h *NegotiationHandler) GetNegotiationsByProduct(c *gin.Context) {
	negotiations, err := h.svc.ListNegotiationsByProduct(c.Request.Context(), middleware.Principal(c), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, negotiations)
}
