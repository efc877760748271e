package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvestlink/harvest-market/internal/handlers"
	"github.com/harvestlink/harvest-market/internal/models"
	"github.com/harvestlink/harvest-market/internal/service"
)

type stubNegotiationStore struct {
	threads     map[string]*models.Negotiation
	closedPrice *float64
}

func (s *stubNegotiationStore) Create(ctx context.Context, n *models.Negotiation) error {
	s.threads[n.ID] = n
	return nil
}

func (s *stubNegotiationStore) GetByID(ctx context.Context, id string) (*models.Negotiation, error) {
	return s.threads[id], nil
}

func (s *stubNegotiationStore) FindOpen(ctx context.Context, productID, customerID string) (*models.Negotiation, error) {
	for _, n := range s.threads {
		if n.ProductID == productID && n.CustomerID == customerID && n.Status == models.NegotiationStatusOpen {
			return n, nil
		}
	}
	return nil, nil
}

func (s *stubNegotiationStore) ListOpenByProduct(ctx context.Context, productID string) ([]models.Negotiation, error) {
	out := []models.Negotiation{}
	for _, n := range s.threads {
		if n.ProductID == productID && n.Status == models.NegotiationStatusOpen {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (s *stubNegotiationStore) AppendMessage(ctx context.Context, negotiationID string, msg models.NegotiationMessage) error {
	return nil
}

func (s *stubNegotiationStore) Close(ctx context.Context, id, status string, finalPrice *float64) error {
	s.closedPrice = finalPrice
	return nil
}

func negotiationRouter(store *stubNegotiationStore, caller models.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := handlers.NewNegotiationHandler(service.NewNegotiationService(nil, store, stubPublisher{}))

	r := gin.New()
	r.Use(asPrincipal(caller.ID, caller.Role))
	r.POST("/api/negotiations/:id/accept", handler.AcceptNegotiation)
	r.POST("/api/negotiations/:id/reject", handler.RejectNegotiation)
	return r
}

func openNegotiation() *models.Negotiation {
	return &models.Negotiation{
		ID:         "n1",
		ProductID:  "p1",
		FarmerID:   "farmer-1",
		CustomerID: "cust-1",
		Status:     models.NegotiationStatusOpen,
		Messages:   []models.NegotiationMessage{},
	}
}

func TestNegotiationHandler_Accept_EmptyBody(t *testing.T) {
	store := &stubNegotiationStore{threads: map[string]*models.Negotiation{"n1": openNegotiation()}}
	r := negotiationRouter(store, models.Principal{ID: "farmer-1", Role: models.RoleFarmer})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/negotiations/n1/accept", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, store.closedPrice)
}

func TestNegotiationHandler_Accept_UnknownLengthBody(t *testing.T) {
	store := &stubNegotiationStore{threads: map[string]*models.Negotiation{"n1": openNegotiation()}}
	r := negotiationRouter(store, models.Principal{ID: "farmer-1", Role: models.RoleFarmer})

	// A reader httptest cannot size leaves ContentLength at -1, like a
	// chunked request. The supplied price must still be honored.
	body := io.MultiReader(strings.NewReader(`{"final_price":9.5}`))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/negotiations/n1/accept", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, store.closedPrice)
	assert.Equal(t, 9.5, *store.closedPrice)

	var got models.Negotiation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotNil(t, got.FinalPrice)
	assert.Equal(t, 9.5, *got.FinalPrice)
}

func TestNegotiationHandler_Accept_MalformedBody(t *testing.T) {
	store := &stubNegotiationStore{threads: map[string]*models.Negotiation{"n1": openNegotiation()}}
	r := negotiationRouter(store, models.Principal{ID: "farmer-1", Role: models.RoleFarmer})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/negotiations/n1/accept", bytes.NewBufferString(`{"final_price":`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNegotiationHandler_Reject_CustomerForbidden(t *testing.T) {
	store := &stubNegotiationStore{threads: map[string]*models.Negotiation{"n1": openNegotiation()}}
	r := negotiationRouter(store, models.Principal{ID: "cust-1", Role: models.RoleCustomer})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/negotiations/n1/reject", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}
