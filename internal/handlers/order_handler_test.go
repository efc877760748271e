package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvestlink/harvest-market/internal/handlers"
	"github.com/harvestlink/harvest-market/internal/models"
	"github.com/harvestlink/harvest-market/internal/service"
)

type stubCatalog struct {
	products map[string]*models.Product
}

func (s *stubCatalog) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return s.products[id], nil
}

type stubOrderStore struct {
	orders  map[string]*models.Order
	created *models.Order
}

func (s *stubOrderStore) Create(ctx context.Context, order *models.Order) error {
	s.created = order
	return nil
}

func (s *stubOrderStore) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return s.orders[id], nil
}

func (s *stubOrderStore) ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	out := []models.Order{}
	for _, o := range s.orders {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubOrderStore) ListByFarmer(ctx context.Context, farmerID string) ([]models.Order, error) {
	out := []models.Order{}
	for _, o := range s.orders {
		if o.FarmerID == farmerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubOrderStore) AppendTracking(ctx context.Context, orderID string, entry models.TrackingEntry) error {
	return nil
}

type stubPublisher struct{}

func (stubPublisher) PublishOrderCreated(models.OrderCreatedEvent) error { return nil }
func (stubPublisher) PublishOrderStatus(models.OrderStatusEvent) error   { return nil }
func (stubPublisher) PublishNegotiation(models.NegotiationEvent) error   { return nil }

func asPrincipal(id, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", id)
		c.Set("role", role)
	}
}

func orderRouter(store *stubOrderStore, caller models.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)

	catalog := &stubCatalog{products: map[string]*models.Product{
		"p1": {ID: "p1", Name: "Tomatoes", Price: 10, FarmerID: "farmer-1"},
	}}
	handler := handlers.NewOrderHandler(service.NewOrderService(catalog, store, stubPublisher{}))

	r := gin.New()
	r.Use(asPrincipal(caller.ID, caller.Role))
	r.POST("/api/orders", handler.CreateOrder)
	r.GET("/api/orders/:id", handler.GetOrder)
	r.PATCH("/api/orders/:id/status", handler.UpdateOrderStatus)
	return r
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	store := &stubOrderStore{orders: map[string]*models.Order{}}
	r := orderRouter(store, models.Principal{ID: "cust-1", Role: models.RoleCustomer})

	body := `{"items":[{"product_id":"p1","quantity":3}],"shipping_price":2}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var got models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 32.00, got.TotalPrice)
	assert.Equal(t, "cust-1", got.CustomerID)
	require.NotNil(t, store.created)
}

func TestOrderHandler_CreateOrder_UnknownProduct(t *testing.T) {
	store := &stubOrderStore{orders: map[string]*models.Order{}}
	r := orderRouter(store, models.Principal{ID: "cust-1", Role: models.RoleCustomer})

	body := `{"items":[{"product_id":"missing","quantity":1}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderHandler_GetOrder_Forbidden(t *testing.T) {
	store := &stubOrderStore{orders: map[string]*models.Order{
		"o1": {ID: "o1", CustomerID: "cust-1"},
	}}
	r := orderRouter(store, models.Principal{ID: "cust-2", Role: models.RoleCustomer})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders/o1", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOrderHandler_UpdateOrderStatus_InvalidStatus(t *testing.T) {
	store := &stubOrderStore{orders: map[string]*models.Order{
		"o1": {ID: "o1", CustomerID: "cust-1", FarmerID: "farmer-1", Status: models.OrderStatusPending},
	}}
	r := orderRouter(store, models.Principal{ID: "farmer-1", Role: models.RoleFarmer})

	body := `{"status":"misplaced"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/orders/o1/status", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_UpdateOrderStatus(t *testing.T) {
	store := &stubOrderStore{orders: map[string]*models.Order{
		"o1": {ID: "o1", CustomerID: "cust-1", FarmerID: "farmer-1", Status: models.OrderStatusPending,
			Tracking: []models.TrackingEntry{{Status: models.OrderStatusPending, Note: "Order created"}}},
	}}
	r := orderRouter(store, models.Principal{ID: "farmer-1", Role: models.RoleFarmer})

	body := `{"status":"confirmed","note":"Packing tomorrow"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/orders/o1/status", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.OrderStatusConfirmed, got.Status)
	require.Len(t, got.Tracking, 2)
	assert.Equal(t, models.OrderStatusConfirmed, got.Tracking[1].Status)
}
