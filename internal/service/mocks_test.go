package service_test

import (
	"context"

	"github.com/harvestlink/harvest-market/internal/models"
)

type mockCatalog struct {
	getByIDFunc func(ctx context.Context, id string) (*models.Product, error)
}

func (m *mockCatalog) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return m.getByIDFunc(ctx, id)
}

type mockOrderStore struct {
	createFunc         func(ctx context.Context, order *models.Order) error
	getByIDFunc        func(ctx context.Context, id string) (*models.Order, error)
	listByCustomerFunc func(ctx context.Context, customerID string) ([]models.Order, error)
	listByFarmerFunc   func(ctx context.Context, farmerID string) ([]models.Order, error)
	appendTrackingFunc func(ctx context.Context, orderID string, entry models.TrackingEntry) error
}

func (m *mockOrderStore) Create(ctx context.Context, order *models.Order) error {
	return m.createFunc(ctx, order)
}

func (m *mockOrderStore) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockOrderStore) ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	return m.listByCustomerFunc(ctx, customerID)
}

func (m *mockOrderStore) ListByFarmer(ctx context.Context, farmerID string) ([]models.Order, error) {
	return m.listByFarmerFunc(ctx, farmerID)
}

func (m *mockOrderStore) AppendTracking(ctx context.Context, orderID string, entry models.TrackingEntry) error {
	return m.appendTrackingFunc(ctx, orderID, entry)
}

type mockNegotiationStore struct {
	createFunc            func(ctx context.Context, n *models.Negotiation) error
	getByIDFunc           func(ctx context.Context, id string) (*models.Negotiation, error)
	findOpenFunc          func(ctx context.Context, productID, customerID string) (*models.Negotiation, error)
	listOpenByProductFunc func(ctx context.Context, productID string) ([]models.Negotiation, error)
	appendMessageFunc     func(ctx context.Context, negotiationID string, msg models.NegotiationMessage) error
	closeFunc             func(ctx context.Context, id, status string, finalPrice *float64) error
}

func (m *mockNegotiationStore) Create(ctx context.Context, n *models.Negotiation) error {
	return m.createFunc(ctx, n)
}

func (m *mockNegotiationStore) GetByID(ctx context.Context, id string) (*models.Negotiation, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockNegotiationStore) FindOpen(ctx context.Context, productID, customerID string) (*models.Negotiation, error) {
	return m.findOpenFunc(ctx, productID, customerID)
}

func (m *mockNegotiationStore) ListOpenByProduct(ctx context.Context, productID string) ([]models.Negotiation, error) {
	return m.listOpenByProductFunc(ctx, productID)
}

func (m *mockNegotiationStore) AppendMessage(ctx context.Context, negotiationID string, msg models.NegotiationMessage) error {
	return m.appendMessageFunc(ctx, negotiationID, msg)
}

func (m *mockNegotiationStore) Close(ctx context.Context, id, status string, finalPrice *float64) error {
	return m.closeFunc(ctx, id, status, finalPrice)
}

// mockPublisher records every event and never fails unless told to.
type mockPublisher struct {
	failWith     error
	orderCreated []models.OrderCreatedEvent
	orderStatus  []models.OrderStatusEvent
	negotiations []models.NegotiationEvent
}

func (m *mockPublisher) PublishOrderCreated(event models.OrderCreatedEvent) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.orderCreated = append(m.orderCreated, event)
	return nil
}

func (m *mockPublisher) PublishOrderStatus(event models.OrderStatusEvent) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.orderStatus = append(m.orderStatus, event)
	return nil
}

func (m *mockPublisher) PublishNegotiation(event models.NegotiationEvent) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.negotiations = append(m.negotiations, event)
	return nil
}

func floatPtr(v float64) *float64 {
	return &v
}
