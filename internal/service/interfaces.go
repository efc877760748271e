package service

import (
	"context"

	"github.com/harvestlink/harvest-market/internal/models"
)

// Catalog is the read-only product view the engines price against. It must be
// strongly consistent: the cached decorator is never wired here.
type Catalog interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error)
	ListByFarmer(ctx context.Context, farmerID string) ([]models.Order, error)
	AppendTracking(ctx context.Context, orderID string, entry models.TrackingEntry) error
}

type NegotiationStore interface {
	Create(ctx context.Context, n *models.Negotiation) error
	GetByID(ctx context.Context, id string) (*models.Negotiation, error)
	FindOpen(ctx context.Context, productID, customerID string) (*models.Negotiation, error)
	ListOpenByProduct(ctx context.Context, productID string) ([]models.Negotiation, error)
	AppendMessage(ctx context.Context, negotiationID string, msg models.NegotiationMessage) error
	Close(ctx context.Context, id, status string, finalPrice *float64) error
}

// EventPublisher feeds the notification/audit sink. Publish failures are
// logged, never propagated: the sink is display-only.
type EventPublisher interface {
	PublishOrderCreated(event models.OrderCreatedEvent) error
	PublishOrderStatus(event models.OrderStatusEvent) error
	PublishNegotiation(event models.NegotiationEvent) error
}
