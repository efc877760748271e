package models

import "time"

// OrderCreatedEvent is published when a new order is created.
type OrderCreatedEvent struct {
	OrderID    string           `json:"order_id"`
	CustomerID string           `json:"customer_id"`
	FarmerID   string           `json:"farmer_id,omitempty"`
	TotalPrice float64          `json:"total_price"`
	Items      []OrderItemEvent `json:"items"`
}

type OrderItemEvent struct {
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}

// OrderStatusEvent is published for every tracking entry appended to an order.
type OrderStatusEvent struct {
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}

// Negotiation event kinds.
const (
	NegotiationEventStarted  = "started"
	NegotiationEventMessage  = "message"
	NegotiationEventAccepted = "accepted"
	NegotiationEventRejected = "rejected"
)

// NegotiationEvent is published for negotiation activity so the notification
// sink can surface it; nothing in the backend consumes it beyond display.
type NegotiationEvent struct {
	NegotiationID string    `json:"negotiation_id"`
	ProductID     string    `json:"product_id"`
	Kind          string    `json:"kind"`
	ActorID       string    `json:"actor_id"`
	FinalPrice    *float64  `json:"final_price,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
