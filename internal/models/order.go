package models

import "time"

// Order statuses. Any authorized caller may move an order between these;
// there is no adjacency table, only membership is validated.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusOnRoute   = "on_route"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusReceived  = "received"
	OrderStatusCancelled = "cancelled"
)

var ValidOrderStatuses = map[string]bool{
	OrderStatusPending:   true,
	OrderStatusConfirmed: true,
	OrderStatusOnRoute:   true,
	OrderStatusShipped:   true,
	OrderStatusDelivered: true,
	OrderStatusReceived:  true,
	OrderStatusCancelled: true,
}

const (
	PaymentMethodCOD    = "cod"
	PaymentMethodOnline = "online"
)

type Order struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customer_id"`
	FarmerID        string          `json:"farmer_id,omitempty"`
	Items           []OrderItem     `json:"items"`
	ItemsTotal      float64         `json:"items_total"`
	ShippingPrice   float64         `json:"shipping_price"`
	TotalPrice      float64         `json:"total_price"`
	PaymentMethod   string          `json:"payment_method"`
	IsPaid          bool            `json:"is_paid"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	Status          string          `json:"status"`
	Tracking        []TrackingEntry `json:"tracking"`
	CreatedAt       time.Time       `json:"created_at"`
}

// OrderItem snapshots the product's name and price at order time, so later
// catalog edits never change what the customer was charged.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
}

type TrackingEntry struct {
	Status    string    `json:"status"`
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}

type ShippingAddress struct {
	Name         string `json:"name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	AddressLine1 string `json:"address_line1,omitempty"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Country      string `json:"country,omitempty"`
}

type CreateOrderRequest struct {
	Items           []CreateOrderItemRequest `json:"items" binding:"required"`
	ShippingAddress ShippingAddress          `json:"shipping_address"`
	PaymentMethod   string                   `json:"payment_method"`
	ShippingPrice   float64                  `json:"shipping_price"`
}

// CreateOrderItemRequest deliberately has no price field: totals are always
// computed from the catalog, never trusted from the client.
type CreateOrderItemRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Quantity  float64 `json:"quantity"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}
