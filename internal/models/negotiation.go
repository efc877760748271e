package models

import "time"

// Negotiation statuses. accepted and rejected are terminal.
const (
	NegotiationStatusOpen     = "open"
	NegotiationStatusAccepted = "accepted"
	NegotiationStatusRejected = "rejected"
)

type Negotiation struct {
	ID         string               `json:"id"`
	ProductID  string               `json:"product_id"`
	FarmerID   string               `json:"farmer_id"`
	CustomerID string               `json:"customer_id"`
	Messages   []NegotiationMessage `json:"messages"`
	Status     string               `json:"status"`
	FinalPrice *float64             `json:"final_price,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}

// NegotiationMessage is one turn in a bargaining thread. Either side may
// send text, a price, or both; a price-only message is a counteroffer.
type NegotiationMessage struct {
	SenderID  string    `json:"sender_id"`
	Text      string    `json:"text,omitempty"`
	Price     *float64  `json:"price,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type PostMessageRequest struct {
	Text  string   `json:"text"`
	Price *float64 `json:"price"`
}

type AcceptNegotiationRequest struct {
	FinalPrice *float64 `json:"final_price"`
}
