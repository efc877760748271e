package models

import "time"

type MarketPrice struct {
	ID          string    `json:"id"`
	ProductName string    `json:"product_name"`
	Category    string    `json:"category,omitempty"`
	Unit        string    `json:"unit"`
	Price       float64   `json:"price"`
	Source      string    `json:"source"`
	RecordedAt  time.Time `json:"recorded_at"`
	CreatedAt   time.Time `json:"created_at"`
}

type UploadPriceRequest struct {
	ProductName string  `json:"product_name" binding:"required"`
	Category    string  `json:"category"`
	Unit        string  `json:"unit"`
	Price       float64 `json:"price" binding:"required"`
	Source      string  `json:"source"`
}

// MandiPrice is one normalized record from the Agmarknet feed,
// converted to rupees per kilogram.
type MandiPrice struct {
	ProductName string    `json:"product_name"`
	Category    string    `json:"category"`
	Unit        string    `json:"unit"`
	Price       float64   `json:"price"`
	Source      string    `json:"source"`
	RecordedAt  time.Time `json:"recorded_at"`
	Market      string    `json:"market,omitempty"`
	State       string    `json:"state,omitempty"`
	District    string    `json:"district,omitempty"`
}
