package models

import "time"

type Product struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Price         float64    `json:"price"`
	Quantity      float64    `json:"quantity"`
	Unit          string     `json:"unit"`
	Offer         string     `json:"offer,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	IsUpcoming    bool       `json:"is_upcoming"`
	AvailableDate *time.Time `json:"available_date,omitempty"`
	FarmerID      string     `json:"farmer_id"`
	CreatedAt     time.Time  `json:"created_at"`
}

type CreateProductRequest struct {
	Name          string     `json:"name" binding:"required"`
	Description   string     `json:"description"`
	Price         float64    `json:"price" binding:"required"`
	Quantity      float64    `json:"quantity"`
	Unit          string     `json:"unit"`
	Offer         string     `json:"offer"`
	ImageURL      string     `json:"image_url"`
	IsUpcoming    bool       `json:"is_upcoming"`
	AvailableDate *time.Time `json:"available_date"`
}

// UpdateProductRequest carries a partial update; nil fields are left untouched.
// The owning farmer can never be changed through an update.
type UpdateProductRequest struct {
	Name          *string    `json:"name"`
	Description   *string    `json:"description"`
	Price         *float64   `json:"price"`
	Quantity      *float64   `json:"quantity"`
	Unit          *string    `json:"unit"`
	Offer         *string    `json:"offer"`
	ImageURL      *string    `json:"image_url"`
	IsUpcoming    *bool      `json:"is_upcoming"`
	AvailableDate *time.Time `json:"available_date"`
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	Upcoming *bool
	FarmerID string
}
