package models

import "time"

// Roles an impact story can be told from. Distinct from auth roles: this is
// the storyteller's label on the public page, not a permission.
var ValidImpactRoles = map[string]bool{
	RoleFarmer:   true,
	RoleCustomer: true,
}

// ImpactStory is a testimonial shown on the public impact page.
type ImpactStory struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Role      string    `json:"role"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Quote     string    `json:"quote"`
	Stats     []string  `json:"stats"`
	ImageURL  string    `json:"image_url,omitempty"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateImpactStoryRequest struct {
	Title    string   `json:"title" binding:"required"`
	Role     string   `json:"role" binding:"required"`
	Name     string   `json:"name" binding:"required"`
	Location string   `json:"location" binding:"required"`
	Quote    string   `json:"quote" binding:"required"`
	Stats    []string `json:"stats"`
	ImageURL string   `json:"image_url"`
}
