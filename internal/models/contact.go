package models

import "time"

const (
	ContactStatusNew        = "new"
	ContactStatusInProgress = "in_progress"
	ContactStatusResolved   = "resolved"
)

var ValidContactStatuses = map[string]bool{
	ContactStatusNew:        true,
	ContactStatusInProgress: true,
	ContactStatusResolved:   true,
}

// Sender roles a contact message may carry. Anything else, including a
// self-declared "admin", is stored as guest.
var ValidContactRoles = map[string]bool{
	RoleFarmer:   true,
	RoleCustomer: true,
	RoleGuest:    true,
}

type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Role      string    `json:"role"`
	UserID    string    `json:"user_id,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Phone   string `json:"phone"`
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
	Role    string `json:"role"`
}

// ContactFilter narrows the admin inbox listing.
type ContactFilter struct {
	Role   string
	Status string
	Query  string
}
