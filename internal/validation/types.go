package validation

import "github.com/imrishuroy/go-library-checkout/internal/checkout"

// CartBook is the book reference carried by an add-to-cart request.
type CartBook struct {
	ID     checkout.ID `json:"id" validate:"required"`
	Title  string      `json:"title"`
	Author string      `json:"author"`
	ISBN   string      `json:"isbn"`
}

// AddToCartRequest is the payload for POST /api/cart
type AddToCartRequest struct {
	UserID checkout.ID `json:"userId" validate:"required"`
	Book   CartBook    `json:"book"`
}

// CheckoutRequest is the payload for POST /api/cart/:userId/checkout
type CheckoutRequest struct {
	RegistrationNumber string `json:"registrationNumber" validate:"required,max=64"`
}

// DecisionRequest is the optional payload of the approve/reject routes.
type DecisionRequest struct {
	AdminNotes string `json:"adminNotes" validate:"max=2000"`
}

// BookRequest is the payload for POST /api/admin/books
type BookRequest struct {
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author" validate:"required"`
	ISBN        string `json:"isbn" validate:"required"`
	ISSN        string `json:"issn"`
	Section     string `json:"section" validate:"required"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
	DateAdded   string `json:"dateAdded" validate:"required"`
}

// BookPatchRequest is the payload for PUT /api/admin/books/:id. Absent fields
// are left unchanged; at least one field must be present.
type BookPatchRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Author      *string `json:"author" validate:"omitempty,min=1"`
	ISBN        *string `json:"isbn" validate:"omitempty,min=1"`
	ISSN        *string `json:"issn"`
	Section     *string `json:"section" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	Quantity    *int    `json:"quantity" validate:"omitempty,min=1"`
	DateAdded   *string `json:"dateAdded" validate:"omitempty,min=1"`
}

// NotificationRequest is the payload for POST /api/notifications
type NotificationRequest struct {
	UserID             checkout.ID `json:"userId"`
	RegistrationNumber string      `json:"registrationNumber"`
	Type               string      `json:"type" validate:"omitempty,max=64"`
	Message            string      `json:"message" validate:"required,max=2000"`
}
