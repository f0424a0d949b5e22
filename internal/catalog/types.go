package catalog

import (
	"errors"
	"time"

	"github.com/imrishuroy/go-library-checkout/internal/checkout"
)

// CollectionName is the store collection holding the catalog.
const CollectionName = "books"

// ErrConflict is returned when a book's ISBN is already catalogued.
var ErrConflict = errors.New("conflict")

// Book is a catalogued title.
type Book struct {
	ID          checkout.ID `json:"id"`
	Title       string      `json:"title"`
	Author      string      `json:"author"`
	ISBN        string      `json:"isbn"`
	ISSN        string      `json:"issn,omitempty"`
	Section     string      `json:"section"`
	Description string      `json:"description"`
	Quantity    int         `json:"quantity"`
	DateAdded   string      `json:"dateAdded"`
	CreatedAt   time.Time   `json:"createdAt,omitzero"`
	UpdatedAt   time.Time   `json:"updatedAt,omitzero"`
}

// Patch holds the fields of an update; nil fields are left as they are.
type Patch struct {
	Title       *string
	Author      *string
	ISBN        *string
	ISSN        *string
	Section     *string
	Description *string
	Quantity    *int
	DateAdded   *string
}

// CartBook is the reference a cart keeps to this book.
func (b Book) CartBook() checkout.Book {
	return checkout.Book{ID: b.ID, Title: b.Title, Author: b.Author, ISBN: b.ISBN}
}
