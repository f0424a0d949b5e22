package checkout

import (
	"encoding/json"
	"time"
)

// Collection names in the record store.
const (
	CartsCollection    = "carts"
	RequestsCollection = "requests"
)

// Book is the catalog reference a patron adds to their cart.
type Book struct {
	ID     ID     `json:"id"`
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`
	ISBN   string `json:"isbn,omitempty"`
}

// Item is one requested book, both on a cart and inside a checkout request.
type Item struct {
	BookID      ID        `json:"id"`
	Title       string    `json:"title,omitempty"`
	Author      string    `json:"author,omitempty"`
	ISBN        string    `json:"isbn,omitempty"`
	Quantity    int       `json:"quantity"`
	Status      Status    `json:"status"`
	AdminNote   string    `json:"adminNote"`
	ProcessedAt time.Time `json:"processedAt,omitzero"`
}

// UnmarshalJSON fills defaults for items written before quantity and status
// were tracked.
func (it *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Quantity < 1 {
		p.Quantity = 1
	}
	if p.Status == "" {
		p.Status = StatusPending
	}
	*it = Item(p)
	return nil
}

// Cart is the per-user collection of books prior to and during checkout.
type Cart struct {
	UserID             ID        `json:"userId"`
	Items              []Item    `json:"items"`
	Status             Status    `json:"status"`
	RegistrationNumber string    `json:"registrationNumber,omitempty"`
	CreatedAt          time.Time `json:"createdAt,omitzero"`
	UpdatedAt          time.Time `json:"updatedAt,omitzero"`
}

func (c *Cart) indexOf(bookID ID) int {
	for i := range c.Items {
		if c.Items[i].BookID == bookID {
			return i
		}
	}
	return -1
}

// Request is the record of one checkout action. Its books are a snapshot
// owned by the request; only statuses and notes change after creation.
type Request struct {
	ID                 ID        `json:"id"`
	UserID             ID        `json:"userId"`
	RegistrationNumber string    `json:"registrationNumber"`
	Books              []Item    `json:"books"`
	Status             Status    `json:"status"`
	AdminNotes         string    `json:"adminNotes,omitempty"`
	CheckoutDate       time.Time `json:"checkoutDate"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt,omitzero"`
	ProcessedAt        time.Time `json:"processedAt,omitzero"`
}

// UnmarshalJSON resolves the request's identifier once, at load time. Older
// records were identified by "_id" or only by their "checkoutDate" string;
// the first present of id, _id and checkoutDate becomes the canonical ID.
func (r *Request) UnmarshalJSON(data []byte) error {
	type plain Request
	var aux struct {
		plain
		LegacyID     ID     `json:"_id"`
		CheckoutDate string `json:"checkoutDate"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p := aux.plain
	if aux.CheckoutDate != "" {
		if t, err := time.Parse(time.RFC3339Nano, aux.CheckoutDate); err == nil {
			p.CheckoutDate = t
		}
	}
	switch {
	case p.ID != "":
	case aux.LegacyID != "":
		p.ID = aux.LegacyID
	default:
		p.ID = ID(aux.CheckoutDate)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.CheckoutDate
	}
	*r = Request(p)
	return nil
}

func (r *Request) indexOf(bookID ID) int {
	for i := range r.Books {
		if r.Books[i].BookID == bookID {
			return i
		}
	}
	return -1
}

// clone returns a copy of r which shares no items with it.
func (r Request) clone() Request {
	r.Books = cloneItems(r.Books)
	return r
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return []Item{}
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
