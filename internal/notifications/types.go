package notifications

import (
	"encoding/json"
	"time"

	"github.com/imrishuroy/go-library-checkout/internal/checkout"
)

// CollectionName is the store collection holding notifications.
const CollectionName = "notifications"

// Notification types.
const (
	TypeBookApproved    = "book_approved"
	TypeBookRejected    = "book_rejected"
	TypeRequestApproved = "request_approved"
	TypeRequestRejected = "request_rejected"
	TypeGeneral         = "general"
)

// Notification is a message shown to patrons and librarians.
type Notification struct {
	ID                 checkout.ID `json:"id"`
	UserID             checkout.ID `json:"userId,omitempty"`
	RegistrationNumber string      `json:"registrationNumber,omitempty"`
	RequestID          checkout.ID `json:"requestId,omitempty"`
	BookID             checkout.ID `json:"bookId,omitempty"`
	Type               string      `json:"type"`
	Message            string      `json:"message"`
	Read               bool        `json:"read"`
	CreatedAt          time.Time   `json:"createdAt"`
}

// UnmarshalJSON accepts records written with the legacy "_id" key.
func (n *Notification) UnmarshalJSON(data []byte) error {
	type plain Notification
	var aux struct {
		plain
		LegacyID checkout.ID `json:"_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*n = Notification(aux.plain)
	if n.ID == "" {
		n.ID = aux.LegacyID
	}
	return nil
}
