package checkout

import (
	"errors"

	"github.com/imrishuroy/go-library-checkout/internal/store"
)

var (
	// ErrValidation marks missing or malformed caller input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a referenced cart, request or item which does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState marks an operation not allowed in the current status.
	ErrInvalidState = errors.New("invalid state")
	// ErrStorage marks a failure of the record store.
	ErrStorage = store.ErrStorage
)
