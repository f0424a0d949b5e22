package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/imrishuroy/go-library-checkout/internal/catalog"
	"github.com/imrishuroy/go-library-checkout/internal/checkout"
	"github.com/imrishuroy/go-library-checkout/internal/idempotency"
	"github.com/imrishuroy/go-library-checkout/internal/notifications"
	"github.com/imrishuroy/go-library-checkout/internal/validation"
)

// Services groups the dependencies of the HTTP handlers.
type Services struct {
	Carts         *checkout.CartService
	Requests      *checkout.RequestService
	Engine        *checkout.Engine
	Catalog       *catalog.Service
	Notifications *notifications.Service
	// Idempotency is optional; without it the Idempotency-Key header is ignored.
	Idempotency idempotency.Store
}

type api struct {
	Services
	v *validatorv10.Validate
}

// RegisterRoutes registers every /api route on r.
func RegisterRoutes(r *gin.Engine, svc Services) {
	h := &api{Services: svc, v: validation.New()}

	cart := r.Group("/api/cart")
	cart.POST("", h.addToCart)
	cart.GET("/:userId", h.getCart)
	cart.POST("/:userId/checkout", h.checkout)
	cart.DELETE("/:userId/items/:bookId", h.removeFromCart)

	requests := r.Group("/api/requests")
	requests.GET("", h.listRequests)
	requests.GET("/user/:userId", h.listUserRequests)
	requests.PUT("/:requestId/approve", h.approveRequest)
	requests.PUT("/:requestId/reject", h.rejectRequest)
	requests.PUT("/:requestId/books/:bookId/approve", h.approveBook)
	requests.PUT("/:requestId/books/:bookId/reject", h.rejectBook)

	admin := r.Group("/api/admin/books")
	admin.POST("", h.addBook)
	admin.GET("", h.listBooks)
	admin.GET("/:id", h.getBook)
	admin.PUT("/:id", h.updateBook)
	admin.DELETE("/:id", h.deleteBook)
	r.GET("/api/books/all", h.allBooks)

	notes := r.Group("/api/notifications")
	notes.GET("", h.listNotifications)
	notes.POST("", h.createNotification)
	notes.PUT("/:id/read", h.markNotificationRead)
}

// errorStatus maps domain errors onto HTTP statuses and error codes.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, checkout.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, checkout.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, checkout.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, catalog.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, checkout.ErrStorage):
		return http.StatusInternalServerError, "storage_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeError(c *gin.Context, err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"err":    err,
		}).Error("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": code, "message": err.Error()})
}
