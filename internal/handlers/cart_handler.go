package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/imrishuroy/go-library-checkout/internal/checkout"
	"github.com/imrishuroy/go-library-checkout/internal/idempotency"
	"github.com/imrishuroy/go-library-checkout/internal/validation"
)

func (h *api) addToCart(c *gin.Context) {
	var req validation.AddToCartRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		// BindAndValidate already wrote a 400
		return
	}

	book := checkout.Book{ID: req.Book.ID, Title: req.Book.Title, Author: req.Book.Author, ISBN: req.Book.ISBN}
	// Fill in a bare reference from the catalog when the book is catalogued.
	if book.Title == "" && h.Catalog != nil {
		if b, err := h.Catalog.Get(c.Request.Context(), book.ID); err == nil {
			book = b.CartBook()
		}
	}

	cart, err := h.Carts.AddOrUpdateItem(c.Request.Context(), req.UserID, book)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *api) getCart(c *gin.Context) {
	cart, err := h.Carts.Get(c.Request.Context(), checkout.ID(c.Param("userId")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *api) removeFromCart(c *gin.Context) {
	cart, err := h.Carts.RemoveItem(c.Request.Context(), checkout.ID(c.Param("userId")), checkout.ID(c.Param("bookId")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type checkoutResponse struct {
	Message string           `json:"message"`
	Cart    checkout.Cart    `json:"cart"`
	Request checkout.Request `json:"request"`
}

func (h *api) checkout(c *gin.Context) {
	ctx := c.Request.Context()
	userID := checkout.ID(c.Param("userId"))

	var req validation.CheckoutRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	// Idempotency keys are scoped to the user so clients cannot collide.
	var idempKey string
	if k := c.GetHeader("Idempotency-Key"); k != "" && h.Idempotency != nil {
		idempKey = fmt.Sprintf("checkout:%s:%s", userID, k)
		created, err := h.Idempotency.CreateIfNotExists(ctx, idempKey)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "message": err.Error()})
			return
		}
		if !created {
			h.replay(c, idempKey)
			return
		}
	}

	res, err := h.Carts.Checkout(ctx, userID, req.RegistrationNumber)
	if err != nil {
		if idempKey != "" {
			// release the key so the client can retry
			if merr := h.Idempotency.MarkFailed(ctx, idempKey, err.Error()); merr != nil {
				log.WithFields(log.Fields{"key": idempKey, "err": merr}).Warn("mark idempotency key failed")
			}
		}
		writeError(c, err)
		return
	}

	body, err := json.Marshal(checkoutResponse{Message: "Checkout successful", Cart: res.Cart, Request: res.Request})
	if err != nil {
		writeError(c, err)
		return
	}
	if idempKey != "" {
		if err := h.Idempotency.MarkDone(ctx, idempKey, string(body), http.StatusOK); err != nil {
			log.WithFields(log.Fields{"key": idempKey, "err": err}).Warn("store idempotent checkout response failed")
		}
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// replay answers a retried checkout from its idempotency record.
func (h *api) replay(c *gin.Context, key string) {
	rec, err := h.Idempotency.Get(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "message": err.Error()})
		return
	}
	if rec == nil {
		// expired between the claim and the read
		c.JSON(http.StatusConflict, gin.H{"error": "idempotency_key_expired", "message": "retry the request"})
		return
	}
	switch rec.Status {
	case idempotency.StatusDone:
		c.Data(rec.ResponseStatus, "application/json; charset=utf-8", []byte(rec.ResponseBody))
	case idempotency.StatusInProgress:
		c.JSON(http.StatusConflict, gin.H{"error": "request_in_progress", "message": "a checkout with this idempotency key is in progress"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_idempotency_status", "message": rec.Status})
	}
}
