package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-library-checkout/internal/checkout"
	"github.com/imrishuroy/go-library-checkout/internal/validation"
)

func (h *api) listRequests(c *gin.Context) {
	rs, err := h.Requests.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rs)
}

func (h *api) listUserRequests(c *gin.Context) {
	rs, err := h.Requests.ListForUser(c.Request.Context(), checkout.ID(c.Param("userId")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rs)
}

type bulkDecision func(ctx context.Context, requestID checkout.ID, note string) (checkout.Decision, error)
type itemDecision func(ctx context.Context, requestID, bookID checkout.ID, note string) (checkout.Decision, error)

func (h *api) approveRequest(c *gin.Context) {
	h.decideAll(c, h.Engine.ApproveAll, "Request approved successfully")
}

func (h *api) rejectRequest(c *gin.Context) {
	h.decideAll(c, h.Engine.RejectAll, "Request rejected successfully")
}

func (h *api) approveBook(c *gin.Context) {
	h.decideItem(c, h.Engine.ApproveItem, "Book approved successfully")
}

func (h *api) rejectBook(c *gin.Context) {
	h.decideItem(c, h.Engine.RejectItem, "Book rejected successfully")
}

func (h *api) decideAll(c *gin.Context, decide bulkDecision, message string) {
	var req validation.DecisionRequest
	if err := validation.BindOptionalAndValidate(c, &req, h.v); err != nil {
		return
	}
	d, err := decide(c.Request.Context(), checkout.ID(c.Param("requestId")), req.AdminNotes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, decisionBody(message, d))
}

func (h *api) decideItem(c *gin.Context, decide itemDecision, message string) {
	var req validation.DecisionRequest
	if err := validation.BindOptionalAndValidate(c, &req, h.v); err != nil {
		return
	}
	d, err := decide(c.Request.Context(), checkout.ID(c.Param("requestId")), checkout.ID(c.Param("bookId")), req.AdminNotes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, decisionBody(message, d))
}

func decisionBody(message string, d checkout.Decision) gin.H {
	body := gin.H{
		"message":    message,
		"request":    d.Request,
		"cartSynced": d.CartSynced,
	}
	if d.SyncErr != nil {
		body["syncError"] = d.SyncErr.Error()
	}
	return body
}
