package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-library-checkout/internal/catalog"
	"github.com/imrishuroy/go-library-checkout/internal/checkout"
	"github.com/imrishuroy/go-library-checkout/internal/validation"
)

func (h *api) addBook(c *gin.Context) {
	var req validation.BookRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	b, err := h.Catalog.Add(c.Request.Context(), catalog.Book{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		ISSN:        req.ISSN,
		Section:     req.Section,
		Description: req.Description,
		Quantity:    req.Quantity,
		DateAdded:   req.DateAdded,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Book added successfully", "book": b})
}

func (h *api) listBooks(c *gin.Context) {
	bs, err := h.Catalog.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bs)
}

func (h *api) allBooks(c *gin.Context) {
	bs, err := h.Catalog.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": bs})
}

func (h *api) getBook(c *gin.Context) {
	b, err := h.Catalog.Get(c.Request.Context(), checkout.ID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *api) updateBook(c *gin.Context) {
	var req validation.BookPatchRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	b, err := h.Catalog.Update(c.Request.Context(), checkout.ID(c.Param("id")), catalog.Patch{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		ISSN:        req.ISSN,
		Section:     req.Section,
		Description: req.Description,
		Quantity:    req.Quantity,
		DateAdded:   req.DateAdded,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Book updated successfully", "book": b})
}

func (h *api) deleteBook(c *gin.Context) {
	if err := h.Catalog.Delete(c.Request.Context(), checkout.ID(c.Param("id"))); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully"})
}
