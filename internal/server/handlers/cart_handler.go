package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/pos/internal/domain/models"
)

type addItemRequest struct {
	ProductID int `json:"product_id"`
}

type receiptRequest struct {
	Receipt string `json:"receipt"`
}

// GetCart returns the current cart snapshot.
func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Cart.Snapshot())
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(c *gin.Context) {
	h.deps.Cart.Clear()
	c.JSON(http.StatusOK, h.deps.Cart.Snapshot())
}

// AddItem adds one unit of a catalog product.
func (h *Handler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	product, err := h.deps.Catalog.Product(req.ProductID)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.deps.Cart.AddProduct(product)
	c.JSON(http.StatusOK, h.deps.Cart.Snapshot())
}

// IncrementItem adds one unit to an existing line.
func (h *Handler) IncrementItem(c *gin.Context) {
	h.adjust(c, h.deps.Cart.Increment)
}

// DecrementItem removes one unit from an existing line.
func (h *Handler) DecrementItem(c *gin.Context) {
	h.adjust(c, h.deps.Cart.Decrement)
}

func (h *Handler) adjust(c *gin.Context, apply func(int) bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		badRequest(c, "product id must be a number")
		return
	}
	if !apply(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product is not in the cart"})
		return
	}
	c.JSON(http.StatusOK, h.deps.Cart.Snapshot())
}

// SelectReceipt sets the receipt type of the sale.
func (h *Handler) SelectReceipt(c *gin.Context) {
	var req receiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	receipt, err := models.ParseReceiptType(req.Receipt)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.deps.Cart.SelectReceipt(receipt); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.deps.Cart.Snapshot())
}

// ClearReceipt removes the receipt selection.
func (h *Handler) ClearReceipt(c *gin.Context) {
	h.deps.Cart.ClearReceipt()
	c.JSON(http.StatusOK, h.deps.Cart.Snapshot())
}

// StreamCart pushes the current cart as a server-sent event, then one event
// per change until the client goes away.
func (h *Handler) StreamCart(c *gin.Context) {
	updates, cancel := h.deps.Cart.Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	// The subscription already holds the current snapshot.
	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			c.SSEvent("cart", snap)
			c.Writer.Flush()
		}
	}
}
