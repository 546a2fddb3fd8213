package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/pos/internal/domain/models"
)

// Submit sends the cart to the backend as a quotation.
func (h *Handler) Submit(c *gin.Context) {
	var payment models.Payment
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payment); err != nil {
			badRequest(c, "invalid payment")
			return
		}
	}

	// A quotation the backend already accepted must not be abandoned because
	// the client went away; the backend client timeout still bounds the call.
	result, err := h.deps.Checkout.Submit(context.WithoutCancel(c.Request.Context()), payment)
	if err != nil {
		h.fail(c, err)
		return
	}

	if !result.Succeeded {
		c.JSON(http.StatusBadGateway, result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// CheckoutState returns the orchestrator state.
func (h *Handler) CheckoutState(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Checkout.State())
}

// ConsumeReference hands out the last reference id once.
func (h *Handler) ConsumeReference(c *gin.Context) {
	reference, ok := h.deps.Checkout.ConsumeReference()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no reference to consume"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reference_id": reference})
}

// AcknowledgeFailure dismisses a failed submission.
func (h *Handler) AcknowledgeFailure(c *gin.Context) {
	if !h.deps.Checkout.AcknowledgeFailure() {
		c.JSON(http.StatusConflict, gin.H{"error": "no failed checkout to acknowledge"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetCustomer returns the lookup inputs and the resolved customer.
func (h *Handler) GetCustomer(c *gin.Context) {
	customer, _ := h.deps.Customers.Customer()
	c.JSON(http.StatusOK, gin.H{
		"query":    h.deps.Customers.Query(),
		"customer": customer,
		"loading":  h.deps.Customers.Loading(),
	})
}

// SetCustomerQuery feeds the document inputs to the debounced lookup.
func (h *Handler) SetCustomerQuery(c *gin.Context) {
	var query models.CustomerQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	h.deps.Customers.SetQuery(query)
	c.JSON(http.StatusAccepted, gin.H{"query": query, "required_length": query.RequiredLength()})
}

// AssignCustomer sets a customer registered outside the document lookup.
func (h *Handler) AssignCustomer(c *gin.Context) {
	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if customer.ID <= 0 || customer.Name == "" {
		badRequest(c, "customer id and name are required")
		return
	}
	h.deps.Customers.Assign(customer)
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// ResetCustomer clears the document inputs and the resolved customer.
func (h *Handler) ResetCustomer(c *gin.Context) {
	h.deps.Customers.Reset()
	c.Status(http.StatusNoContent)
}

// DailyReport summarizes the journal for ?date=YYYY-MM-DD, today by default.
func (h *Handler) DailyReport(c *gin.Context) {
	if h.deps.Reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sales journal is not configured"})
		return
	}

	day := time.Now().In(h.deps.Location)
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, h.deps.Location)
		if err != nil {
			badRequest(c, "date must be formatted as YYYY-MM-DD")
			return
		}
		day = parsed
	}

	report, err := h.deps.Reports.DailySummary(c.Request.Context(), day)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
