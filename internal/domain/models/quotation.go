package models

import "github.com/shopspring/decimal"

// QuotationItem is one line of a quotation submitted to the backend.
type QuotationItem struct {
	ProductID      string  `json:"product_id"`
	Quantity       int     `json:"quantity"`
	ProductPrice   float64 `json:"product_price"`
	NetUnitPrice   float64 `json:"net_unit_price"`
	TaxType        int     `json:"tax_type"`
	TaxValue       float64 `json:"tax_value"`
	TaxAmount      float64 `json:"tax_amount"`
	DiscountType   int     `json:"discount_type"`
	DiscountValue  float64 `json:"discount_value"`
	DiscountAmount float64 `json:"discount_amount"`
	SaleUnit       int     `json:"sale_unit"`
	SubTotal       float64 `json:"sub_total"`
}

// QuotationRequest is the payload accepted by the quotations endpoint.
type QuotationRequest struct {
	Date           string          `json:"date"`
	CustomerID     int             `json:"customer_id"`
	WarehouseID    int             `json:"warehouse_id"`
	Status         string          `json:"status"`
	TaxRate        float64         `json:"tax_rate"`
	TaxAmount      float64         `json:"tax_amount"`
	Discount       float64         `json:"discount"`
	Shipping       float64         `json:"shipping"`
	GrandTotal     float64         `json:"grand_total"`
	ReceivedAmount float64         `json:"received_amount"`
	PaidAmount     float64         `json:"paid_amount"`
	Note           string          `json:"note,omitempty"`
	Items          []QuotationItem `json:"quotation_items"`
}

// QuotationResult is what the backend returns for a created quotation.
type QuotationResult struct {
	ID            int    `json:"id"`
	ReferenceCode string `json:"reference_code"`
}

// Payment captures how the customer settles a sale.
type Payment struct {
	Cash   decimal.Decimal `json:"cash"`
	Card   decimal.Decimal `json:"card"`
	Credit bool            `json:"credit"`
}

// Received is the total amount handed over by the customer.
func (p Payment) Received() decimal.Decimal {
	return p.Cash.Add(p.Card)
}

// Paid is the part of total settled now. Credit sales settle nothing.
func (p Payment) Paid(total decimal.Decimal) decimal.Decimal {
	if p.Credit {
		return decimal.Zero
	}
	return decimal.Min(p.Received(), total)
}

// Change is what must be returned to the customer.
func (p Payment) Change(total decimal.Decimal) decimal.Decimal {
	if p.Credit {
		return decimal.Zero
	}
	return decimal.Max(p.Received().Sub(total), decimal.Zero)
}

// CheckoutStatus enumerates the checkout state machine states.
type CheckoutStatus string

const (
	CheckoutIdle       CheckoutStatus = "idle"
	CheckoutSubmitting CheckoutStatus = "submitting"
	CheckoutSucceeded  CheckoutStatus = "succeeded"
	CheckoutFailed     CheckoutStatus = "failed"
)

// CheckoutState is a read-only view of the orchestrator.
type CheckoutState struct {
	Status        CheckoutStatus `json:"status"`
	ReferenceID   string         `json:"reference_id,omitempty"`
	ReferenceCode string         `json:"reference_code,omitempty"`
	Message       string         `json:"message,omitempty"`
}

// CheckoutResult is the outcome of one submission attempt.
type CheckoutResult struct {
	Succeeded     bool            `json:"succeeded"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	ReferenceCode string          `json:"reference_code,omitempty"`
	Message       string          `json:"message,omitempty"`
	Total         decimal.Decimal `json:"total"`
	Change        decimal.Decimal `json:"change"`
}
