package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CartLine associates a product with the quantity being purchased.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal is the unit price times the quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartSnapshot is an immutable view of the cart at one point in time.
type CartSnapshot struct {
	Lines     []CartLine      `json:"lines"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	Receipt   *ReceiptType    `json:"receipt,omitempty"`
	Version   uint64          `json:"version"`
}

// Empty reports whether the snapshot has no lines.
func (s CartSnapshot) Empty() bool {
	return len(s.Lines) == 0
}

// ReceiptType enumerates the sale documents a cashier can issue.
type ReceiptType string

const (
	ReceiptSaleNote ReceiptType = "Nota de Venta"
	ReceiptTicket   ReceiptType = "Boleta de Venta"
	ReceiptInvoice  ReceiptType = "Factura"
)

// ReceiptTypes lists the supported receipt kinds in display order.
var ReceiptTypes = []ReceiptType{ReceiptSaleNote, ReceiptTicket, ReceiptInvoice}

// ParseReceiptType maps a label onto one of the supported receipt kinds.
func ParseReceiptType(label string) (ReceiptType, error) {
	for _, t := range ReceiptTypes {
		if string(t) == label {
			return t, nil
		}
	}
	return "", NewValidationError(fmt.Sprintf("unknown receipt type %q", label), ErrUnknownReceipt)
}
