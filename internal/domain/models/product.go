package models

import "github.com/shopspring/decimal"

// Product is a catalog entry as fetched from the commerce backend. Values are
// treated as immutable once fetched.
type Product struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	Price     decimal.Decimal `json:"price"`
	Stock     *int            `json:"stock,omitempty"`
	Category  string          `json:"category,omitempty"`
	Brand     string          `json:"brand,omitempty"`
	SaleUnit  string          `json:"sale_unit,omitempty"`
	ImageURLs []string        `json:"images,omitempty"`
}

// InStock reports whether the backend declared a positive stock for the product.
// Products without stock information are considered available.
func (p Product) InStock() bool {
	if p.Stock == nil {
		return true
	}
	return *p.Stock > 0
}
