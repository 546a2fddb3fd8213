package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleRecord is one row of the sales journal.
type SaleRecord struct {
	Date        time.Time
	ReferenceID string
	Customer    string
	Receipt     string
	Items       int
	Tax         decimal.Decimal
	Total       decimal.Decimal
}

// DailyReport represents the aggregated daily sales stored in MongoDB.
type DailyReport struct {
	Date       time.Time `bson:"date" json:"date"`
	Sales      int       `bson:"sales" json:"sales"`
	Items      int       `bson:"items" json:"items"`
	GrandTotal float64   `bson:"grand_total" json:"grand_total"`
	Tax        float64   `bson:"tax" json:"tax"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}
