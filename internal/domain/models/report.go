package models

import "time"

// SalesSnapshot is the persisted copy of a closed day's sales summary.
type SalesSnapshot struct {
	Date             string    `bson:"date" json:"date"`
	GrossSales       string    `bson:"gross_sales" json:"gross_sales"`
	Tips             string    `bson:"tips" json:"tips"`
	NetSales         string    `bson:"net_sales" json:"net_sales"`
	TransactionCount int       `bson:"transaction_count" json:"transaction_count"`
	Status           string    `bson:"status" json:"status"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}

// NewSalesSnapshot copies a summary into its storage shape.
func NewSalesSnapshot(s DailySalesSummary, createdAt time.Time) SalesSnapshot {
	return SalesSnapshot{
		Date:             s.Date.String(),
		GrossSales:       s.GrossSales.StringFixed(2),
		Tips:             s.Tips.StringFixed(2),
		NetSales:         s.NetSales.StringFixed(2),
		TransactionCount: s.TransactionCount,
		Status:           string(s.Status),
		CreatedAt:        createdAt,
	}
}

// Row flattens the snapshot for spreadsheet export.
func (s SalesSnapshot) Row() []interface{} {
	return []interface{}{s.Date, s.GrossSales, s.Tips, s.NetSales, s.TransactionCount, s.Status}
}
