package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatusCompleted is the only status that contributes to sales figures.
const PaymentStatusCompleted = "COMPLETED"

// UnknownCustomerName is the display name used when identity resolution fails.
const UnknownCustomerName = "Unknown Customer"

// Payment is a single payment record as reported by the payments source.
// Amounts are in the smallest currency unit.
type Payment struct {
	ID         string
	Status     string
	TotalCents int64
	TipCents   int64
	CreatedAt  time.Time
	CustomerID string
}

// Completed reports whether the payment counts toward sales.
func (p Payment) Completed() bool {
	return p.Status == PaymentStatusCompleted
}

// CentsToAmount converts minor units to a two-decimal major unit amount.
func CentsToAmount(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// SummaryStatus distinguishes a computed figure from one whose source fetch failed.
type SummaryStatus string

const (
	SummaryOK          SummaryStatus = "ok"
	SummaryUnavailable SummaryStatus = "unavailable"
)

// DailySalesSummary aggregates completed payments over a window anchored at Date.
type DailySalesSummary struct {
	Date             Date            `json:"date"`
	GrossSales       decimal.Decimal `json:"grossSales"`
	NetSales         decimal.Decimal `json:"netSales"`
	Tips             decimal.Decimal `json:"tips"`
	TransactionCount int             `json:"transactionCount"`
	Status           SummaryStatus   `json:"status"`
}

// Available reports whether the summary reflects fetched data.
func (s DailySalesSummary) Available() bool {
	return s.Status != SummaryUnavailable
}

// UnavailableSummary is the placeholder for a window whose fetch failed.
func UnavailableSummary(date Date) DailySalesSummary {
	return DailySalesSummary{
		Date:       date,
		GrossSales: decimal.Zero,
		NetSales:   decimal.Zero,
		Tips:       decimal.Zero,
		Status:     SummaryUnavailable,
	}
}

// RankKey selects the field used to order "top N" day lists.
type RankKey string

const (
	RankByTransactions RankKey = "transactions"
	RankByGrossSales   RankKey = "gross_sales"
)

// Valid reports whether k is a known rank key.
func (k RankKey) Valid() bool {
	return k == RankByTransactions || k == RankByGrossSales
}

// PaymentSummary is the dashboard roll-up.
type PaymentSummary struct {
	Today     DailySalesSummary   `json:"today"`
	Yesterday DailySalesSummary   `json:"yesterday"`
	ThisWeek  DailySalesSummary   `json:"thisWeek"`
	ThisMonth DailySalesSummary   `json:"thisMonth"`
	TopDays   []DailySalesSummary `json:"topDays"`
}

// MonthlyCalendar holds per-day figures for one month. Days without completed
// payments have no key at all.
type MonthlyCalendar struct {
	Year  int                       `json:"year"`
	Month int                       `json:"month"`
	Days  map[int]DailySalesSummary `json:"days"`
}

// Day returns the summary for a day of month and whether any data exists.
func (c MonthlyCalendar) Day(day int) (DailySalesSummary, bool) {
	s, ok := c.Days[day]
	return s, ok
}

// TopCustomer is a ranked customer entry.
type TopCustomer struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email,omitempty"`
	Phone      string          `json:"phone,omitempty"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
	VisitCount int             `json:"visitCount"`
}

// Named reports whether identity resolution produced a real name.
func (c TopCustomer) Named() bool {
	return c.Name != "" && c.Name != UnknownCustomerName
}

// Customer is the identity record returned by the payments source.
type Customer struct {
	ID         string
	GivenName  string
	FamilyName string
	Email      string
	Phone      string
}

// HourlyBucket aggregates completed payments for one local hour.
type HourlyBucket struct {
	Hour   int             `json:"hour"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}
