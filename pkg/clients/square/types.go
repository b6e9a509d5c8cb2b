package square

import (
	"fmt"
	"strings"
)

// Money is an amount in the smallest currency unit.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Payment mirrors the subset of the Square Payment object used for reporting.
type Payment struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	AmountMoney *Money `json:"amount_money,omitempty"`
	TipMoney    *Money `json:"tip_money,omitempty"`
	TotalMoney  *Money `json:"total_money,omitempty"`
	CustomerID  string `json:"customer_id,omitempty"`
	LocationID  string `json:"location_id,omitempty"`
}

// Customer mirrors the subset of the Square Customer object used for display.
type Customer struct {
	ID           string `json:"id"`
	GivenName    string `json:"given_name,omitempty"`
	FamilyName   string `json:"family_name,omitempty"`
	EmailAddress string `json:"email_address,omitempty"`
	PhoneNumber  string `json:"phone_number,omitempty"`
}

type listPaymentsResponse struct {
	Payments []Payment `json:"payments"`
	Cursor   string    `json:"cursor"`
}

type retrieveCustomerResponse struct {
	Customer *Customer `json:"customer"`
}

// ErrorDetail is one entry of a Square error response.
type ErrorDetail struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
	Field    string `json:"field,omitempty"`
}

type errorResponse struct {
	Errors []ErrorDetail `json:"errors"`
}

// APIError is returned for any non-2xx Square response.
type APIError struct {
	StatusCode int
	Errors     []ErrorDetail
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("square api error: status=%d", e.StatusCode)
	}
	parts := make([]string, 0, len(e.Errors))
	for _, d := range e.Errors {
		parts = append(parts, d.Code+": "+d.Detail)
	}
	return fmt.Sprintf("square api error: status=%d, %s", e.StatusCode, strings.Join(parts, "; "))
}
