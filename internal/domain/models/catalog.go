package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gagesampsonn/barbershop/internal/domain/apperrors"
)

// ServiceIcon is the pictogram shown next to a service on the site.
type ServiceIcon string

const (
	IconScissors  ServiceIcon = "scissors"
	IconUser      ServiceIcon = "user"
	IconUserCheck ServiceIcon = "userCheck"
)

// AccentColor is the card accent used by the site.
type AccentColor string

const (
	AccentRed  AccentColor = "red"
	AccentBlue AccentColor = "blue"
)

// Service is an entry of the public price list.
type Service struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  *string         `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Icon         ServiceIcon     `json:"icon"`
	AccentColor  AccentColor     `json:"accent_color"`
	DisplayOrder int             `json:"display_order"`
	IsActive     bool            `json:"is_active"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Validate checks the fields an administrator may edit.
func (s Service) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return apperrors.Validation("name is required")
	}
	if s.Price.IsNegative() {
		return apperrors.Validation("price must not be negative")
	}
	if !s.Price.Equal(s.Price.Round(2)) {
		return apperrors.Validation("price must have at most two decimals")
	}
	switch s.Icon {
	case IconScissors, IconUser, IconUserCheck:
	default:
		return apperrors.Validation("unknown icon %q", s.Icon)
	}
	switch s.AccentColor {
	case AccentRed, AccentBlue:
	default:
		return apperrors.Validation("unknown accent color %q", s.AccentColor)
	}
	return nil
}
