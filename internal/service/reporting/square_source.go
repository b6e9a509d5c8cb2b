package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/gagesampsonn/barbershop/internal/domain/models"
	"github.com/gagesampsonn/barbershop/pkg/clients/square"
)

// SquareSource adapts the Square client to PaymentSource.
type SquareSource struct {
	client square.Client
}

// NewSquareSource wraps a Square client.
func NewSquareSource(client square.Client) *SquareSource {
	return &SquareSource{client: client}
}

// ListPayments fetches and converts payments created in [begin, end].
func (s *SquareSource) ListPayments(ctx context.Context, begin, end time.Time) ([]models.Payment, error) {
	raw, err := s.client.ListPayments(ctx, begin, end)
	if err != nil {
		return nil, err
	}
	out := make([]models.Payment, 0, len(raw))
	for _, p := range raw {
		converted, err := toPayment(p)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

// GetCustomer resolves a customer identity.
func (s *SquareSource) GetCustomer(ctx context.Context, id string) (models.Customer, error) {
	c, err := s.client.GetCustomer(ctx, id)
	if err != nil {
		return models.Customer{}, err
	}
	return models.Customer{
		ID:         c.ID,
		GivenName:  c.GivenName,
		FamilyName: c.FamilyName,
		Email:      c.EmailAddress,
		Phone:      c.PhoneNumber,
	}, nil
}

func toPayment(p square.Payment) (models.Payment, error) {
	created, err := time.Parse(time.RFC3339Nano, p.CreatedAt)
	if err != nil {
		return models.Payment{}, fmt.Errorf("payment %s: invalid created_at %q: %w", p.ID, p.CreatedAt, err)
	}
	out := models.Payment{
		ID:         p.ID,
		Status:     p.Status,
		CreatedAt:  created,
		CustomerID: p.CustomerID,
	}
	switch {
	case p.TotalMoney != nil:
		out.TotalCents = p.TotalMoney.Amount
	case p.AmountMoney != nil:
		out.TotalCents = p.AmountMoney.Amount
	}
	if p.TipMoney != nil {
		out.TipCents = p.TipMoney.Amount
	}
	return out, nil
}
