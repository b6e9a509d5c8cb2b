package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/gagesampsonn/barbershop/internal/domain/apperrors"
	"github.com/gagesampsonn/barbershop/internal/domain/models"
)

const serviceColumns = `
	id::text, name, description, price::text, icon, accent_color, display_order, is_active, updated_at`

// ListServices returns services ordered by display order.
func (s *Store) ListServices(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE is_active OR NOT $1
		ORDER BY display_order ASC, name ASC
	`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("query services: %w", err)
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}
	return services, nil
}

// UpdateService stores an edited service.
func (s *Store) UpdateService(ctx context.Context, svc models.Service) (models.Service, error) {
	if !validID(svc.ID) {
		return models.Service{}, apperrors.ErrNotFound
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE services
		SET name = $2, description = $3, price = $4::numeric, icon = $5, accent_color = $6,
		    display_order = $7, is_active = $8, updated_at = now()
		WHERE id = $1::uuid
		RETURNING `+serviceColumns,
		svc.ID, svc.Name, svc.Description, svc.Price.StringFixed(2), string(svc.Icon), string(svc.AccentColor),
		svc.DisplayOrder, svc.IsActive)
	updated, err := scanService(row)
	if err != nil {
		return models.Service{}, translate(err)
	}
	return updated, nil
}

func scanService(row pgx.Row) (models.Service, error) {
	var (
		svc          models.Service
		price        string
		icon, accent string
	)
	if err := row.Scan(&svc.ID, &svc.Name, &svc.Description, &price, &icon, &accent, &svc.DisplayOrder, &svc.IsActive, &svc.UpdatedAt); err != nil {
		return models.Service{}, err
	}
	amount, err := decimal.NewFromString(price)
	if err != nil {
		return models.Service{}, fmt.Errorf("parse price %q: %w", price, err)
	}
	svc.Price = amount
	svc.Icon = models.ServiceIcon(icon)
	svc.AccentColor = models.AccentColor(accent)
	return svc, nil
}
