package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gagesampsonn/barbershop/internal/domain/apperrors"
	"github.com/gagesampsonn/barbershop/internal/domain/models"
)

type fakeRepo struct {
	services []models.Service
	err      error
	updated  *models.Service
}

func (f *fakeRepo) ListServices(_ context.Context, activeOnly bool) ([]models.Service, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Service
	for _, s := range f.services {
		if activeOnly && !s.IsActive {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeRepo) UpdateService(_ context.Context, svc models.Service) (models.Service, error) {
	if f.err != nil {
		return models.Service{}, f.err
	}
	f.updated = &svc
	return svc, nil
}

func TestActiveServicesFallback(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	defaults := DefaultServices()
	require.Len(t, defaults, 3)
	assert.Equal(t, "10", defaults[0].Price.String())
	assert.Equal(t, "8", defaults[1].Price.String())
	assert.Equal(t, "9", defaults[2].Price.String())

	assert.Equal(t, defaults, NewService(nil, logger).ActiveServices(ctx))
	assert.Equal(t, defaults, NewService(&fakeRepo{err: errors.New("down")}, logger).ActiveServices(ctx))
	assert.Equal(t, defaults, NewService(&fakeRepo{}, logger).ActiveServices(ctx))

	stored := []models.Service{
		{ID: "a", Name: "Fade", IsActive: true},
		{ID: "b", Name: "Shave", IsActive: false},
	}
	got := NewService(&fakeRepo{services: stored}, logger).ActiveServices(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestUpdateService(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	_, err := NewService(nil, logger).UpdateService(ctx, models.Service{})
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)

	repo := &fakeRepo{}
	svc := NewService(repo, logger)

	_, err = svc.UpdateService(ctx, models.Service{ID: "a", Name: "", Price: decimal.NewFromInt(5), Icon: models.IconUser, AccentColor: models.AccentBlue})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Nil(t, repo.updated)

	edit := models.Service{ID: "a", Name: "Haircut", Price: decimal.RequireFromString("12.50"), Icon: models.IconScissors, AccentColor: models.AccentRed, IsActive: true}
	updated, err := svc.UpdateService(ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, "12.50", updated.Price.StringFixed(2))
	require.NotNil(t, repo.updated)

	repo.err = apperrors.ErrNotFound
	_, err = svc.UpdateService(ctx, edit)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
