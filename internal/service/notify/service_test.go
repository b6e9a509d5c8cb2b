package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gagesampsonn/barbershop/internal/config"
	"github.com/gagesampsonn/barbershop/internal/domain/apperrors"
	"github.com/gagesampsonn/barbershop/internal/domain/models"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendText(ctx context.Context, to, body string) (string, error) {
	args := m.Called(ctx, to, body)
	return args.String(0), args.Error(1)
}

func sampleSummary() models.DailySalesSummary {
	return models.DailySalesSummary{
		Date:             models.NewDate(2024, time.February, 14),
		GrossSales:       models.CentsToAmount(7500),
		Tips:             models.CentsToAmount(500),
		NetSales:         models.CentsToAmount(7000),
		TransactionCount: 2,
		Status:           models.SummaryOK,
	}
}

func TestFormatDaily(t *testing.T) {
	msg := FormatDaily("Today's sales", sampleSummary())
	assert.Equal(t, "*Today's sales* (2024-02-14)\nGross: $75.00\nTips: $5.00\nNet: $70.00\nTransactions: 2", msg)

	msg = FormatDaily("Today's sales", models.UnavailableSummary(models.NewDate(2024, time.February, 14)))
	assert.Contains(t, msg, "Sales data unavailable")
	assert.NotContains(t, msg, "Gross")
}

func TestFormatWeekly(t *testing.T) {
	day := sampleSummary()
	msg := FormatWeekly(models.PaymentSummary{
		ThisWeek:  day,
		ThisMonth: day,
		TopDays:   []models.DailySalesSummary{day, day, day, day},
	})
	assert.Contains(t, msg, "*Weekly sales report*")
	assert.Contains(t, msg, "*Month to date*")
	assert.Contains(t, msg, "3. Wed 2024-02-14: $75.00 (2)")
	assert.NotContains(t, msg, "4. ")
}

func TestSendDaily(t *testing.T) {
	sender := new(mockSender)
	sender.On("SendText", mock.Anything, "15550001111", mock.MatchedBy(func(body string) bool {
		return len(body) > 0
	})).Return("wamid.1", nil).Once()

	n := NewNotifier(config.WhatsAppConfig{Recipient: "15550001111"}, sender, zaptest.NewLogger(t))
	require.True(t, n.Enabled())
	require.NoError(t, n.SendDaily(context.Background(), "Today's sales", sampleSummary()))
	sender.AssertExpectations(t)
}

func TestSendFailures(t *testing.T) {
	disabled := NewNotifier(config.WhatsAppConfig{}, nil, nil)
	err := disabled.SendDaily(context.Background(), "x", sampleSummary())
	assert.ErrorIs(t, err, apperrors.ErrNotConfigured)

	sender := new(mockSender)
	sender.On("SendText", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("boom"))
	n := NewNotifier(config.WhatsAppConfig{Recipient: "1555"}, sender, nil)
	err = n.SendWeekly(context.Background(), models.PaymentSummary{ThisWeek: sampleSummary(), ThisMonth: sampleSummary()})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUpstream))
}
