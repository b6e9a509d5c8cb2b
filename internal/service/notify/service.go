package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gagesampsonn/barbershop/internal/config"
	"github.com/gagesampsonn/barbershop/internal/domain/apperrors"
	"github.com/gagesampsonn/barbershop/internal/domain/models"
	client "github.com/gagesampsonn/barbershop/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// Notifier pushes sales summaries to the shop owner over WhatsApp.
type Notifier struct {
	sender    client.Sender
	recipient string
	logger    *zap.Logger
}

// NewNotifier wires a new notifier. A nil sender disables delivery.
func NewNotifier(cfg config.WhatsAppConfig, sender client.Sender, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		sender:    sender,
		recipient: cfg.Recipient,
		logger:    logger,
	}
}

// Enabled reports whether messages can be delivered.
func (n *Notifier) Enabled() bool {
	return n != nil && n.sender != nil && n.recipient != ""
}

// SendDaily sends a single summary under the given heading.
func (n *Notifier) SendDaily(ctx context.Context, heading string, summary models.DailySalesSummary) error {
	return n.send(ctx, FormatDaily(heading, summary))
}

// SendWeekly sends the week-to-date roll-up.
func (n *Notifier) SendWeekly(ctx context.Context, summary models.PaymentSummary) error {
	return n.send(ctx, FormatWeekly(summary))
}

func (n *Notifier) send(ctx context.Context, body string) error {
	if !n.Enabled() {
		return apperrors.ErrNotConfigured
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	id, err := n.sender.SendText(ctxWithTimeout, n.recipient, body)
	if err != nil {
		return apperrors.New(apperrors.CodeUpstream, "failed to send notification", err)
	}
	n.logger.Info("owner notification sent", zap.String("message_id", id))
	return nil
}

// FormatDaily renders one summary as a chat message.
func FormatDaily(heading string, s models.DailySalesSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s* (%s)\n", heading, s.Date)
	writeFigures(&b, s)
	return strings.TrimRight(b.String(), "\n")
}

// FormatWeekly renders the week and month windows plus the best days.
func FormatWeekly(p models.PaymentSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Weekly sales report* (week of %s)\n", p.ThisWeek.Date)
	writeFigures(&b, p.ThisWeek)

	b.WriteString("\n*Month to date*\n")
	writeFigures(&b, p.ThisMonth)

	if len(p.TopDays) > 0 {
		b.WriteString("\n*Best days*\n")
		for i, d := range p.TopDays {
			if i == 3 {
				break
			}
			fmt.Fprintf(&b, "%d. %s %s: %s (%d)\n", i+1, d.Date.Weekday().String()[:3], d.Date, money(d.GrossSales.StringFixed(2)), d.TransactionCount)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeFigures(b *strings.Builder, s models.DailySalesSummary) {
	if !s.Available() {
		b.WriteString("Sales data unavailable\n")
		return
	}
	fmt.Fprintf(b, "Gross: %s\n", money(s.GrossSales.StringFixed(2)))
	fmt.Fprintf(b, "Tips: %s\n", money(s.Tips.StringFixed(2)))
	fmt.Fprintf(b, "Net: %s\n", money(s.NetSales.StringFixed(2)))
	fmt.Fprintf(b, "Transactions: %d\n", s.TransactionCount)
}

func money(amount string) string {
	return "$" + amount
}
