package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	jobmetrics "github.com/basteen-Dev/pavilion/internal/jobs"
	"github.com/basteen-Dev/pavilion/internal/platform/httpx"
	"github.com/basteen-Dev/pavilion/internal/sales/customers"
	"github.com/basteen-Dev/pavilion/internal/sales/quotations"
)

type QuotationLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*quotations.Quotation, error)
}

type CustomerLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*customers.Customer, error)
}

// NotificationJob emails customers about quotations and approval outcomes.
type NotificationJob struct {
	Quotations QuotationLookup
	Customers  CustomerLookup
	Mailer     Mailer
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
}

// HandleQuotationSent processes TaskQuotationSent tasks.
func (j *NotificationJob) HandleQuotationSent(ctx context.Context, t *asynq.Task) (err error) {
	var payload QuotationSentPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	tracker := j.Metrics.Track(TaskQuotationSent)
	defer func() { err = tracker.End(err) }()

	q, err := j.Quotations.Get(ctx, payload.QuotationID)
	if err != nil {
		return skipIfGone(err)
	}
	to := q.CustomerSnapshot.Email
	if to == "" {
		j.logger().Warn("quotation customer has no email", slog.String("quotation_id", q.ID.String()))
		return nil
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Dear %s,\n\nPlease find quotation %s below.\n\n", q.CustomerSnapshot.Name, q.ReferenceNumber)
	for i, it := range q.Items {
		fmt.Fprintf(&body, "%d. %s (%s) x %d @ %s = %s\n", i+1, it.ProductName, it.SKU, it.Quantity,
			it.UnitPrice.StringFixed(2), it.LineTotal.StringFixed(2))
	}
	if q.ShowTotal {
		fmt.Fprintf(&body, "\nTotal: %s\n", q.TotalAmount.StringFixed(2))
	}
	if q.ValidUntil != nil {
		fmt.Fprintf(&body, "Valid until: %s\n", q.ValidUntil.Format("02 Jan 2006"))
	}

	if err := j.Mailer.Send(ctx, Message{
		To:      to,
		Subject: "Quotation " + q.ReferenceNumber,
		Body:    body.String(),
	}); err != nil {
		return err
	}
	j.Metrics.AddProcessed(TaskQuotationSent, 1)
	j.logger().Info("quotation email sent", slog.String("quotation_id", q.ID.String()), slog.String("to", to))
	return nil
}

// HandleCustomerDecision processes TaskCustomerDecision tasks.
func (j *NotificationJob) HandleCustomerDecision(ctx context.Context, t *asynq.Task) (err error) {
	var payload CustomerDecisionPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	tracker := j.Metrics.Track(TaskCustomerDecision)
	defer func() { err = tracker.End(err) }()

	c, err := j.Customers.Get(ctx, payload.CustomerID)
	if err != nil {
		return skipIfGone(err)
	}

	msg := Message{To: c.Email}
	switch payload.Status {
	case customers.StatusApproved:
		msg.Subject = "Your B2B account is approved"
		msg.Body = fmt.Sprintf("Dear %s,\n\nYour B2B account has been approved with a %s%% discount on MRP.\n",
			c.Name, payload.Discount.StringFixed(2))
	case customers.StatusRejected:
		msg.Subject = "Your B2B application"
		msg.Body = fmt.Sprintf("Dear %s,\n\nWe are unable to approve your B2B application at this time.\n", c.Name)
	default:
		return fmt.Errorf("unknown decision %q: %w", payload.Status, asynq.SkipRetry)
	}

	if err := j.Mailer.Send(ctx, msg); err != nil {
		return err
	}
	j.Metrics.AddProcessed(TaskCustomerDecision, 1)
	return nil
}

func (j *NotificationJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}

// skipIfGone stops retries for records that no longer exist.
func skipIfGone(err error) error {
	if errors.Is(err, httpx.ErrNotFound) {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return err
}
