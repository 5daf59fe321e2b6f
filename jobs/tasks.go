package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// QueueMaintenance holds housekeeping work.
	QueueMaintenance = "maintenance"

	// TaskQuotationSent emails the customer a quotation that moved to Sent.
	TaskQuotationSent = "quotation:sent"
	// TaskCustomerDecision emails a B2B applicant the approval outcome.
	TaskCustomerDecision = "customer:decision"
	// TaskIdempotencyCleanup purges stale idempotency keys.
	TaskIdempotencyCleanup = "maintenance:idempotency"
)

// QuotationSentPayload identifies the quotation to announce.
type QuotationSentPayload struct {
	QuotationID uuid.UUID `json:"quotation_id"`
}

// CustomerDecisionPayload describes an approval decision.
type CustomerDecisionPayload struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	Status     string          `json:"status"`
	Discount   decimal.Decimal `json:"discount_percentage"`
}

// IdempotencyCleanupPayload configures the purge window.
type IdempotencyCleanupPayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewQuotationSentTask constructs an Asynq task.
func NewQuotationSentTask(id uuid.UUID) (*asynq.Task, error) {
	data, err := json.Marshal(QuotationSentPayload{QuotationID: id})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskQuotationSent, data), nil
}

// NewCustomerDecisionTask constructs an Asynq task.
func NewCustomerDecisionTask(payload CustomerDecisionPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCustomerDecision, data), nil
}

// NewIdempotencyCleanupTask constructs the cron task.
func NewIdempotencyCleanupTask(retentionDays int) (*asynq.Task, error) {
	data, err := json.Marshal(IdempotencyCleanupPayload{RetentionDays: retentionDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}
