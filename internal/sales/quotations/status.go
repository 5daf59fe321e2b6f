package quotations

import (
	"fmt"
	"strings"

	"github.com/basteen-Dev/pavilion/internal/platform/httpx"
)

type Status string

const (
	StatusDraft      Status = "Draft"
	StatusSent       Status = "Sent"
	StatusApproved   Status = "Approved"
	StatusRejected   Status = "Rejected"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
)

// ErrInvalidStatus rejects unknown statuses and illegal transitions.
var ErrInvalidStatus = fmt.Errorf("%w: invalid quotation status", httpx.ErrValidation)

var allStatuses = []Status{
	StatusDraft, StatusSent, StatusApproved, StatusRejected,
	StatusProcessing, StatusShipped, StatusCompleted, StatusCancelled,
}

var transitions = map[Status][]Status{
	StatusDraft:      {StatusSent, StatusCancelled},
	StatusSent:       {StatusApproved, StatusRejected, StatusDraft, StatusCancelled},
	StatusApproved:   {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusCompleted},
}

// ParseStatus matches s against the known statuses ignoring case.
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, st := range allStatuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}
