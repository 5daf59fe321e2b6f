package quotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basteen-Dev/pavilion/internal/platform/httpx"
)

func TestParseStatusIgnoresCase(t *testing.T) {
	for in, want := range map[string]Status{
		"draft":      StatusDraft,
		"SENT":       StatusSent,
		" Approved ": StatusApproved,
		"processing": StatusProcessing,
		"CaNcElLeD":  StatusCancelled,
	} {
		got, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseStatus("archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestTransitionTable(t *testing.T) {
	allowed := map[Status][]Status{
		StatusDraft:      {StatusSent, StatusCancelled},
		StatusSent:       {StatusApproved, StatusRejected, StatusDraft, StatusCancelled},
		StatusApproved:   {StatusProcessing, StatusCancelled},
		StatusProcessing: {StatusShipped, StatusCancelled},
		StatusShipped:    {StatusCompleted},
	}
	for _, from := range allStatuses {
		want := map[Status]bool{}
		for _, to := range allowed[from] {
			want[to] = true
		}
		for _, to := range allStatuses {
			assert.Equal(t, want[to], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}

	for _, st := range []Status{StatusRejected, StatusCompleted, StatusCancelled} {
		assert.True(t, st.Terminal(), st)
	}
	assert.False(t, StatusDraft.Terminal())
}
