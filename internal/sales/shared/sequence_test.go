package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	at := time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "QT-2503-0001", FormatNumber(PrefixQuotation, at, 1))
	assert.Equal(t, "SO-2503-12345", FormatNumber(PrefixOrder, at, 12345))
}
