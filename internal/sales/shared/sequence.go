package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/basteen-Dev/pavilion/internal/platform/db"
)

// Document number prefixes.
const (
	PrefixQuotation = "QT"
	PrefixOrder     = "SO"
)

// NextNumber allocates the next document number for prefix in the month of
// at, formatted PREFIX-YYMM-NNNN. Call it inside the transaction that inserts
// the document so a rollback also releases the number.
func NextNumber(ctx context.Context, q db.DBTX, prefix string, at time.Time) (string, error) {
	var seq int64
	period := at.Format("200601")
	err := q.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, prefix, period).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("next %s number: %w", prefix, err)
	}
	return FormatNumber(prefix, at, seq), nil
}

// FormatNumber renders a document number.
func FormatNumber(prefix string, at time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, at.Format("0601"), seq)
}
