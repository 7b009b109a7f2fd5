// Package sheets defines the outbound port for mirroring committed expenses
// to an external spreadsheet backup.
package sheets

import (
	"context"

	"hisaab/internal/core"
)

// ExpenseAppender appends one expense row to the backup sheet and returns a
// reference to the written row.
type ExpenseAppender interface {
	Append(ctx context.Context, e core.Expense) (rowRef string, err error)
}
