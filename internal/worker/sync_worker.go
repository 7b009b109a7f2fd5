// Package worker mirrors committed expenses from the SQLite ledger to the
// spreadsheet backup, driven by AMQP messages with a periodic sweep as the
// recovery path for anything a message missed.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hisaab/internal/amqp"
	"hisaab/internal/core"
	"hisaab/internal/sheets"
)

// Store is the slice of the ledger the worker needs.
type Store interface {
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	PendingSyncExpenses(ctx context.Context, limit int) ([]core.Expense, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

type SyncWorker struct {
	store     Store
	appender  sheets.ExpenseAppender
	batchSize int
}

func NewSyncWorker(store Store, appender sheets.ExpenseAppender, batchSize int) *SyncWorker {
	return &SyncWorker{
		store:     store,
		appender:  appender,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes one sync message: refetch the expense, append
// it to the sheet, mark the row synced.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.ExpenseSyncMessage) error {
	expense, err := w.store.GetExpense(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get expense %d: %w", msg.ID, err)
	}
	return w.syncExpense(ctx, expense)
}

// ProcessPending sweeps unsynced rows. This recovers expenses whose sync
// message was lost, and retries rows that failed earlier.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.store.PendingSyncExpenses(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending expenses: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending expenses", "count", len(pending))

	for _, expense := range pending {
		if err := w.syncExpense(ctx, expense); err != nil {
			slog.ErrorContext(ctx, "Failed to sync pending expense",
				"id", expense.ID, "error", err)
		}
	}
	return nil
}

// RunPeriodic sweeps pending rows on the given interval until the context is
// cancelled. An immediate sweep runs first to catch up after downtime.
func (w *SyncWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	if err := w.ProcessPending(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup sync sweep failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic sync sweep failed", "error", err)
			}
		}
	}
}

func (w *SyncWorker) syncExpense(ctx context.Context, expense core.Expense) error {
	ref, err := w.appender.Append(ctx, expense)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, expense.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error",
				"id", expense.ID, "error", markErr)
		}
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.store.MarkSynced(ctx, expense.ID); err != nil {
		// The append worked, so log and move on rather than requeue a
		// duplicate row.
		slog.ErrorContext(ctx, "Failed to mark as synced",
			"id", expense.ID, "error", err)
		return nil
	}

	slog.InfoContext(ctx, "Expense synced to sheet",
		"id", expense.ID,
		"sheet_ref", ref,
		"amount_paise", expense.Amount.Paise)
	return nil
}
