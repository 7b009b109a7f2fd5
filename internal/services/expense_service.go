// Package services orchestrates the ledger store, the sync queue and the
// dashboard aggregation on top of it.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"hisaab/internal/amqp"
	"hisaab/internal/core"
	"hisaab/internal/storage"
)

// ExpenseService fronts every expense mutation. The SQLite write is
// authoritative; the sheet-sync message is best-effort and never fails the
// request (the periodic worker sweep picks up anything the queue missed).
type ExpenseService struct {
	store      *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewExpenseService(store *storage.SQLiteRepository, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// InsertExpense saves the expense and queues it for sheet backup. It is the
// commit path of the quick-entry confirmation as well as the manual form.
func (s *ExpenseService) InsertExpense(ctx context.Context, e core.Expense) (int64, error) {
	id, err := s.store.InsertExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}

	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not configured, skipping sync message", "id", id)
		return id, nil
	}
	if err := s.amqpClient.PublishExpenseSync(ctx, id); err != nil {
		// The expense is saved; the sweep will catch the missed message.
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "error", err)
	}

	return id, nil
}

func (s *ExpenseService) UpdateExpense(ctx context.Context, e core.Expense) error {
	return s.store.UpdateExpense(ctx, e)
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	return s.store.DeleteExpense(ctx, id)
}

func (s *ExpenseService) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

func (s *ExpenseService) ListExpenses(ctx context.Context, f storage.ExpenseFilter) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, f)
}

func (s *ExpenseService) ListCategories(ctx context.Context) ([]string, error) {
	return s.store.ListCategories(ctx)
}

func (s *ExpenseService) ListUsers(ctx context.Context) ([]string, error) {
	return s.store.ListUsers(ctx)
}

// Close releases the store and queue connections.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}
	return nil
}
