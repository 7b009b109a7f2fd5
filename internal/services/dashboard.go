package services

import (
	"context"
	"fmt"
	"sort"

	"hisaab/internal/core"
	"hisaab/internal/storage"
)

// DashboardStore is the read-side slice of the ledger the dashboard needs.
type DashboardStore interface {
	SumExpenses(ctx context.Context, f storage.ExpenseFilter) (core.Money, error)
	SumByCategory(ctx context.Context, f storage.ExpenseFilter) ([]storage.CategoryTotal, error)
	ListBudgets(ctx context.Context) ([]core.Budget, error)
	SumBudgets(ctx context.Context) (core.Money, error)
	ListCategories(ctx context.Context) ([]string, error)
}

// DashboardService produces the spend-versus-budget month view.
type DashboardService struct {
	store DashboardStore
}

func NewDashboardService(store DashboardStore) *DashboardService {
	return &DashboardService{store: store}
}

// MonthOverview aggregates one calendar month: total spent against the sum
// of all monthly budgets, plus a per-category breakdown. Every registered
// category appears even with zero spend; categories that were removed from
// the registry but still have expenses appear after them.
func (s *DashboardService) MonthOverview(ctx context.Context, year, month int) (core.MonthOverview, error) {
	overview := core.MonthOverview{Year: year, Month: month}
	filter := storage.ExpenseFilter{Year: year, Month: month}

	spent, err := s.store.SumExpenses(ctx, filter)
	if err != nil {
		return overview, fmt.Errorf("sum expenses: %w", err)
	}
	overview.TotalSpent = spent

	budgetTotal, err := s.store.SumBudgets(ctx)
	if err != nil {
		return overview, fmt.Errorf("sum budgets: %w", err)
	}
	overview.TotalBudget = budgetTotal
	overview.Remaining = core.Money{Paise: budgetTotal.Paise - spent.Paise}
	overview.OverBudget = overview.Remaining.Paise < 0

	byCategory, err := s.store.SumByCategory(ctx, filter)
	if err != nil {
		return overview, fmt.Errorf("sum by category: %w", err)
	}
	spentBy := make(map[string]core.Money, len(byCategory))
	for _, ct := range byCategory {
		spentBy[ct.Category] = ct.Total
	}

	budgets, err := s.store.ListBudgets(ctx)
	if err != nil {
		return overview, fmt.Errorf("list budgets: %w", err)
	}
	budgetBy := make(map[string]core.Money, len(budgets))
	for _, b := range budgets {
		budgetBy[b.Category] = b.Monthly
	}

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return overview, fmt.Errorf("list categories: %w", err)
	}

	seen := make(map[string]bool, len(categories))
	for _, name := range categories {
		seen[name] = true
		overview.ByCategory = append(overview.ByCategory, core.CategorySpend{
			Category: name,
			Spent:    spentBy[name],
			Budget:   budgetBy[name],
		})
	}

	// Orphaned spend rows (category since removed from the registry).
	var extras []string
	for name := range spentBy {
		if !seen[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	for _, name := range extras {
		overview.ByCategory = append(overview.ByCategory, core.CategorySpend{
			Category: name,
			Spent:    spentBy[name],
			Budget:   budgetBy[name],
		})
	}

	return overview, nil
}
