// Package storage implements the household ledger over SQLite: expenses,
// per-category monthly budgets, and the category/user registries the
// quick-entry parser reads.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"hisaab/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row the caller named does not exist.
var ErrNotFound = errors.New("not found")

// ExpenseFilter narrows list/sum queries. Zero Year+Month means all time.
type ExpenseFilter struct {
	Year     int
	Month    int // 1-12, only honoured together with Year
	Category string
	PaidBy   string
}

// CategoryTotal is a per-category aggregate row.
type CategoryTotal struct {
	Category string
	Total    core.Money
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertExpense persists an expense and returns its row ID.
func (r *SQLiteRepository) InsertExpense(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, fmt.Errorf("validate expense: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (date, amount_paise, category, paid_by, note)
		VALUES (?, ?, ?, ?, ?)`,
		e.Date.ISO(), e.Amount.Paise, e.Category, e.PaidBy, e.Note)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"date", e.Date.ISO(),
		"amount_paise", e.Amount.Paise,
		"category", e.Category,
		"paid_by", e.PaidBy)

	return id, nil
}

// UpdateExpense rewrites every editable field of an existing expense.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validate expense: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses
		SET date = ?, amount_paise = ?, category = ?, paid_by = ?, note = ?
		WHERE id = ?`,
		e.Date.ISO(), e.Amount.Paise, e.Category, e.PaidBy, e.Note, e.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Expense updated", "id", e.ID)
	return nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, date, amount_paise, category, paid_by, note
		FROM expenses WHERE id = ?`, id)

	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// ListExpenses returns expenses matching the filter, newest first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, f ExpenseFilter) ([]core.Expense, error) {
	where, args := f.clauses()
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, amount_paise, category, paid_by, note
		FROM expenses`+where+`
		ORDER BY date DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

// SumExpenses totals the matching expenses.
func (r *SQLiteRepository) SumExpenses(ctx context.Context, f ExpenseFilter) (core.Money, error) {
	where, args := f.clauses()
	var total sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(amount_paise) FROM expenses`+where, args...).Scan(&total)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses: %w", err)
	}
	return core.Money{Paise: total.Int64}, nil
}

// SumByCategory totals the matching expenses grouped by category.
func (r *SQLiteRepository) SumByCategory(ctx context.Context, f ExpenseFilter) ([]CategoryTotal, error) {
	where, args := f.clauses()
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, SUM(amount_paise)
		FROM expenses`+where+`
		GROUP BY category
		ORDER BY category`, args...)
	if err != nil {
		return nil, fmt.Errorf("sum by category: %w", err)
	}
	defer rows.Close()

	var out []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total.Paise); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", err)
	}
	return out, nil
}

// GetBudget returns the monthly budget for a category, ErrNotFound when none
// is configured.
func (r *SQLiteRepository) GetBudget(ctx context.Context, category string) (core.Money, error) {
	var paise int64
	err := r.db.QueryRowContext(ctx,
		`SELECT monthly_paise FROM budgets WHERE category = ?`, category).Scan(&paise)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Money{}, ErrNotFound
	}
	if err != nil {
		return core.Money{}, fmt.Errorf("get budget: %w", err)
	}
	return core.Money{Paise: paise}, nil
}

// SetBudget upserts the monthly budget for a category.
func (r *SQLiteRepository) SetBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("validate budget: %w", err)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (category, monthly_paise)
		VALUES (?, ?)
		ON CONFLICT(category)
		DO UPDATE SET monthly_paise = excluded.monthly_paise`,
		b.Category, b.Monthly.Paise)
	if err != nil {
		return fmt.Errorf("set budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved",
		"category", b.Category,
		"monthly_paise", b.Monthly.Paise)
	return nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, monthly_paise FROM budgets ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.Category, &b.Monthly.Paise); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return out, nil
}

// SumBudgets totals every configured monthly budget.
func (r *SQLiteRepository) SumBudgets(ctx context.Context) (core.Money, error) {
	var total sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT SUM(monthly_paise) FROM budgets`).Scan(&total)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum budgets: %w", err)
	}
	return core.Money{Paise: total.Int64}, nil
}

// ListCategories returns the category registry name-sorted, the order the
// quick-entry parser scans it in.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]string, error) {
	return r.listNames(ctx, `SELECT name FROM categories ORDER BY name`)
}

func (r *SQLiteRepository) AddCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyCategory
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO categories (name, position)
		VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM categories))`, name)
	if err != nil {
		return fmt.Errorf("add category: %w", err)
	}

	slog.InfoContext(ctx, "Category added", "name", name)
	return nil
}

func (r *SQLiteRepository) RemoveCategory(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("remove category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Category removed", "name", name)
	return nil
}

// ListUsers returns the two household members in registry order. The order
// doubles as the payer-match tie-break, so it is position, not name.
func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]string, error) {
	return r.listNames(ctx, `SELECT name FROM users ORDER BY position`)
}

// PendingSyncExpenses returns expenses not yet mirrored to the backup sheet.
func (r *SQLiteRepository) PendingSyncExpenses(ctx context.Context, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, amount_paise, category, paid_by, note
		FROM expenses
		WHERE synced = 0
		ORDER BY id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("pending sync expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending expenses: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET synced = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET sync_error = sync_error + 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark sync error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) listNames(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate names: %w", err)
	}
	return out, nil
}

func (f ExpenseFilter) clauses() (string, []any) {
	var conds []string
	var args []any

	if f.Year != 0 && f.Month != 0 {
		// Dates are stored ISO, so a month is a simple prefix match. This
		// mirrors the "date LIKE ?" queries the dashboards run.
		conds = append(conds, "date LIKE ?")
		args = append(args, fmt.Sprintf("%04d-%02d%%", f.Year, f.Month))
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if f.PaidBy != "" {
		conds = append(conds, "paid_by = ?")
		args = append(args, f.PaidBy)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e       core.Expense
		dateStr string
	)
	if err := row.Scan(&e.ID, &dateStr, &e.Amount.Paise, &e.Category, &e.PaidBy, &e.Note); err != nil {
		return core.Expense{}, err
	}

	var y, m, d int
	if _, err := fmt.Sscanf(dateStr, "%d-%d-%d", &y, &m, &d); err != nil {
		return core.Expense{}, fmt.Errorf("parse date %q: %w", dateStr, err)
	}
	e.Date = core.NewDate(y, m, d)
	return e, nil
}
