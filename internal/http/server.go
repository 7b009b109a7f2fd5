// Package http exposes the JSON API: the quick-entry chat endpoint, expense
// and budget CRUD, and the monthly dashboard.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"hisaab/internal/cache"
	"hisaab/internal/core"
	"hisaab/internal/middleware/trace"
	"hisaab/internal/quickentry"
	"hisaab/internal/storage"
)

// ExpenseStore is the expense surface of the ledger, implemented by
// services.ExpenseService.
type ExpenseStore interface {
	InsertExpense(ctx context.Context, e core.Expense) (int64, error)
	UpdateExpense(ctx context.Context, e core.Expense) error
	DeleteExpense(ctx context.Context, id int64) error
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	ListExpenses(ctx context.Context, f storage.ExpenseFilter) ([]core.Expense, error)
	ListCategories(ctx context.Context) ([]string, error)
	ListUsers(ctx context.Context) ([]string, error)
}

// BudgetStore is the budget and registry surface of the ledger.
type BudgetStore interface {
	SetBudget(ctx context.Context, b core.Budget) error
	ListBudgets(ctx context.Context) ([]core.Budget, error)
	AddCategory(ctx context.Context, name string) error
	RemoveCategory(ctx context.Context, name string) error
}

// Dashboard produces the month spend-versus-budget view.
type Dashboard interface {
	MonthOverview(ctx context.Context, year, month int) (core.MonthOverview, error)
}

// ChatHandler runs one quick-entry turn.
type ChatHandler interface {
	HandleTurn(ctx context.Context, s quickentry.Session, input string) (quickentry.Session, []quickentry.Turn, error)
}

type server struct {
	expenses ExpenseStore
	budgets  BudgetStore
	dash     Dashboard
	chat     ChatHandler

	sessions      *sessionRegistry
	overviewCache *cache.Cache[core.MonthOverview]
}

// NewServer wires the routes and returns a ready-to-run http.Server. The
// caller owns timeouts and shutdown.
func NewServer(addr string, expenses ExpenseStore, budgets BudgetStore, dash Dashboard, chat ChatHandler) *http.Server {
	s := &server{
		expenses:      expenses,
		budgets:       budgets,
		dash:          dash,
		chat:          chat,
		sessions:      newSessionRegistry(),
		overviewCache: cache.New[core.MonthOverview](24, 30*time.Second),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/chat/{session}", s.handleChatTranscript)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("PUT /api/budgets/{category}", s.handleSetBudget)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleAddCategory)
	mux.HandleFunc("DELETE /api/categories/{name}", s.handleRemoveCategory)

	mux.HandleFunc("GET /api/users", s.handleListUsers)

	mux.HandleFunc("GET /healthz", s.handleHealth)

	return &http.Server{
		Addr:    addr,
		Handler: trace.Middleware(mux),
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// invalidateOverviews drops cached dashboard aggregates after any write.
func (s *server) invalidateOverviews() {
	s.overviewCache.Purge()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
