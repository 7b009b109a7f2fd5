package quickentry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hisaab/internal/core"
)

// State is the confirmation machine state.
type State int

const (
	// StateIdle means no candidate is staged; free text is parsed as a new
	// expense.
	StateIdle State = iota
	// StateAwaitingConfirmation means one well-formed candidate is staged
	// and the next turn is read strictly as a yes/no decision.
	StateAwaitingConfirmation
)

func (s State) String() string {
	switch s {
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	default:
		return "idle"
	}
}

// Session is the explicit per-session state threaded through HandleTurn.
// The caller keeps the returned value and passes it back on the next turn;
// nothing is shared between turns besides this value.
type Session struct {
	State   State
	Pending *Candidate
}

// Ledger is the slice of the expense store the quick-entry flow needs.
type Ledger interface {
	InsertExpense(ctx context.Context, e core.Expense) (int64, error)
	ListCategories(ctx context.Context) ([]string, error)
	ListUsers(ctx context.Context) ([]string, error)
}

// Handler runs one chat turn at a time against a ledger.
type Handler struct {
	ledger Ledger
	now    func() time.Time
}

func NewHandler(ledger Ledger) *Handler {
	return &Handler{ledger: ledger, now: time.Now}
}

// NewHandlerWithClock injects the commit-date clock, for tests.
func NewHandlerWithClock(ledger Ledger, now func() time.Time) *Handler {
	return &Handler{ledger: ledger, now: now}
}

const (
	msgMissingFields = `Please include both the amount and who paid, e.g. "450 uber Megha".`
	msgCancelled     = "Okay, cancelled. Nothing was saved."
	msgStoreFailure  = "Couldn't save the expense, please try again later."
	msgStoreRead     = "Couldn't reach the expense ledger, please try again later."
)

// HandleTurn processes one user turn and returns the replacement session
// state plus every transcript turn this input produced (the user turn first,
// then the assistant's). A non-nil error means the ledger failed; the
// returned session is still valid and the assistant turns already describe
// the failure to the user.
func (h *Handler) HandleTurn(ctx context.Context, s Session, input string) (Session, []Turn, error) {
	turns := []Turn{{Role: RoleUser, Text: input}}

	if s.State == StateAwaitingConfirmation && s.Pending != nil {
		next, reply, err := h.decide(ctx, *s.Pending, input)
		return next, append(turns, reply...), err
	}

	next, reply, err := h.capture(ctx, input)
	return next, append(turns, reply...), err
}

// capture parses free text and stages a well-formed candidate.
func (h *Handler) capture(ctx context.Context, input string) (Session, []Turn, error) {
	categories, err := h.ledger.ListCategories(ctx)
	if err != nil {
		return Session{}, []Turn{{Role: RoleAssistant, Text: msgStoreRead}},
			fmt.Errorf("list categories: %w", err)
	}
	users, err := h.ledger.ListUsers(ctx)
	if err != nil {
		return Session{}, []Turn{{Role: RoleAssistant, Text: msgStoreRead}},
			fmt.Errorf("list users: %w", err)
	}

	cand := Parse(input, categories, users)
	slog.DebugContext(ctx, "Parsed quick-entry input",
		"amount", cand.Amount,
		"category", cand.Category,
		"payer", cand.Payer)

	if !cand.WellFormed() {
		return Session{}, []Turn{{Role: RoleAssistant, Text: msgMissingFields}}, nil
	}

	prompt := fmt.Sprintf(`Add %s under %s, paid by %s? Reply "yes" to save.`,
		core.FromRupees(cand.Amount), cand.Category, cand.Payer)
	return Session{State: StateAwaitingConfirmation, Pending: &cand},
		[]Turn{{Role: RoleAssistant, Text: prompt}}, nil
}

// decide resolves the staged candidate. Anything other than "yes" cancels;
// there is no third outcome. The candidate is cleared on both branches.
func (h *Handler) decide(ctx context.Context, cand Candidate, input string) (Session, []Turn, error) {
	if !isAffirmative(input) {
		slog.InfoContext(ctx, "Quick-entry candidate cancelled",
			"amount", cand.Amount,
			"category", cand.Category,
			"payer", cand.Payer)
		return Session{}, []Turn{{Role: RoleAssistant, Text: msgCancelled}}, nil
	}

	now := h.now()
	exp := core.Expense{
		Date:     core.NewDate(now.Year(), int(now.Month()), now.Day()),
		Amount:   core.FromRupees(cand.Amount),
		Category: cand.Category,
		PaidBy:   cand.Payer,
		Note:     cand.Note,
	}

	id, err := h.ledger.InsertExpense(ctx, exp)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to commit quick-entry expense",
			"error", err,
			"amount_paise", exp.Amount.Paise,
			"category", exp.Category)
		return Session{}, []Turn{{Role: RoleAssistant, Text: msgStoreFailure}},
			fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Quick-entry expense saved",
		"id", id,
		"amount_paise", exp.Amount.Paise,
		"category", exp.Category,
		"paid_by", exp.PaidBy)
	done := fmt.Sprintf("Saved %s under %s, paid by %s.", exp.Amount, exp.Category, exp.PaidBy)
	return Session{}, []Turn{{Role: RoleAssistant, Text: done}}, nil
}

func isAffirmative(input string) bool {
	return strings.EqualFold(strings.TrimSpace(input), "yes")
}
