package quickentry

import (
	"context"
	"errors"
	"testing"
	"time"

	"hisaab/internal/core"
)

type fakeLedger struct {
	categories []string
	users      []string
	inserted   []core.Expense
	insertErr  error
	listErr    error
}

func (f *fakeLedger) InsertExpense(_ context.Context, e core.Expense) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.inserted = append(f.inserted, e)
	return int64(len(f.inserted)), nil
}

func (f *fakeLedger) ListCategories(context.Context) ([]string, error) {
	return f.categories, f.listErr
}

func (f *fakeLedger) ListUsers(context.Context) ([]string, error) {
	return f.users, f.listErr
}

func newTestHandler(ledger *fakeLedger) *Handler {
	fixed := time.Date(2026, 8, 28, 15, 4, 5, 0, time.UTC)
	return NewHandlerWithClock(ledger, func() time.Time { return fixed })
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		categories: []string{"Food", "Travel", "Medical", "Shopping", "Other"},
		users:      []string{"Uddeshya", "Megha"},
	}
}

func TestHandleTurnStagesWellFormedCandidate(t *testing.T) {
	ledger := newFakeLedger()
	h := newTestHandler(ledger)

	s, turns, err := h.HandleTurn(context.Background(), Session{}, "450 uber Megha")
	if err != nil {
		t.Fatalf("HandleTurn error: %v", err)
	}
	if s.State != StateAwaitingConfirmation {
		t.Fatalf("state = %v, want awaiting confirmation", s.State)
	}
	if s.Pending == nil {
		t.Fatalf("pending candidate missing")
	}
	want := Candidate{Amount: 450, Category: "Travel", Payer: "Megha", Note: "450 uber Megha"}
	if *s.Pending != want {
		t.Fatalf("pending = %+v, want %+v", *s.Pending, want)
	}
	if len(turns) != 2 || turns[0].Role != RoleUser || turns[1].Role != RoleAssistant {
		t.Fatalf("unexpected turns: %+v", turns)
	}
	if len(ledger.inserted) != 0 {
		t.Fatalf("staging must not touch the store")
	}
}

func TestHandleTurnMissingFieldStaysIdle(t *testing.T) {
	ledger := newFakeLedger()
	h := newTestHandler(ledger)

	s, turns, err := h.HandleTurn(context.Background(), Session{}, "120 chai")
	if err != nil {
		t.Fatalf("HandleTurn error: %v", err)
	}
	if s.State != StateIdle || s.Pending != nil {
		t.Fatalf("session should stay idle with no pending, got %+v", s)
	}
	if len(turns) != 2 || turns[1].Text != msgMissingFields {
		t.Fatalf("expected missing-field message, got %+v", turns)
	}
	if len(ledger.inserted) != 0 {
		t.Fatalf("no store call expected")
	}
}

func TestHandleTurnConfirmCommitsOnce(t *testing.T) {
	ledger := newFakeLedger()
	h := newTestHandler(ledger)
	ctx := context.Background()

	s, _, err := h.HandleTurn(ctx, Session{}, "200 Shopping Uddeshya")
	if err != nil {
		t.Fatalf("stage error: %v", err)
	}

	// Mixed case still counts as yes.
	s, turns, err := h.HandleTurn(ctx, s, "Yes")
	if err != nil {
		t.Fatalf("confirm error: %v", err)
	}
	if s.State != StateIdle || s.Pending != nil {
		t.Fatalf("session should return to idle, got %+v", s)
	}
	if len(ledger.inserted) != 1 {
		t.Fatalf("expected exactly one insert, got %d", len(ledger.inserted))
	}
	got := ledger.inserted[0]
	if got.Amount != core.FromRupees(200) || got.Category != "Shopping" || got.PaidBy != "Uddeshya" {
		t.Fatalf("inserted = %+v", got)
	}
	if got.Note != "200 Shopping Uddeshya" {
		t.Fatalf("note not verbatim: %q", got.Note)
	}
	// Commit date is the clock's date, not anything carried from parse time.
	if got.Date.ISO() != "2026-08-28" {
		t.Fatalf("date = %s", got.Date.ISO())
	}
	if turns[1].Role != RoleAssistant || turns[1].Text == "" {
		t.Fatalf("expected success turn, got %+v", turns)
	}
}

func TestHandleTurnAnythingElseCancels(t *testing.T) {
	for _, decision := range []string{"no", "nope", "yess", "  ", "why?", "yes please"} {
		ledger := newFakeLedger()
		h := newTestHandler(ledger)
		ctx := context.Background()

		s, _, err := h.HandleTurn(ctx, Session{}, "450 uber Megha")
		if err != nil {
			t.Fatalf("stage error: %v", err)
		}
		s, turns, err := h.HandleTurn(ctx, s, decision)
		if err != nil {
			t.Fatalf("decision %q error: %v", decision, err)
		}
		if s.State != StateIdle || s.Pending != nil {
			t.Fatalf("decision %q should cancel back to idle", decision)
		}
		if len(ledger.inserted) != 0 {
			t.Fatalf("decision %q must not insert", decision)
		}
		if turns[1].Text != msgCancelled {
			t.Fatalf("decision %q: expected cancellation turn, got %+v", decision, turns)
		}
	}
}

func TestHandleTurnWhitespaceAroundYes(t *testing.T) {
	ledger := newFakeLedger()
	h := newTestHandler(ledger)
	ctx := context.Background()

	s, _, _ := h.HandleTurn(ctx, Session{}, "450 uber Megha")
	_, _, err := h.HandleTurn(ctx, s, "  YES ")
	if err != nil {
		t.Fatalf("confirm error: %v", err)
	}
	if len(ledger.inserted) != 1 {
		t.Fatalf("expected one insert")
	}
}

// A new expense-looking phrase arriving while a confirmation is pending is
// read strictly as a decision: it cancels the staged candidate and is not
// parsed as a fresh expense.
func TestHandleTurnExpenseInputWhilePendingCancels(t *testing.T) {
	ledger := newFakeLedger()
	h := newTestHandler(ledger)
	ctx := context.Background()

	s, _, _ := h.HandleTurn(ctx, Session{}, "450 uber Megha")
	s, turns, err := h.HandleTurn(ctx, s, "300 pizza Uddeshya")
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if s.State != StateIdle || s.Pending != nil {
		t.Fatalf("expected idle with nothing staged, got %+v", s)
	}
	if len(ledger.inserted) != 0 {
		t.Fatalf("neither expense may be saved")
	}
	if turns[1].Text != msgCancelled {
		t.Fatalf("expected cancellation, got %+v", turns)
	}
}

func TestHandleTurnStoreFailureSurfacesAndRecovers(t *testing.T) {
	ledger := newFakeLedger()
	h := newTestHandler(ledger)
	ctx := context.Background()

	s, _, _ := h.HandleTurn(ctx, Session{}, "450 uber Megha")
	ledger.insertErr = errors.New("connection lost")

	s, turns, err := h.HandleTurn(ctx, s, "yes")
	if err == nil {
		t.Fatalf("store failure must propagate")
	}
	if s.State != StateIdle || s.Pending != nil {
		t.Fatalf("session must recover to idle, got %+v", s)
	}
	if turns[1].Text != msgStoreFailure {
		t.Fatalf("expected visible failure turn, got %+v", turns)
	}

	// The candidate was discarded; the machine keeps cycling.
	ledger.insertErr = nil
	s, _, err = h.HandleTurn(ctx, s, "80 chai Megha")
	if err != nil {
		t.Fatalf("follow-up error: %v", err)
	}
	if s.State != StateAwaitingConfirmation {
		t.Fatalf("session should accept new input after a failure")
	}
}

func TestHandleTurnLedgerReadFailure(t *testing.T) {
	ledger := newFakeLedger()
	ledger.listErr = errors.New("db locked")
	h := newTestHandler(ledger)

	s, turns, err := h.HandleTurn(context.Background(), Session{}, "450 uber Megha")
	if err == nil {
		t.Fatalf("read failure must propagate")
	}
	if s.State != StateIdle {
		t.Fatalf("session should stay idle")
	}
	if turns[1].Text != msgStoreRead {
		t.Fatalf("expected ledger-unreachable turn, got %+v", turns)
	}
}
