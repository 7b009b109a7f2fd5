package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"hisaab/internal/core"
	"hisaab/internal/storage"
)

type expenseJSON struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	AmountPaise int64  `json:"amount_paise"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	PaidBy      string `json:"paid_by"`
	Note        string `json:"note,omitempty"`
}

// expenseInput is the write shape. Amount is a decimal rupee string such as
// "450" or "120.50"; an empty date means today.
type expenseInput struct {
	Date     string `json:"date"`
	Amount   string `json:"amount"`
	Category string `json:"category"`
	PaidBy   string `json:"paid_by"`
	Note     string `json:"note"`
}

func toExpenseJSON(e core.Expense) expenseJSON {
	return expenseJSON{
		ID:          e.ID,
		Date:        e.Date.ISO(),
		AmountPaise: e.Amount.Paise,
		Amount:      e.Amount.String(),
		Category:    e.Category,
		PaidBy:      e.PaidBy,
		Note:        e.Note,
	}
}

func (in expenseInput) toExpense() (core.Expense, error) {
	date := core.Today()
	if in.Date != "" {
		t, err := time.Parse("2006-01-02", in.Date)
		if err != nil {
			return core.Expense{}, errors.New("date must be YYYY-MM-DD")
		}
		date = core.NewDate(t.Year(), int(t.Month()), t.Day())
	}

	paise, err := core.ParseDecimalToPaise(in.Amount)
	if err != nil {
		return core.Expense{}, err
	}

	return core.Expense{
		Date:     date,
		Amount:   core.Money{Paise: paise},
		Category: in.Category,
		PaidBy:   in.PaidBy,
		Note:     in.Note,
	}, nil
}

// parseMonthFilter reads an optional month=YYYY-MM query parameter.
func parseMonthFilter(r *http.Request) (storage.ExpenseFilter, error) {
	f := storage.ExpenseFilter{
		Category: r.URL.Query().Get("category"),
		PaidBy:   r.URL.Query().Get("paid_by"),
	}

	month := r.URL.Query().Get("month")
	if month == "" {
		return f, nil
	}
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return storage.ExpenseFilter{}, errors.New("month must be YYYY-MM")
	}
	f.Year = t.Year()
	f.Month = int(t.Month())
	return f, nil
}

func (s *server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := parseMonthFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	expenses, err := s.expenses.ListExpenses(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}

	out := make([]expenseJSON, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseJSON(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in expenseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	exp, err := in.toExpense()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.expenses.InsertExpense(r.Context(), exp)
	if err != nil {
		if isValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to save expense")
		return
	}
	exp.ID = id
	s.invalidateOverviews()

	writeJSON(w, http.StatusCreated, toExpenseJSON(exp))
}

func (s *server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	var in expenseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	exp, err := in.toExpense()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	exp.ID = id

	if err := s.expenses.UpdateExpense(r.Context(), exp); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "expense not found")
		case isValidation(err):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to update expense")
		}
		return
	}
	s.invalidateOverviews()

	writeJSON(w, http.StatusOK, toExpenseJSON(exp))
}

func (s *server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	if err := s.expenses.DeleteExpense(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete expense")
		return
	}
	s.invalidateOverviews()

	w.WriteHeader(http.StatusNoContent)
}

func isValidation(err error) bool {
	return errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrEmptyCategory) ||
		errors.Is(err, core.ErrEmptyPayer)
}
