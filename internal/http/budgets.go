package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"hisaab/internal/core"
	"hisaab/internal/storage"
)

type budgetJSON struct {
	Category     string `json:"category"`
	MonthlyPaise int64  `json:"monthly_paise"`
	Monthly      string `json:"monthly"`
}

// budgetInput carries the monthly cap as a decimal rupee string. "0" clears
// the cap without deleting the row.
type budgetInput struct {
	Monthly string `json:"monthly"`
}

func toBudgetJSON(b core.Budget) budgetJSON {
	return budgetJSON{
		Category:     b.Category,
		MonthlyPaise: b.Monthly.Paise,
		Monthly:      b.Monthly.String(),
	}
}

func (s *server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.budgets.ListBudgets(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list budgets")
		return
	}

	out := make([]budgetJSON, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetJSON(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")

	var in budgetInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var paise int64
	if trimmed := strings.TrimSpace(in.Monthly); trimmed != "" && trimmed != "0" {
		var err error
		paise, err = core.ParseDecimalToPaise(in.Monthly)
		if err != nil {
			writeError(w, http.StatusBadRequest, "monthly must be a positive decimal amount")
			return
		}
	}

	b := core.Budget{Category: category, Monthly: core.Money{Paise: paise}}
	if err := s.budgets.SetBudget(r.Context(), b); err != nil {
		if errors.Is(err, core.ErrEmptyCategory) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to set budget")
		return
	}
	s.invalidateOverviews()

	writeJSON(w, http.StatusOK, toBudgetJSON(b))
}

type categoryInput struct {
	Name string `json:"name"`
}

func (s *server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.expenses.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := s.budgets.AddCategory(r.Context(), in.Name); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to add category")
		return
	}
	s.invalidateOverviews()

	w.WriteHeader(http.StatusCreated)
}

func (s *server) handleRemoveCategory(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	if err := s.budgets.RemoveCategory(r.Context(), name); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to remove category")
		return
	}
	s.invalidateOverviews()

	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.expenses.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}
