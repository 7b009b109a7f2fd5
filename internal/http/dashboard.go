package http

import (
	"fmt"
	"net/http"
	"time"

	"hisaab/internal/core"
)

type categorySpendJSON struct {
	Category    string `json:"category"`
	SpentPaise  int64  `json:"spent_paise"`
	Spent       string `json:"spent"`
	BudgetPaise int64  `json:"budget_paise"`
	Budget      string `json:"budget"`
}

type overviewJSON struct {
	Month            string              `json:"month"`
	TotalSpentPaise  int64               `json:"total_spent_paise"`
	TotalSpent       string              `json:"total_spent"`
	TotalBudgetPaise int64               `json:"total_budget_paise"`
	TotalBudget      string              `json:"total_budget"`
	RemainingPaise   int64               `json:"remaining_paise"`
	Remaining        string              `json:"remaining"`
	OverBudget       bool                `json:"over_budget"`
	ByCategory       []categorySpendJSON `json:"by_category"`
}

func toOverviewJSON(o core.MonthOverview) overviewJSON {
	rows := make([]categorySpendJSON, 0, len(o.ByCategory))
	for _, c := range o.ByCategory {
		rows = append(rows, categorySpendJSON{
			Category:    c.Category,
			SpentPaise:  c.Spent.Paise,
			Spent:       c.Spent.String(),
			BudgetPaise: c.Budget.Paise,
			Budget:      c.Budget.String(),
		})
	}
	return overviewJSON{
		Month:            fmt.Sprintf("%04d-%02d", o.Year, o.Month),
		TotalSpentPaise:  o.TotalSpent.Paise,
		TotalSpent:       o.TotalSpent.String(),
		TotalBudgetPaise: o.TotalBudget.Paise,
		TotalBudget:      o.TotalBudget.String(),
		RemainingPaise:   o.Remaining.Paise,
		Remaining:        o.Remaining.String(),
		OverBudget:       o.OverBudget,
		ByCategory:       rows,
	}
}

// handleDashboard serves the month overview. month=YYYY-MM defaults to the
// current month. Results are cached briefly and purged on every write.
func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	year, month := time.Now().Year(), int(time.Now().Month())
	if m := r.URL.Query().Get("month"); m != "" {
		t, err := time.Parse("2006-01", m)
		if err != nil {
			writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
			return
		}
		year, month = t.Year(), int(t.Month())
	}

	key := fmt.Sprintf("%04d-%02d", year, month)
	if cached, ok := s.overviewCache.Get(key); ok {
		writeJSON(w, http.StatusOK, toOverviewJSON(cached))
		return
	}

	overview, err := s.dash.MonthOverview(r.Context(), year, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}
	s.overviewCache.Set(key, overview)

	writeJSON(w, http.StatusOK, toOverviewJSON(overview))
}
