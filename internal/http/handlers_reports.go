package http

import (
	"net/http"
	"time"

	"finledger/internal/core"
)

func (s *Server) handleMonthlyExpenses(w http.ResponseWriter, r *http.Request) {
	series, err := s.svc.Expenses.MonthlySummary(r.Context(), ownerID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "monthly expenses retrieved", series)
}

// handleExpenseBreakdown serves ?month=YYYY-MM, defaulting to the current month.
func (s *Server) handleExpenseBreakdown(w http.ResponseWriter, r *http.Request) {
	breakdown, err := s.svc.Expenses.Breakdown(r.Context(), ownerID(r), r.URL.Query().Get("month"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "expense breakdown retrieved", breakdown)
}

func (s *Server) handleUserGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.svc.Goals.UserGoals(r.Context(), ownerID(r), r.URL.Query().Get("month"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "goals retrieved", goals)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var in core.GoalInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	goal, err := s.svc.Goals.Create(r.Context(), ownerID(r), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, "goal created", goal)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "goal")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var progress core.GoalProgress
	if err := decodeJSON(w, r, &progress); err != nil {
		respondError(w, r, err)
		return
	}

	goal, err := s.svc.Goals.Update(r.Context(), ownerID(r), id, progress)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "goal updated", goal)
}

// handleGoalSavingsSummary reports savings floored at zero per month.
func (s *Server) handleGoalSavingsSummary(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r, time.Now())
	if err != nil {
		respondError(w, r, err)
		return
	}

	summary, err := s.svc.Goals.SavingsSummary(r.Context(), ownerID(r), year)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "savings summary retrieved", summary)
}

// handleSavingsSummary reports signed monthly savings.
func (s *Server) handleSavingsSummary(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r, time.Now())
	if err != nil {
		respondError(w, r, err)
		return
	}

	summary, err := s.svc.Savings.Summary(r.Context(), ownerID(r), year)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "savings summary retrieved", summary)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.svc.Catalog.ListCategories(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "categories retrieved", categories)
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.svc.Catalog.ListBills(r.Context(), ownerID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "bills retrieved", bills)
}
