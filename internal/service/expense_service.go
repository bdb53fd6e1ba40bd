package service

import (
	"log/slog"
	"net/http"

	"github.com/hisaab-app/hisaab/internal/ledger"
	"github.com/hisaab-app/hisaab/internal/middleware"
	"github.com/hisaab-app/hisaab/internal/models"
)

// ExpenseService handles expense CRUD and the per-group expense listing.
type ExpenseService struct {
	ledger *ledger.Ledger
	groups *GroupService
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(l *ledger.Ledger, groups *GroupService) *ExpenseService {
	return &ExpenseService{ledger: l, groups: groups}
}

type createExpenseRequest struct {
	GroupID      string   `json:"group_id"`
	Title        string   `json:"title"`
	Amount       float64  `json:"amount"`
	Category     string   `json:"category"`
	PaidBy       string   `json:"paid_by"`
	Date         int64    `json:"date"`
	SplitBetween []string `json:"split_between"`
	Notes        string   `json:"notes"`
	Receipt      string   `json:"receipt"`
}

type updateExpenseRequest struct {
	GroupID      *string  `json:"group_id"`
	Title        *string  `json:"title"`
	Amount       *float64 `json:"amount"`
	Category     *string  `json:"category"`
	PaidBy       *string  `json:"paid_by"`
	Date         *int64   `json:"date"`
	SplitBetween []string `json:"split_between"`
	Notes        *string  `json:"notes"`
	Receipt      *string  `json:"receipt"`
}

// Create records an expense. An empty payer defaults to the authenticated
// user.
func (s *ExpenseService) Create(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.groups.requireMember(r, req.GroupID); err != nil {
		writeError(w, err)
		return
	}

	paidBy := req.PaidBy
	if paidBy == "" {
		paidBy = middleware.GetUserID(r.Context())
	}

	expense, err := s.ledger.AddExpense(r.Context(), ledger.ExpenseSpec{
		GroupID:      req.GroupID,
		Title:        req.Title,
		Amount:       req.Amount,
		Category:     models.Category(req.Category),
		PaidBy:       paidBy,
		Date:         req.Date,
		SplitBetween: req.SplitBetween,
		Notes:        req.Notes,
		Receipt:      req.Receipt,
	})
	if err != nil {
		slog.Warn("create expense failed", "group_id", req.GroupID, "error", err)
		writeError(w, err)
		return
	}

	slog.Info("expense created", "expense_id", expense.ID, "group_id", expense.GroupID, "amount", expense.Amount)
	writeJSON(w, http.StatusCreated, expense)
}

// Get returns one expense.
func (s *ExpenseService) Get(w http.ResponseWriter, r *http.Request) {
	expense, err := s.ledger.Expense(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.groups.requireMember(r, expense.GroupID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

// Update merges partial fields into an expense; the ledger re-validates the
// merged record before committing.
func (s *ExpenseService) Update(w http.ResponseWriter, r *http.Request) {
	expenseID := r.PathValue("id")

	existing, err := s.ledger.Expense(expenseID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.groups.requireMember(r, existing.GroupID); err != nil {
		writeError(w, err)
		return
	}

	var req updateExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	update := ledger.ExpenseUpdate{
		GroupID:      req.GroupID,
		Title:        req.Title,
		Amount:       req.Amount,
		PaidBy:       req.PaidBy,
		Date:         req.Date,
		SplitBetween: req.SplitBetween,
		Notes:        req.Notes,
		Receipt:      req.Receipt,
	}
	if req.Category != nil {
		category := models.Category(*req.Category)
		update.Category = &category
	}

	expense, err := s.ledger.UpdateExpense(r.Context(), expenseID, update)
	if err != nil {
		slog.Warn("update expense failed", "expense_id", expenseID, "error", err)
		writeError(w, err)
		return
	}

	slog.Info("expense updated", "expense_id", expense.ID)
	writeJSON(w, http.StatusOK, expense)
}

// Delete removes an expense.
func (s *ExpenseService) Delete(w http.ResponseWriter, r *http.Request) {
	expenseID := r.PathValue("id")

	existing, err := s.ledger.Expense(expenseID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.groups.requireMember(r, existing.GroupID); err != nil {
		writeError(w, err)
		return
	}

	if err := s.ledger.DeleteExpense(r.Context(), expenseID); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("expense deleted", "expense_id", expenseID)
	w.WriteHeader(http.StatusNoContent)
}

// ListByGroup returns a group's expenses in insertion order.
func (s *ExpenseService) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("id")
	if err := s.groups.requireMember(r, groupID); err != nil {
		writeError(w, err)
		return
	}

	expenses, err := s.ledger.GroupExpenses(groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}
