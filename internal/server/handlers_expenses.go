package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmehra/splitledger/internal/models"
	"github.com/mmehra/splitledger/internal/service"
)

type addExpenseRequest struct {
	GroupID        string             `json:"group_id"`
	PayerID        string             `json:"payer_id"`
	Description    string             `json:"description"`
	Amount         float64            `json:"amount"`
	SpentAt        int64              `json:"spent_at,omitempty"`
	Policy         string             `json:"policy"`
	ParticipantIDs []string           `json:"participant_ids,omitempty"`
	CustomShares   map[string]float64 `json:"custom_shares,omitempty"`
}

type settlementResponse struct {
	ID          string  `json:"id"`
	ExpenseID   string  `json:"expense_id"`
	DebtorID    string  `json:"debtor_id"`
	CreditorID  string  `json:"creditor_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	PaidAt      int64   `json:"paid_at,omitempty"`
}

func toSettlementResponse(settlement *models.Settlement) settlementResponse {
	return settlementResponse{
		ID:          settlement.ID,
		ExpenseID:   settlement.ExpenseID,
		DebtorID:    settlement.DebtorID,
		CreditorID:  settlement.CreditorID,
		Amount:      settlement.Amount,
		Description: settlement.Description,
		Status:      string(settlement.Status),
		PaidAt:      settlement.PaidAt,
	}
}

type expenseResponse struct {
	ID             string             `json:"id"`
	GroupID        string             `json:"group_id"`
	PayerID        string             `json:"payer_id"`
	Description    string             `json:"description"`
	Amount         float64            `json:"amount"`
	SpentAt        int64              `json:"spent_at"`
	Policy         string             `json:"policy"`
	ParticipantIDs []string           `json:"participant_ids"`
	Shares         map[string]float64 `json:"shares"`
	CreatedAt      int64              `json:"created_at"`
}

func toExpenseResponse(expense *models.Expense) expenseResponse {
	return expenseResponse{
		ID:             expense.ID,
		GroupID:        expense.GroupID,
		PayerID:        expense.PayerID,
		Description:    expense.Description,
		Amount:         expense.Amount,
		SpentAt:        expense.SpentAt,
		Policy:         string(expense.Policy),
		ParticipantIDs: expense.ParticipantIDs,
		Shares:         expense.Shares,
		CreatedAt:      expense.CreatedAt,
	}
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	req, ok := DecodeJSON[addExpenseRequest](w, r)
	if !ok {
		return
	}

	result, err := s.expenses.AddExpense(r.Context(), AccountID(r.Context()), service.AddExpenseInput{
		GroupID:        req.GroupID,
		PayerID:        req.PayerID,
		Description:    req.Description,
		Amount:         req.Amount,
		SpentAt:        req.SpentAt,
		Policy:         models.SplitPolicy(req.Policy),
		ParticipantIDs: req.ParticipantIDs,
		CustomShares:   req.CustomShares,
	})
	if err != nil {
		// A PartialFailure response tells the caller which settlement
		// writes to retry; the expense itself is already persisted.
		WriteError(w, err)
		return
	}

	settlements := make([]settlementResponse, 0, len(result.Settlements))
	for _, settlement := range result.Settlements {
		settlements = append(settlements, toSettlementResponse(settlement))
	}
	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"expense":     toExpenseResponse(result.Expense),
		"settlements": settlements,
	})
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	breakdown, err := s.expenses.GetExpense(r.Context(), AccountID(r.Context()), chi.URLParam(r, "expenseID"))
	if err != nil {
		WriteError(w, err)
		return
	}

	entries := make([]map[string]interface{}, 0, len(breakdown.Entries))
	for _, entry := range breakdown.Entries {
		entries = append(entries, map[string]interface{}{
			"account_id":    entry.AccountID,
			"name":          entry.Name,
			"share":         entry.Share,
			"settlement_id": entry.SettlementID,
			"status":        string(entry.Status),
		})
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"expense":    toExpenseResponse(breakdown.Expense),
		"payer_name": breakdown.PayerName,
		"entries":    entries,
		"total_owed": breakdown.TotalOwed,
	})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.expenses.DeleteExpense(r.Context(), AccountID(r.Context()), chi.URLParam(r, "expenseID")); err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.expenses.ListGroupExpenses(r.Context(), AccountID(r.Context()), chi.URLParam(r, "groupID"))
	if err != nil {
		WriteError(w, err)
		return
	}
	resp := make([]expenseResponse, 0, len(expenses))
	for _, expense := range expenses {
		resp = append(resp, toExpenseResponse(expense))
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	settlement, err := s.payments.MarkPaid(r.Context(), AccountID(r.Context()), chi.URLParam(r, "settlementID"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toSettlementResponse(settlement))
}

func (s *Server) handleMarkExpensePaid(w http.ResponseWriter, r *http.Request) {
	settlement, err := s.payments.MarkExpensePaid(r.Context(), AccountID(r.Context()), chi.URLParam(r, "expenseID"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toSettlementResponse(settlement))
}

type paymentConfirmedRequest struct {
	SettlementID string `json:"settlement_id"`
}

func (s *Server) handlePaymentConfirmed(w http.ResponseWriter, r *http.Request) {
	req, ok := DecodeJSON[paymentConfirmedRequest](w, r)
	if !ok {
		return
	}
	if req.SettlementID == "" {
		WriteJSON(w, http.StatusBadRequest, errorBody("validation_failed", "settlement_id required"))
		return
	}

	if err := s.payments.OnPaymentConfirmed(r.Context(), req.SettlementID); err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "paid"})
}
