package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mmehra/splitledger/internal/models"
)

type createGroupRequest struct {
	Name         string   `json:"name"`
	InviteEmails []string `json:"invite_emails,omitempty"`
}

type memberIDsRequest struct {
	AccountIDs []string `json:"account_ids"`
}

type inviteRequest struct {
	Emails []string `json:"emails"`
}

type groupResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	CreatorID     string   `json:"creator_id"`
	MemberIDs     []string `json:"member_ids"`
	PendingEmails []string `json:"pending_emails,omitempty"`
	CreatedAt     int64    `json:"created_at"`
}

func toGroupResponse(group *models.Group) groupResponse {
	return groupResponse{
		ID:            group.ID,
		Name:          group.Name,
		CreatorID:     group.CreatorID,
		MemberIDs:     group.MemberIDs,
		PendingEmails: group.PendingEmails,
		CreatedAt:     group.CreatedAt,
	}
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	req, ok := DecodeJSON[createGroupRequest](w, r)
	if !ok {
		return
	}
	if req.Name == "" {
		WriteJSON(w, http.StatusBadRequest, errorBody("validation_failed", "name required"))
		return
	}

	group, err := s.groups.CreateGroup(r.Context(), AccountID(r.Context()), req.Name, req.InviteEmails)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toGroupResponse(group))
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.ListGroups(r.Context(), AccountID(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	resp := make([]groupResponse, 0, len(groups))
	for _, group := range groups {
		resp = append(resp, toGroupResponse(group))
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.GetGroup(r.Context(), AccountID(r.Context()), chi.URLParam(r, "groupID"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toGroupResponse(group))
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.groups.DeleteGroup(r.Context(), AccountID(r.Context()), chi.URLParam(r, "groupID")); err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleAddMembers(w http.ResponseWriter, r *http.Request) {
	req, ok := DecodeJSON[memberIDsRequest](w, r)
	if !ok {
		return
	}

	group, err := s.groups.AddMembers(r.Context(), AccountID(r.Context()), chi.URLParam(r, "groupID"), req.AccountIDs)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toGroupResponse(group))
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	req, ok := DecodeJSON[inviteRequest](w, r)
	if !ok {
		return
	}

	group, err := s.groups.Invite(r.Context(), AccountID(r.Context()), chi.URLParam(r, "groupID"), req.Emails)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toGroupResponse(group))
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	result, err := s.groups.ResolveMembership(r.Context(), AccountID(r.Context()), chi.URLParam(r, "groupID"))
	if err != nil {
		WriteError(w, err)
		return
	}

	failed := make(map[string]string, len(result.Failed))
	for email, ferr := range result.Failed {
		failed[email] = ferr.Error()
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"promoted":      result.Promoted,
		"still_pending": result.StillPending,
		"failed":        failed,
	})
}

type debtResponse struct {
	SettlementID string  `json:"settlement_id"`
	DebtorID     string  `json:"debtor_id"`
	DebtorName   string  `json:"debtor_name"`
	CreditorID   string  `json:"creditor_id"`
	CreditorName string  `json:"creditor_name"`
	Amount       float64 `json:"amount"`
	Description  string  `json:"description"`
}

func (s *Server) handleGroupBalances(w http.ResponseWriter, r *http.Request) {
	debts, err := s.balances.GroupDebts(r.Context(), AccountID(r.Context()), chi.URLParam(r, "groupID"))
	if err != nil {
		WriteError(w, err)
		return
	}
	resp := make([]debtResponse, 0, len(debts))
	for _, debt := range debts {
		resp = append(resp, debtResponse{
			SettlementID: debt.SettlementID,
			DebtorID:     debt.DebtorID,
			DebtorName:   debt.DebtorName,
			CreditorID:   debt.CreditorID,
			CreditorName: debt.CreditorName,
			Amount:       debt.Amount,
			Description:  debt.Description,
		})
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	from, to := reportWindow(r)
	report, err := s.balances.SpendingByCategory(r.Context(), AccountID(r.Context()), chi.URLParam(r, "groupID"), from, to)
	if err != nil {
		WriteError(w, err)
		return
	}
	resp := make([]map[string]interface{}, 0, len(report))
	for _, entry := range report {
		resp = append(resp, map[string]interface{}{
			"category": entry.Category,
			"total":    entry.Total,
			"count":    entry.Count,
		})
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	from, to := reportWindow(r)
	report, err := s.balances.SpendingByMonth(r.Context(), AccountID(r.Context()), chi.URLParam(r, "groupID"), from, to)
	if err != nil {
		WriteError(w, err)
		return
	}
	resp := make([]map[string]interface{}, 0, len(report))
	for _, entry := range report {
		resp = append(resp, map[string]interface{}{
			"month": entry.Month,
			"total": entry.Total,
			"count": entry.Count,
		})
	}
	WriteJSON(w, http.StatusOK, resp)
}

// reportWindow parses optional Unix-timestamp bounds from the query.
func reportWindow(r *http.Request) (int64, int64) {
	from, _ := strconv.ParseInt(r.URL.Query().Get("from"), 10, 64)
	to, _ := strconv.ParseInt(r.URL.Query().Get("to"), 10, 64)
	return from, to
}
