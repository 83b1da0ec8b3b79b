package server

import (
	"net/http"

	"github.com/mmehra/splitledger/internal/models"
	"github.com/mmehra/splitledger/internal/service"
)

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accountResponse struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	Points      int64    `json:"points"`
	Level       int64    `json:"level"`
	Badges      []string `json:"badges,omitempty"`
	CreatedAt   int64    `json:"created_at"`
}

type sessionResponse struct {
	Account accountResponse `json:"account"`
	Token   string          `json:"token"`
}

func toAccountResponse(account *models.Account) accountResponse {
	return accountResponse{
		ID:          account.ID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		Points:      account.Points,
		Level:       account.Level,
		Badges:      account.Badges,
		CreatedAt:   account.CreatedAt,
	}
}

func toSessionResponse(session *service.Session) sessionResponse {
	return sessionResponse{Account: toAccountResponse(session.Account), Token: session.Token}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := DecodeJSON[registerRequest](w, r)
	if !ok {
		return
	}
	if req.Email == "" || req.DisplayName == "" {
		WriteJSON(w, http.StatusBadRequest, errorBody("validation_failed", "email and display_name required"))
		return
	}

	session, err := s.auth.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := DecodeJSON[loginRequest](w, r)
	if !ok {
		return
	}

	session, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toSessionResponse(session))
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	account, err := s.auth.GetProfile(r.Context(), AccountID(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) handleUserBalance(w http.ResponseWriter, r *http.Request) {
	summary, err := s.balances.UserSummary(r.Context(), AccountID(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]float64{
		"total_owed":        summary.TotalOwed,
		"total_owed_to_you": summary.TotalOwedToYou,
	})
}
