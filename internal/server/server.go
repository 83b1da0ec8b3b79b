// Package server exposes the core over a JSON HTTP API. Handlers are
// thin glue: decode, call a service with the explicit caller ID, map the
// error, encode the read model.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmehra/splitledger/internal/auth"
	"github.com/mmehra/splitledger/internal/service"
)

// Server bundles the services behind the HTTP surface.
type Server struct {
	auth       *service.AuthService
	groups     *service.GroupService
	expenses   *service.ExpenseService
	payments   *service.PaymentService
	balances   *service.BalanceService
	jwtManager *auth.JWTManager
}

// New creates a Server over the given services.
func New(authSvc *service.AuthService, groups *service.GroupService, expenses *service.ExpenseService, payments *service.PaymentService, balances *service.BalanceService, jwtManager *auth.JWTManager) *Server {
	return &Server{
		auth:       authSvc,
		groups:     groups,
		expenses:   expenses,
		payments:   payments,
		balances:   balances,
		jwtManager: jwtManager,
	}
}

// Router mounts all routes and middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)

	// Payment gateway callback; authenticated by the gateway's shared
	// secret in a real deployment.
	r.Post("/payments/confirmed", s.handlePaymentConfirmed)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(s.jwtManager))

		r.Get("/me", s.handleMe)
		r.Get("/me/balance", s.handleUserBalance)

		r.Post("/groups", s.handleCreateGroup)
		r.Get("/groups", s.handleListGroups)
		r.Get("/groups/{groupID}", s.handleGetGroup)
		r.Delete("/groups/{groupID}", s.handleDeleteGroup)
		r.Post("/groups/{groupID}/members", s.handleAddMembers)
		r.Post("/groups/{groupID}/invites", s.handleInvite)
		r.Post("/groups/{groupID}/resolve", s.handleResolve)
		r.Get("/groups/{groupID}/balances", s.handleGroupBalances)
		r.Get("/groups/{groupID}/reports/categories", s.handleCategoryReport)
		r.Get("/groups/{groupID}/reports/monthly", s.handleMonthlyReport)

		r.Post("/expenses", s.handleAddExpense)
		r.Get("/expenses/{expenseID}", s.handleGetExpense)
		r.Delete("/expenses/{expenseID}", s.handleDeleteExpense)
		r.Get("/groups/{groupID}/expenses", s.handleListExpenses)

		r.Post("/settlements/{settlementID}/pay", s.handleMarkPaid)
		r.Post("/expenses/{expenseID}/pay", s.handleMarkExpensePaid)
	})

	return r
}
