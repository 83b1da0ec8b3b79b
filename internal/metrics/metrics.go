// Package metrics provides prometheus instrumentation for the core write
// operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the core ledger operations.
type Metrics struct {
	ExpensesCreated    prometheus.Counter
	SettlementsCreated prometheus.Counter
	SettlementsPaid    prometheus.Counter
	MembersPromoted    prometheus.Counter
}

// New creates a Metrics instance with all counters registered on the
// default registry.
func New() *Metrics {
	return &Metrics{
		ExpensesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_expenses_created_total",
			Help: "Total expenses recorded",
		}),
		SettlementsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_settlements_created_total",
			Help: "Total settlement records derived from expense splits",
		}),
		SettlementsPaid: promauto.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_settlements_paid_total",
			Help: "Total settlements transitioned to paid",
		}),
		MembersPromoted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_members_promoted_total",
			Help: "Total pending invitations promoted to confirmed members",
		}),
	}
}

// IncExpensesCreated records one recorded expense.
func (m *Metrics) IncExpensesCreated() {
	if m != nil {
		m.ExpensesCreated.Inc()
	}
}

// AddSettlementsCreated records n derived settlements.
func (m *Metrics) AddSettlementsCreated(n int) {
	if m != nil {
		m.SettlementsCreated.Add(float64(n))
	}
}

// IncSettlementsPaid records one paid settlement.
func (m *Metrics) IncSettlementsPaid() {
	if m != nil {
		m.SettlementsPaid.Inc()
	}
}

// AddMembersPromoted records n invitation promotions.
func (m *Metrics) AddMembersPromoted(n int) {
	if m != nil {
		m.MembersPromoted.Add(float64(n))
	}
}
