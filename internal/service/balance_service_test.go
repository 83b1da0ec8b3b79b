package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/mmehra/splitledger/internal/apperrors"
	"github.com/mmehra/splitledger/internal/models"
)

func TestGroupDebts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	payer := env.createAccount(t, "payer@example.com", "Payer")
	m1 := env.createAccount(t, "m1@example.com", "M1")
	outsider := env.createAccount(t, "outsider@example.com", "Outsider")
	group := env.createGroup(t, payer, m1)

	if _, err := env.expenses.AddExpense(ctx, payer.ID, AddExpenseInput{
		GroupID:     group.ID,
		PayerID:     payer.ID,
		Description: "Dinner",
		Amount:      80,
		Policy:      models.SplitEqual,
	}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	debts, err := env.balances.GroupDebts(ctx, m1.ID, group.ID)
	if err != nil {
		t.Fatalf("GroupDebts failed: %v", err)
	}
	if len(debts) != 1 {
		t.Fatalf("expected one directed debt, got %d", len(debts))
	}
	if debts[0].DebtorID != m1.ID || math.Abs(debts[0].Amount-40) > 0.01 {
		t.Errorf("debt = %+v, want m1 owing 40", debts[0])
	}

	// Group aggregations are members-only; authentication alone is not
	// enough to read another group's debts or spending.
	if _, err := env.balances.GroupDebts(ctx, outsider.ID, group.ID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("GroupDebts for outsider = %v, want ErrForbidden", err)
	}
	if _, err := env.balances.SpendingByCategory(ctx, outsider.ID, group.ID, 0, 0); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("SpendingByCategory for outsider = %v, want ErrForbidden", err)
	}
	if _, err := env.balances.SpendingByMonth(ctx, outsider.ID, group.ID, 0, 0); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("SpendingByMonth for outsider = %v, want ErrForbidden", err)
	}
	if _, err := env.balances.GroupDebts(ctx, m1.ID, "missing-id"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("GroupDebts for missing group = %v, want ErrNotFound", err)
	}
}

func TestUserSummaryIsCallerScoped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	payer := env.createAccount(t, "payer@example.com", "Payer")
	m1 := env.createAccount(t, "m1@example.com", "M1")
	group := env.createGroup(t, payer, m1)

	if _, err := env.expenses.AddExpense(ctx, payer.ID, AddExpenseInput{
		GroupID:     group.ID,
		PayerID:     payer.ID,
		Description: "Dinner",
		Amount:      80,
		Policy:      models.SplitEqual,
	}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	summary, err := env.balances.UserSummary(ctx, m1.ID)
	if err != nil {
		t.Fatalf("UserSummary failed: %v", err)
	}
	if math.Abs(summary.TotalOwed-40) > 0.01 || summary.TotalOwedToYou != 0 {
		t.Errorf("summary = %+v, want TotalOwed 40", summary)
	}
}
