package ledger

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/mmehra/splitledger/internal/apperrors"
	"github.com/mmehra/splitledger/internal/membership"
	"github.com/mmehra/splitledger/internal/models"
	"github.com/mmehra/splitledger/internal/storage"
	"github.com/mmehra/splitledger/internal/storage/sqlite"
)

func newTestLedger(t *testing.T) (*Ledger, storage.Store) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return New(store, membership.New(store, store)), store
}

func seedExpense(t *testing.T, store storage.Store, payerID string, memberIDs []string, amount float64, shares map[string]float64) *models.Expense {
	t.Helper()
	ctx := context.Background()

	group := &models.Group{Name: "Trip", CreatorID: payerID, MemberIDs: memberIDs}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("failed to create group: %v", err)
	}

	expense := &models.Expense{
		GroupID:        group.ID,
		PayerID:        payerID,
		Description:    "Dinner",
		Amount:         amount,
		Policy:         models.SplitEqual,
		ParticipantIDs: memberIDs,
		Shares:         shares,
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("failed to create expense: %v", err)
	}
	return expense
}

func TestRecordForExpense(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()

	expense := seedExpense(t, store, "payer", []string{"payer", "m1", "m2"}, 300,
		map[string]float64{"m1": 100, "m2": 100})

	settlements, err := ledger.RecordForExpense(ctx, expense)
	if err != nil {
		t.Fatalf("RecordForExpense failed: %v", err)
	}
	if len(settlements) != 2 {
		t.Fatalf("expected 2 settlements, got %d", len(settlements))
	}
	for _, s := range settlements {
		if s.CreditorID != "payer" {
			t.Errorf("creditor = %s, want payer", s.CreditorID)
		}
		if s.Status != models.SettlementPending {
			t.Errorf("status = %q, want pending", s.Status)
		}
		if math.Abs(s.Amount-100) > 0.01 {
			t.Errorf("amount = %v, want 100", s.Amount)
		}
	}
}

func TestRecordForExpense_Idempotent(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()

	expense := seedExpense(t, store, "payer", []string{"payer", "m1", "m2"}, 300,
		map[string]float64{"m1": 100, "m2": 100})

	first, err := ledger.RecordForExpense(ctx, expense)
	if err != nil {
		t.Fatalf("first record failed: %v", err)
	}
	second, err := ledger.RecordForExpense(ctx, expense)
	if err != nil {
		t.Fatalf("second record failed: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("second record returned %d settlements, want %d", len(second), len(first))
	}

	all, err := store.ListSettlements(ctx, storage.SettlementFilter{ExpenseID: expense.ID})
	if err != nil {
		t.Fatalf("ListSettlements failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 stored settlements after re-record, got %d", len(all))
	}
}

func TestDeriveShares_FromParticipants(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()

	// No stored mapping: fall back to the participant list, equal policy.
	expense := seedExpense(t, store, "payer", []string{"payer", "m1", "m2"}, 90, nil)

	shares, err := ledger.DeriveShares(ctx, expense)
	if err != nil {
		t.Fatalf("DeriveShares failed: %v", err)
	}
	if len(shares) != 2 {
		t.Fatalf("expected 2 shares, got %v", shares)
	}
	for _, member := range []string{"m1", "m2"} {
		if math.Abs(shares[member]-30) > 0.01 {
			t.Errorf("%s share = %v, want 30", member, shares[member])
		}
	}
}

func TestDeriveShares_FromGroupMembership(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()

	group := &models.Group{Name: "Trip", CreatorID: "payer", MemberIDs: []string{"payer", "m1"}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("failed to create group: %v", err)
	}

	// Neither a mapping nor a participant list: derive from the group.
	expense := &models.Expense{
		GroupID: group.ID,
		PayerID: "payer",
		Amount:  80,
		Policy:  models.SplitEqual,
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("failed to create expense: %v", err)
	}

	shares, err := ledger.DeriveShares(ctx, expense)
	if err != nil {
		t.Fatalf("DeriveShares failed: %v", err)
	}
	if len(shares) != 1 || math.Abs(shares["m1"]-40) > 0.01 {
		t.Errorf("shares = %v, want m1 -> 40", shares)
	}
}

func TestMarkPaid(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()

	expense := seedExpense(t, store, "payer", []string{"payer", "m1"}, 100,
		map[string]float64{"m1": 50})
	settlements, err := ledger.RecordForExpense(ctx, expense)
	if err != nil {
		t.Fatalf("RecordForExpense failed: %v", err)
	}
	settlement := settlements[0]

	t.Run("non-debtor is rejected", func(t *testing.T) {
		_, _, err := ledger.MarkPaid(ctx, settlement.ID, "payer")
		if !errors.Is(err, apperrors.ErrForbidden) {
			t.Errorf("expected ErrForbidden for payer, got %v", err)
		}
		_, _, err = ledger.MarkPaid(ctx, settlement.ID, "stranger")
		if !errors.Is(err, apperrors.ErrForbidden) {
			t.Errorf("expected ErrForbidden for stranger, got %v", err)
		}
	})

	t.Run("debtor marks paid", func(t *testing.T) {
		paid, transitioned, err := ledger.MarkPaid(ctx, settlement.ID, "m1")
		if err != nil {
			t.Fatalf("MarkPaid failed: %v", err)
		}
		if !transitioned {
			t.Error("first mark must report the transition")
		}
		if paid.Status != models.SettlementPaid || paid.PaidAt == 0 {
			t.Errorf("settlement = %+v, want paid with timestamp", paid)
		}
	})

	t.Run("repeat is a no-op", func(t *testing.T) {
		before, err := store.GetSettlement(ctx, settlement.ID)
		if err != nil {
			t.Fatalf("GetSettlement failed: %v", err)
		}
		again, transitioned, err := ledger.MarkPaid(ctx, settlement.ID, "m1")
		if err != nil {
			t.Fatalf("repeated MarkPaid failed: %v", err)
		}
		if transitioned {
			t.Error("repeated mark must not report a transition")
		}
		if again.PaidAt != before.PaidAt {
			t.Errorf("PaidAt changed on repeat: %d -> %d", before.PaidAt, again.PaidAt)
		}
	})

	t.Run("missing settlement", func(t *testing.T) {
		_, _, err := ledger.MarkPaid(ctx, "missing-id", "m1")
		if !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestMarkExpensePaid(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()

	expense := seedExpense(t, store, "payer", []string{"payer", "m1", "m2"}, 300,
		map[string]float64{"m1": 100, "m2": 100})
	if _, err := ledger.RecordForExpense(ctx, expense); err != nil {
		t.Fatalf("RecordForExpense failed: %v", err)
	}

	paid, _, err := ledger.MarkExpensePaid(ctx, expense.ID, "m1")
	if err != nil {
		t.Fatalf("MarkExpensePaid failed: %v", err)
	}
	if paid.DebtorID != "m1" || paid.Status != models.SettlementPaid {
		t.Errorf("settlement = %+v, want m1's paid settlement", paid)
	}

	// m2's settlement is untouched.
	other, err := ledger.FindForExpense(ctx, expense.ID, "m2")
	if err != nil {
		t.Fatalf("FindForExpense failed: %v", err)
	}
	if other.Status != models.SettlementPending {
		t.Errorf("m2 settlement status = %q, want pending", other.Status)
	}

	_, _, err = ledger.MarkExpensePaid(ctx, expense.ID, "stranger")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for non-participant, got %v", err)
	}
}
