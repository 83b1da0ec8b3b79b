package calculator

import (
	"errors"
	"math"
	"testing"

	"github.com/mmehra/splitledger/internal/apperrors"
	"github.com/mmehra/splitledger/internal/models"
)

func TestComputeSplit(t *testing.T) {
	tests := []struct {
		name         string
		amount       float64
		payerID      string
		members      []string
		policy       models.SplitPolicy
		customShares map[string]float64
		wantErr      bool
		validateFunc func(t *testing.T, shares map[string]float64)
	}{
		{
			name:    "equal split, payer outside the member list",
			amount:  100,
			payerID: "payer",
			members: []string{"A", "B", "C"},
			policy:  models.SplitEqual,
			validateFunc: func(t *testing.T, shares map[string]float64) {
				if len(shares) != 3 {
					t.Fatalf("expected 3 shares, got %d", len(shares))
				}
				var sum float64
				for member, share := range shares {
					if math.Abs(share-100.0/3.0) > 0.01 {
						t.Errorf("%s share = %v, want ~33.33", member, share)
					}
					sum += share
				}
				if math.Abs(sum-100) > Tolerance {
					t.Errorf("shares sum = %v, want 100 within %v", sum, Tolerance)
				}
			},
		},
		{
			name:    "equal split, payer on the member list",
			amount:  300,
			payerID: "P",
			members: []string{"P", "M1", "M2"},
			policy:  models.SplitEqual,
			validateFunc: func(t *testing.T, shares map[string]float64) {
				if _, ok := shares["P"]; ok {
					t.Error("payer must not appear in the owed mapping")
				}
				for _, member := range []string{"M1", "M2"} {
					if math.Abs(shares[member]-100) > 0.01 {
						t.Errorf("%s share = %v, want 100", member, shares[member])
					}
				}
			},
		},
		{
			name:    "equal split counts a repeated member once",
			amount:  100,
			payerID: "P",
			members: []string{"A", "A", "B"},
			policy:  models.SplitEqual,
			validateFunc: func(t *testing.T, shares map[string]float64) {
				if len(shares) != 2 {
					t.Fatalf("expected 2 shares, got %d", len(shares))
				}
				for _, member := range []string{"A", "B"} {
					if math.Abs(shares[member]-50) > 0.01 {
						t.Errorf("%s share = %v, want 50", member, shares[member])
					}
				}
				if sum := SumShares(shares); math.Abs(sum-100) > Tolerance {
					t.Errorf("shares sum = %v, want 100 within %v", sum, Tolerance)
				}
			},
		},
		{
			name:    "equal split counts a repeated payer once in the divisor",
			amount:  90,
			payerID: "P",
			members: []string{"P", "P", "M1", "M2"},
			policy:  models.SplitEqual,
			validateFunc: func(t *testing.T, shares map[string]float64) {
				if _, ok := shares["P"]; ok {
					t.Error("payer must not appear in the owed mapping")
				}
				for _, member := range []string{"M1", "M2"} {
					if math.Abs(shares[member]-30) > 0.01 {
						t.Errorf("%s share = %v, want 30", member, shares[member])
					}
				}
			},
		},
		{
			name:    "empty member list yields nothing to settle",
			amount:  50,
			payerID: "P",
			members: nil,
			policy:  models.SplitEqual,
			validateFunc: func(t *testing.T, shares map[string]float64) {
				if len(shares) != 0 {
					t.Errorf("expected empty mapping, got %v", shares)
				}
			},
		},
		{
			name:    "payer-only group yields nothing to settle",
			amount:  50,
			payerID: "P",
			members: []string{"P"},
			policy:  models.SplitEqual,
			validateFunc: func(t *testing.T, shares map[string]float64) {
				if len(shares) != 0 {
					t.Errorf("expected empty mapping, got %v", shares)
				}
			},
		},
		{
			name:         "custom split matching the amount",
			amount:       100,
			payerID:      "P",
			members:      []string{"A", "B"},
			policy:       models.SplitCustom,
			customShares: map[string]float64{"A": 70, "B": 30},
			validateFunc: func(t *testing.T, shares map[string]float64) {
				if shares["A"] != 70 || shares["B"] != 30 {
					t.Errorf("unexpected shares: %v", shares)
				}
			},
		},
		{
			name:         "custom split drops the payer's own portion",
			amount:       100,
			payerID:      "P",
			members:      []string{"P", "A"},
			policy:       models.SplitCustom,
			customShares: map[string]float64{"P": 40, "A": 60},
			validateFunc: func(t *testing.T, shares map[string]float64) {
				if _, ok := shares["P"]; ok {
					t.Error("payer must not appear in the owed mapping")
				}
				if shares["A"] != 60 {
					t.Errorf("A share = %v, want 60", shares["A"])
				}
			},
		},
		{
			name:         "custom split mismatch fails",
			amount:       100,
			payerID:      "P",
			policy:       models.SplitCustom,
			customShares: map[string]float64{"A": 60, "B": 30},
			wantErr:      true,
		},
		{
			name:         "negative custom share fails",
			amount:       100,
			payerID:      "P",
			policy:       models.SplitCustom,
			customShares: map[string]float64{"A": 120, "B": -20},
			wantErr:      true,
		},
		{
			name:    "zero amount fails",
			amount:  0,
			payerID: "P",
			members: []string{"A"},
			policy:  models.SplitEqual,
			wantErr: true,
		},
		{
			name:    "unknown policy fails",
			amount:  10,
			payerID: "P",
			members: []string{"A"},
			policy:  models.SplitPolicy("weighted"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := ComputeSplit(tt.amount, tt.payerID, tt.members, tt.policy, tt.customShares)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var validation *apperrors.ValidationError
				if !errors.As(err, &validation) {
					t.Fatalf("expected ValidationError, got %T: %v", err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ComputeSplit failed: %v", err)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, shares)
			}
		})
	}
}

func TestComputeSplit_MismatchDetails(t *testing.T) {
	_, err := ComputeSplit(100, "P", nil, models.SplitCustom, map[string]float64{"A": 50, "B": 40})

	var validation *apperrors.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validation.Reason != "split mismatch" {
		t.Errorf("reason = %q, want %q", validation.Reason, "split mismatch")
	}
	if validation.Expected != 100 || math.Abs(validation.Actual-90) > 0.001 {
		t.Errorf("expected/actual = %v/%v, want 100/90", validation.Expected, validation.Actual)
	}
}

func TestSumShares(t *testing.T) {
	sum := SumShares(map[string]float64{"A": 33.33, "B": 33.33, "C": 33.34})
	if math.Abs(sum-100) > 0.001 {
		t.Errorf("SumShares = %v, want 100", sum)
	}
}
