// Package calculator computes per-member owed shares for an expense.
// Pure computation over supplied inputs; no I/O, no persistence.
package calculator

import (
	"math"

	"github.com/mmehra/splitledger/internal/apperrors"
	"github.com/mmehra/splitledger/internal/models"
)

// Tolerance is the maximum absolute drift allowed between an expense
// amount and the sum of its shares. Equal splits accept rounding drift up
// to this bound; custom splits are rejected beyond it.
const Tolerance = 0.01

// ComputeSplit divides amount across members under the given policy and
// returns the owed mapping: member ID -> share. The payer never appears
// in the result.
//
// Equal policy: the quotient is amount divided by the number of distinct
// members, with the payer counting toward the divisor when present in the
// list. A repeated member ID counts once, in the divisor and in the
// result. No remainder redistribution is performed.
//
// Custom policy: customShares must sum to amount within Tolerance. A
// payer key is validated in the sum but dropped from the result.
//
// An empty member list (or a payer-only list) yields an empty mapping and
// no error: there is nothing to settle.
func ComputeSplit(amount float64, payerID string, members []string, policy models.SplitPolicy, customShares map[string]float64) (map[string]float64, error) {
	if amount <= 0 {
		return nil, &apperrors.ValidationError{Reason: "amount must be positive"}
	}
	if !policy.Valid() {
		return nil, &apperrors.ValidationError{Reason: "unknown split policy"}
	}

	switch policy {
	case models.SplitCustom:
		return customSplit(amount, payerID, customShares)
	default:
		return equalSplit(amount, payerID, members)
	}
}

func equalSplit(amount float64, payerID string, members []string) (map[string]float64, error) {
	// Dedupe before dividing: a repeated ID must not shrink everyone's
	// share below amount / distinct members, or the shares undersum.
	seen := make(map[string]struct{}, len(members))
	distinct := make([]string, 0, len(members))
	for _, member := range members {
		if _, ok := seen[member]; ok {
			continue
		}
		seen[member] = struct{}{}
		distinct = append(distinct, member)
	}

	shares := make(map[string]float64)
	if len(distinct) == 0 {
		return shares, nil
	}

	quotient := amount / float64(len(distinct))
	for _, member := range distinct {
		if member == payerID {
			continue
		}
		shares[member] = quotient
	}
	return shares, nil
}

func customSplit(amount float64, payerID string, customShares map[string]float64) (map[string]float64, error) {
	if len(customShares) == 0 {
		return nil, &apperrors.ValidationError{Reason: "custom split requires shares"}
	}

	var sum float64
	for member, share := range customShares {
		if share < 0 {
			return nil, &apperrors.ValidationError{Reason: "share for " + member + " is negative"}
		}
		sum += share
	}
	if math.Abs(sum-amount) > Tolerance {
		return nil, &apperrors.ValidationError{
			Reason:   "split mismatch",
			Expected: amount,
			Actual:   sum,
		}
	}

	shares := make(map[string]float64, len(customShares))
	for member, share := range customShares {
		if member == payerID {
			continue
		}
		shares[member] = share
	}
	return shares, nil
}

// SumShares totals an owed mapping.
func SumShares(shares map[string]float64) float64 {
	var sum float64
	for _, share := range shares {
		sum += share
	}
	return sum
}
