// Package calculator holds the pure money math of the ledger: splitting an
// expense into per-member shares and folding shares plus settlements into net
// balances. Nothing in here touches storage or HTTP, which keeps every
// invariant unit-testable.
package calculator

import (
	"github.com/tallyhq/tally-api/models"
)

// EqualShares splits total across n members without losing a cent. The
// remainder of the integer division is assigned deterministically: the first
// (total % n) members each carry one extra cent, so repeated calls with the
// same inputs produce the same split.
func EqualShares(total models.Money, n int) []models.Money {
	if n <= 0 {
		return nil
	}
	base := int64(total) / int64(n)
	remainder := int64(total) % int64(n)
	shares := make([]models.Money, n)
	for i := range shares {
		shares[i] = models.Money(base)
		if int64(i) < remainder {
			shares[i]++
		}
	}
	return shares
}

// SumShares returns the total of the given share amounts.
func SumShares(shares []models.Money) models.Money {
	var sum models.Money
	for _, s := range shares {
		sum += s
	}
	return sum
}

// Reconciles reports whether the share amounts sum exactly to total. Cents
// are integers, so "within the system's precision" means exact equality.
func Reconciles(total models.Money, shares []models.Money) bool {
	return SumShares(shares) == total
}
