package calculator

import "github.com/tallyhq/tally-api/models"

// ShareRow is one expense share joined with its parent expense, the minimal
// projection needed for balance math.
type ShareRow struct {
	PayerID  string       // who paid the expense
	DebtorID string       // who holds this share
	Amount   models.Money // share amount owed
}

// Transfer is a recorded settlement payment from one member to another.
type Transfer struct {
	FromID string
	ToID   string
	Amount models.Money
}

// PairwiseNet computes the caller's net position against every other member.
// The returned map is keyed by counterpart id; a positive value means the
// counterpart owes the caller that amount, negative means the caller owes.
//
// For each counterpart m:
//
//	gross owed to caller = Σ shares held by m on expenses the caller paid
//	gross owed by caller = Σ shares held by the caller on expenses m paid
//	net settled          = Σ transfers m→caller − Σ transfers caller→m
//	net                  = (owed to − owed by) − net settled
//
// Counterparts with a zero net are dropped: fully settled pairs appear in
// neither direction.
func PairwiseNet(memberID string, shares []ShareRow, settlements []Transfer) map[string]models.Money {
	net := make(map[string]models.Money)

	for _, row := range shares {
		// A payer's own share is money they owe themselves.
		if row.PayerID == row.DebtorID {
			continue
		}
		switch {
		case row.PayerID == memberID:
			net[row.DebtorID] += row.Amount
		case row.DebtorID == memberID:
			net[row.PayerID] -= row.Amount
		}
	}

	for _, t := range settlements {
		switch {
		case t.ToID == memberID:
			net[t.FromID] -= t.Amount
		case t.FromID == memberID:
			net[t.ToID] += t.Amount
		}
	}

	for id, amount := range net {
		if amount == 0 {
			delete(net, id)
		}
	}
	return net
}

// NetPositions computes every member's aggregate position against the whole
// group: total others owe them minus total they owe others, adjusted by
// settlements. The values always sum to zero across the group.
func NetPositions(shares []ShareRow, settlements []Transfer) map[string]models.Money {
	net := make(map[string]models.Money)

	for _, row := range shares {
		if row.PayerID == row.DebtorID {
			continue
		}
		net[row.PayerID] += row.Amount
		net[row.DebtorID] -= row.Amount
	}

	for _, t := range settlements {
		net[t.FromID] += t.Amount
		net[t.ToID] -= t.Amount
	}

	return net
}
