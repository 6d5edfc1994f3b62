package services

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/tallyhq/tally-api/calculator"
	"github.com/tallyhq/tally-api/models"
	"github.com/tallyhq/tally-api/storage"
)

// BalanceService derives pairwise balances from the ledger. Balances are
// never stored; every read folds the full share and settlement history.
type BalanceService struct {
	store *storage.Store
	gate  *gate
}

func NewBalanceService(store *storage.Store) *BalanceService {
	return &BalanceService{store: store, gate: &gate{store: store}}
}

// ledger holds one consistent read of everything a balance derivation needs.
type ledger struct {
	shares    []calculator.ShareRow
	transfers []calculator.Transfer
}

func (b *BalanceService) loadLedger(ctx context.Context, groupID string) (*ledger, error) {
	var l ledger
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := b.store.ShareRows(ctx, groupID)
		if err != nil {
			return fmt.Errorf("load share rows: %w", err)
		}
		l.shares = rows
		return nil
	})
	g.Go(func() error {
		transfers, err := b.store.Transfers(ctx, groupID)
		if err != nil {
			return fmt.Errorf("load settlements: %w", err)
		}
		l.transfers = transfers
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &l, nil
}

// BalancesFor returns the requester's pairwise balances against every other
// member they have open history with, split into owed-to-me and I-owe lists
// sorted by username.
func (b *BalanceService) BalancesFor(ctx context.Context, groupID, requesterID string) (*models.BalancesResponse, error) {
	if _, _, err := b.gate.member(ctx, groupID, requesterID); err != nil {
		return nil, err
	}
	l, err := b.loadLedger(ctx, groupID)
	if err != nil {
		return nil, err
	}
	net := calculator.PairwiseNet(requesterID, l.shares, l.transfers)

	ids := make([]string, 0, len(net))
	for id := range net {
		ids = append(ids, id)
	}
	users, err := b.store.UsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve counterparties: %w", err)
	}

	resp := &models.BalancesResponse{
		OwesMe: []models.PairBalance{},
		IOwe:   []models.PairBalance{},
	}
	for id, amount := range net {
		pb := models.PairBalance{UserID: id, Username: users[id].Username, Amount: amount.Abs()}
		if amount > 0 {
			resp.OwesMe = append(resp.OwesMe, pb)
		} else {
			resp.IOwe = append(resp.IOwe, pb)
		}
	}
	sort.Slice(resp.OwesMe, func(i, j int) bool { return resp.OwesMe[i].Username < resp.OwesMe[j].Username })
	sort.Slice(resp.IOwe, func(i, j int) bool { return resp.IOwe[i].Username < resp.IOwe[j].Username })
	return resp, nil
}

// positions folds the whole ledger into one net figure per member. Used by
// the member listing and by the zero-balance checks on removal.
func (b *BalanceService) positions(ctx context.Context, groupID string) (map[string]models.Money, error) {
	l, err := b.loadLedger(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return calculator.NetPositions(l.shares, l.transfers), nil
}

// outstanding returns how much fromID still owes toID, zero when nothing is
// owed in that direction.
func (b *BalanceService) outstanding(ctx context.Context, groupID, fromID, toID string) (models.Money, error) {
	l, err := b.loadLedger(ctx, groupID)
	if err != nil {
		return 0, err
	}
	net := calculator.PairwiseNet(toID, l.shares, l.transfers)
	if owed := net[fromID]; owed > 0 {
		return owed, nil
	}
	return 0, nil
}
