package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tallyhq/tally-api/models"
	"github.com/tallyhq/tally-api/storage"
)

// SettlementService records out-of-band repayments. Settlements only ever
// append; correcting a mistake means recording a settlement the other way.
type SettlementService struct {
	store    *storage.Store
	balances *BalanceService
	gate     *gate
}

func NewSettlementService(store *storage.Store, balances *BalanceService) *SettlementService {
	return &SettlementService{store: store, balances: balances, gate: &gate{store: store}}
}

// SettleUp records a payment from one member to another. A repeated
// idempotency key returns the settlement already recorded. Paying more than
// is owed is allowed (it flips the direction of the balance) but logged.
func (s *SettlementService) SettleUp(ctx context.Context, groupID, requesterID string, req models.SettleUpRequest) (*models.Settlement, error) {
	if _, _, err := s.gate.member(ctx, groupID, requesterID); err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, models.NewValidationError("amount must be positive")
	}
	if req.FromUserID == "" || req.ToUserID == "" {
		return nil, models.NewValidationError("fromUserId and toUserId are required")
	}
	if req.FromUserID == req.ToUserID {
		return nil, models.NewValidationError("cannot settle up with yourself")
	}
	for _, id := range []string{req.FromUserID, req.ToUserID} {
		gm, err := s.store.Membership(ctx, groupID, id)
		if err != nil {
			return nil, fmt.Errorf("load membership: %w", err)
		}
		if gm == nil {
			return nil, models.NewValidationError("both parties must be group members")
		}
	}

	if req.IdempotencyKey != "" {
		existing, err := s.store.SettlementByKey(ctx, groupID, req.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("check idempotency key: %w", err)
		}
		if existing != nil {
			slog.Info("settlement replayed", "group_id", groupID, "settlement_id", existing.ID, "key", req.IdempotencyKey)
			return existing, nil
		}
	}

	owed, err := s.balances.outstanding(ctx, groupID, req.FromUserID, req.ToUserID)
	if err != nil {
		return nil, err
	}
	if req.Amount > owed {
		slog.Warn("settlement exceeds outstanding balance",
			"group_id", groupID, "from", req.FromUserID, "to", req.ToUserID,
			"amount", req.Amount.String(), "outstanding", owed.String())
	}

	settlement := &models.Settlement{
		GroupID:        groupID,
		FromUserID:     req.FromUserID,
		ToUserID:       req.ToUserID,
		Amount:         req.Amount,
		IdempotencyKey: req.IdempotencyKey,
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		// A concurrent request may have landed the same key first.
		if req.IdempotencyKey != "" {
			if existing, lookupErr := s.store.SettlementByKey(ctx, groupID, req.IdempotencyKey); lookupErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("create settlement: %w", err)
	}
	slog.Info("settlement recorded",
		"group_id", groupID, "settlement_id", settlement.ID,
		"from", req.FromUserID, "to", req.ToUserID, "amount", req.Amount.String())
	return settlement, nil
}

// List returns the group's settlement history, newest first.
func (s *SettlementService) List(ctx context.Context, groupID, requesterID string) ([]models.Settlement, error) {
	if _, _, err := s.gate.member(ctx, groupID, requesterID); err != nil {
		return nil, err
	}
	return s.store.ListSettlements(ctx, groupID)
}
