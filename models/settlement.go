package models

// Settlement records an out-of-band payment (cash, bank transfer) from one
// member to another. Settlements are append-only; they are never edited.
type Settlement struct {
	ID             string `json:"settlementId"`
	GroupID        string `json:"groupId"`
	FromUserID     string `json:"fromUserId"`
	ToUserID       string `json:"toUserId"`
	Amount         Money  `json:"amount"`
	IdempotencyKey string `json:"-"`
	SettledAt      int64  `json:"settledAt"`

	FromUsername string `json:"fromUsername,omitempty"`
	ToUsername   string `json:"toUsername,omitempty"`
}

// SettleUpRequest is the payload for POST /group/settleUpWithUser/:groupId.
// IdempotencyKey is optional; a repeated key within the group returns the
// settlement already recorded instead of double-recording it.
type SettleUpRequest struct {
	FromUserID     string `json:"fromUserId"`
	ToUserID       string `json:"toUserId"`
	Amount         Money  `json:"amount"`
	IdempotencyKey string `json:"idempotencyKey"`
}
