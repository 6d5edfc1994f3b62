package models

// User is a member record owned by the external identity service. The ledger
// only reads this table through the Member Directory; it never creates or
// mutates accounts.
type User struct {
	ID        string `json:"userId"`
	Username  string `json:"username"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	CreatedAt int64  `json:"createdAt,omitempty"`
}
