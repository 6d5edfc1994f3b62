package models

// Group holds group metadata. The creator is always an implicit member and
// the initial admin.
type Group struct {
	ID          string `json:"groupId"`
	Name        string `json:"groupName"`
	CreatedBy   string `json:"createdBy"`
	Budget      Money  `json:"groupBudget"`
	Description string `json:"description,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`
}

// GroupMember is one (group, member) pair. A member belongs to a group at
// most once; the composite key lives in the schema.
type GroupMember struct {
	GroupID  string `json:"groupId"`
	UserID   string `json:"userId"`
	IsAdmin  bool   `json:"isAdmin"`
	JoinedAt int64  `json:"joinedAt"`

	// Username is populated from a join with the users table on reads.
	Username string `json:"username,omitempty"`
}

// GroupSummary is one row of the caller's group list.
type GroupSummary struct {
	Group
	MemberCount int   `json:"member_count"`
	Spent       Money `json:"spent"`
}

// MemberBalance is a member's net position relative to the whole group.
// Positive means the group owes them money.
type MemberBalance struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	Balance  Money  `json:"balance"`
}

// CreateGroupRequest is the payload for POST /group/createGroup.
// GroupMembers are usernames resolved through the Member Directory. The
// budget is a pointer so an omitted field can be rejected rather than read
// as an implicit zero.
type CreateGroupRequest struct {
	Name         string   `json:"name"`
	GroupBudget  *Money   `json:"groupBudget"`
	Description  string   `json:"description"`
	GroupMembers []string `json:"groupMembers"`
}

// EditGroupInfoRequest is the payload for PUT /group/editInfo/:groupId.
type EditGroupInfoRequest struct {
	Name        string `json:"name"`
	GroupBudget Money  `json:"groupBudget"`
	Description string `json:"description"`
}

// MemberRequest names the member targeted by add/remove/promote/demote.
type MemberRequest struct {
	Username string `json:"username"`
}

// PairBalance is one counterpart entry in a balances response.
type PairBalance struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Amount   Money  `json:"amount"`
}

// BalancesResponse is the caller's pairwise position within a group.
// A counterpart with a fully settled (zero) net appears in neither list.
type BalancesResponse struct {
	OwesMe []PairBalance `json:"owesMe"`
	IOwe   []PairBalance `json:"iOwe"`
}
