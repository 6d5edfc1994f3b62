package models

// Expense is one shared expense inside a group. PaidBy is the member who
// fronted the money; CreatedBy is the member who logged it (they may differ).
type Expense struct {
	ID          string `json:"expenseId"`
	GroupID     string `json:"groupId"`
	PaidBy      string `json:"paidById"`
	CreatedBy   string `json:"createdBy"`
	Amount      Money  `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	CreatedAt   int64  `json:"createdAt"`

	// PaidByName is the payer's username, populated from a join on reads.
	PaidByName string `json:"paidBy,omitempty"`
}

// ExpenseShare is the portion of one expense owed by one member. The shares
// of an expense always sum exactly to the expense amount.
type ExpenseShare struct {
	ID        string `json:"shareId"`
	ExpenseID string `json:"expenseId"`
	UserID    string `json:"userId"`
	Amount    Money  `json:"amountOwned"`

	Username string `json:"username,omitempty"`
}

// ExpenseDetail is an expense together with its resolved share list.
type ExpenseDetail struct {
	Expense
	Shares []ExpenseShare `json:"shares"`
}

// ShareInput is one client-supplied share on add/edit. Members are named by
// username and resolved through the Member Directory before any write.
type ShareInput struct {
	Username    string `json:"username"`
	AmountOwned Money  `json:"amountOwned"`
}

// AddExpenseRequest is the payload for POST /groupExpense/add. An empty
// Shares list asks for an equal split across all current group members.
type AddExpenseRequest struct {
	GroupID     string       `json:"groupId"`
	PaidBy      string       `json:"paidBy"`
	Amount      Money        `json:"amount"`
	Category    string       `json:"category"`
	Description string       `json:"description"`
	Shares      []ShareInput `json:"shares"`
}

// EditExpenseRequest is the payload for PUT /groupExpense/edit. The payer is
// immutable after creation; only scalar fields and the split can change.
type EditExpenseRequest struct {
	Amount      Money        `json:"amount"`
	Category    string       `json:"category"`
	Description string       `json:"description"`
	Shares      []ShareInput `json:"shares"`
}
