package models

// Expense represents a single spend event within a group.
//
// Invariants (enforced by the ledger before any commit):
//   - Amount > 0
//   - GroupID references an existing group
//   - PaidBy is a member of that group
//   - every id in SplitBetween is a member of that group
//   - SplitBetween is non-empty
//
// PaidBy need not appear in SplitBetween: a payer can cover an expense
// without being a beneficiary.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// GroupID is the group this expense is scoped to.
	GroupID string `json:"group_id"`

	// Title is the human-readable description of the spend.
	Title string `json:"title"`

	// Amount is the positive, currency-agnostic magnitude.
	Amount float64 `json:"amount"`

	// Category is one of the fixed expense categories.
	Category Category `json:"category"`

	// PaidBy is the user id of the member who paid.
	PaidBy string `json:"paid_by"`

	// Date is the Unix timestamp of the spend.
	Date int64 `json:"date"`

	// SplitBetween is the ordered, non-empty set of member user ids the
	// amount is divided equally among.
	SplitBetween []string `json:"split_between"`

	// Notes is an optional free-form note.
	Notes string `json:"notes,omitempty"`

	// Receipt is an optional receipt reference (URL or object key).
	Receipt string `json:"receipt,omitempty"`
}

// SplitWith reports whether the given user id is one of the split
// participants.
func (e *Expense) SplitWith(userID string) bool {
	for _, id := range e.SplitBetween {
		if id == userID {
			return true
		}
	}
	return false
}
