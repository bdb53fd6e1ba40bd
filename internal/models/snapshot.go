package models

// Snapshot is the full ledger state exchanged with the persistence layer:
// handed out after every mutation, handed back on startup.
type Snapshot struct {
	Users         []User    `json:"users"`
	Groups        []Group   `json:"groups"`
	Expenses      []Expense `json:"expenses"`
	ActiveGroupID string    `json:"active_group_id"`
}
