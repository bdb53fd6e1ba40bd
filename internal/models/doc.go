// Package models defines the core domain records for Hisaab.
//
// # Records
//
//   - User: a person who can belong to groups and pay for expenses
//   - Group: a named collection of users sharing expenses, with one leader
//   - Expense: a single spend event attributed to a payer and split among
//     a subset of the group's members
//   - Snapshot: the full ledger state handed to the persistence layer
//
// # Design Principles
//
// 1. **Id references, not copies**: records reference each other by id
// string to avoid circular references and stale duplicated data. Group
// membership is a list of user ids; the user registry is the single source
// of truth for user details.
//
// 2. **Pure data**: no behavior beyond small validation helpers. All
// arithmetic lives in the calculator package, all mutation rules in the
// ledger package.
//
// 3. **Currency-agnostic amounts**: expense amounts are positive float64
// magnitudes. Formatting and currency symbols are a presentation concern.
package models
