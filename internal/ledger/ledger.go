// Package ledger owns the authoritative in-memory collections of users,
// groups, and expenses, and the mutation contract that guards their
// invariants.
//
// All mutations run to completion under a single lock, so no operation ever
// observes a half-applied change. After every successful mutation the
// resulting state is handed to the persistence store fire-and-forget: a
// failed save is logged, never surfaced to the caller.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hisaab-app/hisaab/internal/models"
	"github.com/hisaab-app/hisaab/internal/storage"
)

const (
	defaultGroupColor = "blue"
	defaultGroupIcon  = "users"
)

// Ledger is the single owner of the group and expense collections plus the
// shared user registry. Consumers receive a *Ledger handle and mutate state
// only through its methods, never via direct field access.
type Ledger struct {
	mu    sync.Mutex
	store storage.Store // nil disables persistence

	users     map[string]*models.User
	userOrder []string
	groups    []*models.Group
	expenses  []*models.Expense

	activeGroupID string
}

// New creates a Ledger backed by the given store, restoring the last
// persisted snapshot. A nil store yields a memory-only ledger.
func New(ctx context.Context, store storage.Store) (*Ledger, error) {
	l := &Ledger{
		store: store,
		users: make(map[string]*models.User),
	}
	if store == nil {
		return l, nil
	}

	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger snapshot: %w", err)
	}
	for i := range snap.Users {
		u := snap.Users[i]
		l.users[u.ID] = &u
		l.userOrder = append(l.userOrder, u.ID)
	}
	for i := range snap.Groups {
		g := snap.Groups[i]
		l.groups = append(l.groups, &g)
	}
	for i := range snap.Expenses {
		e := snap.Expenses[i]
		l.expenses = append(l.expenses, &e)
	}
	l.activeGroupID = snap.ActiveGroupID
	return l, nil
}

// UserSpec describes a user to register.
type UserSpec struct {
	Name         string
	Email        string
	Avatar       string
	PasswordHash string
}

// GroupSpec describes a group to create. The creator becomes the leader and
// sole initial member.
type GroupSpec struct {
	Name        string
	Description string
	Color       string
	Icon        string
	CreatorID   string
}

// GroupUpdate carries partial group fields; nil means unchanged. Id and
// creation timestamp are immutable and have no fields here.
type GroupUpdate struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
	LeaderID    *string
}

// ExpenseSpec describes an expense to record. A zero Date defaults to now.
type ExpenseSpec struct {
	GroupID      string
	Title        string
	Amount       float64
	Category     models.Category
	PaidBy       string
	Date         int64
	SplitBetween []string
	Notes        string
	Receipt      string
}

// ExpenseUpdate carries partial expense fields; nil means unchanged. The
// merged record is re-validated against every invariant before committing.
type ExpenseUpdate struct {
	GroupID      *string
	Title        *string
	Amount       *float64
	Category     *models.Category
	PaidBy       *string
	Date         *int64
	SplitBetween []string
	Notes        *string
	Receipt      *string
}

// AddUser registers a user in the shared registry.
func (l *Ledger) AddUser(ctx context.Context, spec UserSpec) (models.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if spec.Name == "" {
		return models.User{}, fmt.Errorf("%w: user name must not be empty", ErrValidation)
	}
	if spec.Email == "" {
		return models.User{}, fmt.Errorf("%w: user email must not be empty", ErrValidation)
	}
	for _, u := range l.users {
		if u.Email == spec.Email {
			return models.User{}, fmt.Errorf("%w: email %s already registered", ErrValidation, spec.Email)
		}
	}

	user := models.NewUser(spec.Name, spec.Email, spec.PasswordHash)
	user.Avatar = spec.Avatar
	l.users[user.ID] = user
	l.userOrder = append(l.userOrder, user.ID)

	l.persist(ctx)
	return *user, nil
}

// User returns the user with the given id.
func (l *Ledger) User(id string) (models.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	u, ok := l.users[id]
	if !ok {
		return models.User{}, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return *u, nil
}

// UserByEmail returns the user registered under the given email.
func (l *Ledger) UserByEmail(email string) (models.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, id := range l.userOrder {
		if l.users[id].Email == email {
			return *l.users[id], nil
		}
	}
	return models.User{}, fmt.Errorf("%w: user with email %s", ErrNotFound, email)
}

// Users returns every registered user in registration order.
func (l *Ledger) Users() []models.User {
	l.mu.Lock()
	defer l.mu.Unlock()

	users := make([]models.User, 0, len(l.userOrder))
	for _, id := range l.userOrder {
		users = append(users, *l.users[id])
	}
	return users
}

// AddGroup creates a group seeded with the creator as leader and sole
// member. The first group created while no selection is active becomes the
// active group.
func (l *Ledger) AddGroup(ctx context.Context, spec GroupSpec) (models.Group, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if spec.Name == "" {
		return models.Group{}, fmt.Errorf("%w: group name must not be empty", ErrValidation)
	}
	if _, ok := l.users[spec.CreatorID]; !ok {
		return models.Group{}, fmt.Errorf("%w: user %s", ErrNotFound, spec.CreatorID)
	}

	color := spec.Color
	if color == "" {
		color = defaultGroupColor
	}
	if !models.ValidGroupColor(color) {
		return models.Group{}, fmt.Errorf("%w: unknown group color %q", ErrValidation, color)
	}
	icon := spec.Icon
	if icon == "" {
		icon = defaultGroupIcon
	}
	if !models.ValidGroupIcon(icon) {
		return models.Group{}, fmt.Errorf("%w: unknown group icon %q", ErrValidation, icon)
	}

	group := &models.Group{
		ID:          uuid.New().String(),
		Name:        spec.Name,
		Description: spec.Description,
		LeaderID:    spec.CreatorID,
		MemberIDs:   []string{spec.CreatorID},
		Color:       color,
		Icon:        icon,
		CreatedAt:   time.Now().Unix(),
	}
	l.groups = append(l.groups, group)

	if l.activeGroupID == "" {
		l.activeGroupID = group.ID
	}

	l.persist(ctx)
	return cloneGroup(group), nil
}

// UpdateGroup merges the given fields into an existing group. The merged
// record is validated before anything is committed.
func (l *Ledger) UpdateGroup(ctx context.Context, groupID string, update GroupUpdate) (models.Group, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	group := l.findGroup(groupID)
	if group == nil {
		return models.Group{}, fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}

	merged := cloneGroup(group)
	if update.Name != nil {
		merged.Name = *update.Name
	}
	if update.Description != nil {
		merged.Description = *update.Description
	}
	if update.Color != nil {
		merged.Color = *update.Color
	}
	if update.Icon != nil {
		merged.Icon = *update.Icon
	}
	if update.LeaderID != nil {
		merged.LeaderID = *update.LeaderID
	}

	if merged.Name == "" {
		return models.Group{}, fmt.Errorf("%w: group name must not be empty", ErrValidation)
	}
	if !models.ValidGroupColor(merged.Color) {
		return models.Group{}, fmt.Errorf("%w: unknown group color %q", ErrValidation, merged.Color)
	}
	if !models.ValidGroupIcon(merged.Icon) {
		return models.Group{}, fmt.Errorf("%w: unknown group icon %q", ErrValidation, merged.Icon)
	}
	if !merged.HasMember(merged.LeaderID) {
		return models.Group{}, fmt.Errorf("%w: leader %s is not a member of group %s", ErrReferentialIntegrity, merged.LeaderID, groupID)
	}

	*group = merged

	l.persist(ctx)
	return cloneGroup(group), nil
}

// AddMembers grows a group's member list with users from the registry.
// Already-present members are skipped.
func (l *Ledger) AddMembers(ctx context.Context, groupID string, userIDs []string) (models.Group, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	group := l.findGroup(groupID)
	if group == nil {
		return models.Group{}, fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}
	for _, id := range userIDs {
		if _, ok := l.users[id]; !ok {
			return models.Group{}, fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
	}

	for _, id := range userIDs {
		if !group.HasMember(id) {
			group.MemberIDs = append(group.MemberIDs, id)
		}
	}

	l.persist(ctx)
	return cloneGroup(group), nil
}

// DeleteGroup removes a group and cascades to every expense scoped to it.
// The dependent expenses are removed first and the intermediate state is
// never observable. If the deleted group was the active selection, the
// selection falls back to the first remaining group, or to none.
//
// Deleting an unknown group fails with ErrNotFound rather than being a
// no-op.
func (l *Ledger) DeleteGroup(ctx context.Context, groupID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i, g := range l.groups {
		if g.ID == groupID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}

	kept := l.expenses[:0]
	for _, e := range l.expenses {
		if e.GroupID != groupID {
			kept = append(kept, e)
		}
	}
	l.expenses = kept

	l.groups = append(l.groups[:idx], l.groups[idx+1:]...)

	if l.activeGroupID == groupID {
		l.activeGroupID = ""
		if len(l.groups) > 0 {
			l.activeGroupID = l.groups[0].ID
		}
	}

	l.persist(ctx)
	return nil
}

// Group returns the group with the given id.
func (l *Ledger) Group(id string) (models.Group, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	group := l.findGroup(id)
	if group == nil {
		return models.Group{}, fmt.Errorf("%w: group %s", ErrNotFound, id)
	}
	return cloneGroup(group), nil
}

// Groups returns every group in creation order.
func (l *Ledger) Groups() []models.Group {
	l.mu.Lock()
	defer l.mu.Unlock()

	groups := make([]models.Group, 0, len(l.groups))
	for _, g := range l.groups {
		groups = append(groups, cloneGroup(g))
	}
	return groups
}

// SetActiveGroup switches the active group selection.
func (l *Ledger) SetActiveGroup(ctx context.Context, groupID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.findGroup(groupID) == nil {
		return fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}
	l.activeGroupID = groupID

	l.persist(ctx)
	return nil
}

// ActiveGroupID returns the id of the active group, or empty when none.
func (l *Ledger) ActiveGroupID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.activeGroupID
}

// AddExpense validates the expense invariants, assigns a fresh id, and
// appends the record. Nothing is committed on failure.
func (l *Ledger) AddExpense(ctx context.Context, spec ExpenseSpec) (models.Expense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	expense := &models.Expense{
		ID:           uuid.New().String(),
		GroupID:      spec.GroupID,
		Title:        spec.Title,
		Amount:       spec.Amount,
		Category:     spec.Category,
		PaidBy:       spec.PaidBy,
		Date:         spec.Date,
		SplitBetween: append([]string(nil), spec.SplitBetween...),
		Notes:        spec.Notes,
		Receipt:      spec.Receipt,
	}
	if expense.Date == 0 {
		expense.Date = time.Now().Unix()
	}

	if err := l.validateExpense(expense); err != nil {
		return models.Expense{}, err
	}
	l.expenses = append(l.expenses, expense)

	l.persist(ctx)
	return cloneExpense(expense), nil
}

// UpdateExpense merges the given fields into an existing expense and
// re-validates the merged record against every invariant before committing.
// A partial update can never leave the record in an invalid state.
func (l *Ledger) UpdateExpense(ctx context.Context, expenseID string, update ExpenseUpdate) (models.Expense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	expense := l.findExpense(expenseID)
	if expense == nil {
		return models.Expense{}, fmt.Errorf("%w: expense %s", ErrNotFound, expenseID)
	}

	merged := cloneExpense(expense)
	if update.GroupID != nil {
		merged.GroupID = *update.GroupID
	}
	if update.Title != nil {
		merged.Title = *update.Title
	}
	if update.Amount != nil {
		merged.Amount = *update.Amount
	}
	if update.Category != nil {
		merged.Category = *update.Category
	}
	if update.PaidBy != nil {
		merged.PaidBy = *update.PaidBy
	}
	if update.Date != nil {
		merged.Date = *update.Date
	}
	if update.SplitBetween != nil {
		merged.SplitBetween = append([]string(nil), update.SplitBetween...)
	}
	if update.Notes != nil {
		merged.Notes = *update.Notes
	}
	if update.Receipt != nil {
		merged.Receipt = *update.Receipt
	}

	if err := l.validateExpense(&merged); err != nil {
		return models.Expense{}, err
	}

	*expense = merged

	l.persist(ctx)
	return cloneExpense(expense), nil
}

// DeleteExpense removes the record. Deleting an unknown expense fails with
// ErrNotFound rather than being a no-op.
func (l *Ledger) DeleteExpense(ctx context.Context, expenseID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, e := range l.expenses {
		if e.ID == expenseID {
			l.expenses = append(l.expenses[:i], l.expenses[i+1:]...)
			l.persist(ctx)
			return nil
		}
	}
	return fmt.Errorf("%w: expense %s", ErrNotFound, expenseID)
}

// Expense returns the expense with the given id.
func (l *Ledger) Expense(id string) (models.Expense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	expense := l.findExpense(id)
	if expense == nil {
		return models.Expense{}, fmt.Errorf("%w: expense %s", ErrNotFound, id)
	}
	return cloneExpense(expense), nil
}

// Expenses returns every expense in insertion order.
func (l *Ledger) Expenses() []models.Expense {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cloneExpenses("")
}

// GroupExpenses returns the expenses scoped to one group in insertion
// order. Fails with ErrNotFound when the group does not exist.
func (l *Ledger) GroupExpenses(groupID string) ([]models.Expense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.findGroup(groupID) == nil {
		return nil, fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}
	return l.cloneExpenses(groupID), nil
}

// Snapshot returns a deep copy of the full ledger state.
func (l *Ledger) Snapshot() models.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

// snapshot builds a deep copy of the state. Caller must hold the lock.
func (l *Ledger) snapshot() models.Snapshot {
	snap := models.Snapshot{ActiveGroupID: l.activeGroupID}
	for _, id := range l.userOrder {
		snap.Users = append(snap.Users, *l.users[id])
	}
	for _, g := range l.groups {
		snap.Groups = append(snap.Groups, cloneGroup(g))
	}
	snap.Expenses = l.cloneExpenses("")
	return snap
}

// persist hands the current state to the store. Caller must hold the lock.
// Persistence failures are logged and never surfaced: the in-memory state
// is authoritative.
func (l *Ledger) persist(ctx context.Context) {
	if l.store == nil {
		return
	}
	snap := l.snapshot()
	if err := l.store.SaveSnapshot(ctx, &snap); err != nil {
		slog.Warn("failed to persist ledger snapshot", "error", err)
	}
}

// validateExpense checks every expense invariant against the current
// collections. Caller must hold the lock.
func (l *Ledger) validateExpense(e *models.Expense) error {
	if e.Title == "" {
		return fmt.Errorf("%w: expense title must not be empty", ErrValidation)
	}
	if e.Amount <= 0 {
		return fmt.Errorf("%w: expense amount must be positive, got %v", ErrValidation, e.Amount)
	}
	if !e.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, e.Category)
	}
	if len(e.SplitBetween) == 0 {
		return fmt.Errorf("%w: expense must be split between at least one member", ErrValidation)
	}

	seen := make(map[string]bool, len(e.SplitBetween))
	for _, id := range e.SplitBetween {
		if seen[id] {
			return fmt.Errorf("%w: duplicate split participant %s", ErrValidation, id)
		}
		seen[id] = true
	}

	group := l.findGroup(e.GroupID)
	if group == nil {
		return fmt.Errorf("%w: group %s does not exist", ErrReferentialIntegrity, e.GroupID)
	}
	if !group.HasMember(e.PaidBy) {
		return fmt.Errorf("%w: payer %s is not a member of group %s", ErrReferentialIntegrity, e.PaidBy, e.GroupID)
	}
	for _, id := range e.SplitBetween {
		if !group.HasMember(id) {
			return fmt.Errorf("%w: split participant %s is not a member of group %s", ErrReferentialIntegrity, id, e.GroupID)
		}
	}
	return nil
}

func (l *Ledger) findGroup(id string) *models.Group {
	for _, g := range l.groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func (l *Ledger) findExpense(id string) *models.Expense {
	for _, e := range l.expenses {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// cloneExpenses copies expenses, optionally filtered to one group. Caller
// must hold the lock.
func (l *Ledger) cloneExpenses(groupID string) []models.Expense {
	var expenses []models.Expense
	for _, e := range l.expenses {
		if groupID == "" || e.GroupID == groupID {
			expenses = append(expenses, cloneExpense(e))
		}
	}
	return expenses
}

func cloneGroup(g *models.Group) models.Group {
	c := *g
	c.MemberIDs = append([]string(nil), g.MemberIDs...)
	return c
}

func cloneExpense(e *models.Expense) models.Expense {
	c := *e
	c.SplitBetween = append([]string(nil), e.SplitBetween...)
	return c
}
