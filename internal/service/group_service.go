package service

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hisaab-app/hisaab/internal/calculator"
	"github.com/hisaab-app/hisaab/internal/ledger"
	"github.com/hisaab-app/hisaab/internal/middleware"
	"github.com/hisaab-app/hisaab/internal/models"
)

// GroupService handles group CRUD, membership, selection, and the computed
// per-group summary.
type GroupService struct {
	ledger *ledger.Ledger
}

// NewGroupService creates a new GroupService.
func NewGroupService(l *ledger.Ledger) *GroupService {
	return &GroupService{ledger: l}
}

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

type updateGroupRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
	LeaderID    *string `json:"leader_id"`
}

type addMembersRequest struct {
	UserIDs []string `json:"user_ids"`
}

// groupResponse is a group with member details resolved through the user
// registry.
type groupResponse struct {
	models.Group
	Members []models.User `json:"members"`
}

type memberBalance struct {
	calculator.MemberBalance
	Name string `json:"name"`
}

type groupSummaryResponse struct {
	GroupID  string                `json:"group_id"`
	Total    float64               `json:"total"`
	Balances []memberBalance       `json:"balances"`
	SettleUp []calculator.DebtEdge `json:"settle_up"`
}

type stateResponse struct {
	CurrentUser   models.User     `json:"current_user"`
	Groups        []groupResponse `json:"groups"`
	ActiveGroupID string          `json:"active_group_id,omitempty"`
}

func (s *GroupService) resolveGroup(g models.Group) groupResponse {
	resp := groupResponse{Group: g, Members: []models.User{}}
	for _, id := range g.MemberIDs {
		user, err := s.ledger.User(id)
		if err != nil {
			slog.Warn("group references unknown member", "group_id", g.ID, "user_id", id)
			continue
		}
		resp.Members = append(resp.Members, user)
	}
	return resp
}

// requireMember fails with errForbidden unless the authenticated user
// belongs to the group.
func (s *GroupService) requireMember(r *http.Request, groupID string) error {
	group, err := s.ledger.Group(groupID)
	if err != nil {
		return err
	}
	if !group.HasMember(middleware.GetUserID(r.Context())) {
		return fmt.Errorf("%w: you must be a member of this group", errForbidden)
	}
	return nil
}

// List returns every group with resolved members.
func (s *GroupService) List(w http.ResponseWriter, r *http.Request) {
	groups := s.ledger.Groups()
	resp := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		resp = append(resp, s.resolveGroup(g))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create creates a group led by the authenticated user.
func (s *GroupService) Create(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := s.ledger.AddGroup(r.Context(), ledger.GroupSpec{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		CreatorID:   middleware.GetUserID(r.Context()),
	})
	if err != nil {
		slog.Warn("create group failed", "error", err)
		writeError(w, err)
		return
	}

	slog.Info("group created", "group_id", group.ID, "name", group.Name)
	writeJSON(w, http.StatusCreated, s.resolveGroup(group))
}

// Get returns one group with resolved members.
func (s *GroupService) Get(w http.ResponseWriter, r *http.Request) {
	group, err := s.ledger.Group(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.resolveGroup(group))
}

// Update merges partial fields into a group.
func (s *GroupService) Update(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("id")
	if err := s.requireMember(r, groupID); err != nil {
		writeError(w, err)
		return
	}

	var req updateGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := s.ledger.UpdateGroup(r.Context(), groupID, ledger.GroupUpdate{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		LeaderID:    req.LeaderID,
	})
	if err != nil {
		slog.Warn("update group failed", "group_id", groupID, "error", err)
		writeError(w, err)
		return
	}

	slog.Info("group updated", "group_id", group.ID)
	writeJSON(w, http.StatusOK, s.resolveGroup(group))
}

// Delete removes a group and cascades to its expenses.
func (s *GroupService) Delete(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("id")
	if err := s.requireMember(r, groupID); err != nil {
		writeError(w, err)
		return
	}

	if err := s.ledger.DeleteGroup(r.Context(), groupID); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("group deleted", "group_id", groupID)
	w.WriteHeader(http.StatusNoContent)
}

// AddMembers grows the group's member list.
func (s *GroupService) AddMembers(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("id")
	if err := s.requireMember(r, groupID); err != nil {
		writeError(w, err)
		return
	}

	var req addMembersRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := s.ledger.AddMembers(r.Context(), groupID, req.UserIDs)
	if err != nil {
		slog.Warn("add members failed", "group_id", groupID, "error", err)
		writeError(w, err)
		return
	}

	slog.Info("members added", "group_id", groupID, "members_count", len(group.MemberIDs))
	writeJSON(w, http.StatusOK, s.resolveGroup(group))
}

// Activate switches the active group selection.
func (s *GroupService) Activate(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("id")
	if err := s.ledger.SetActiveGroup(r.Context(), groupID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"active_group_id": groupID})
}

// State returns the session view: current user, all groups, and the active
// selection.
func (s *GroupService) State(w http.ResponseWriter, r *http.Request) {
	user, err := s.ledger.User(middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	groups := s.ledger.Groups()
	resp := stateResponse{
		CurrentUser:   user,
		Groups:        make([]groupResponse, 0, len(groups)),
		ActiveGroupID: s.ledger.ActiveGroupID(),
	}
	for _, g := range groups {
		resp.Groups = append(resp.Groups, s.resolveGroup(g))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Summary returns the computed figures for one group: aggregate total,
// each member's balance, and suggested settle-up payments.
func (s *GroupService) Summary(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("id")

	group, err := s.ledger.Group(groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	expenses, err := s.ledger.GroupExpenses(groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	balances := calculator.GroupBalances(expenses, group.MemberIDs)
	resp := groupSummaryResponse{
		GroupID:  groupID,
		Total:    calculator.GroupTotal(expenses, groupID),
		Balances: make([]memberBalance, 0, len(balances)),
		SettleUp: calculator.SettleUp(balances),
	}
	for _, b := range balances {
		entry := memberBalance{MemberBalance: b}
		if user, err := s.ledger.User(b.UserID); err == nil {
			entry.Name = user.Name
		}
		resp.Balances = append(resp.Balances, entry)
	}
	if resp.SettleUp == nil {
		resp.SettleUp = []calculator.DebtEdge{}
	}

	writeJSON(w, http.StatusOK, resp)
}
