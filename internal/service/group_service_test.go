package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hisaab-app/hisaab/internal/auth"
	"github.com/hisaab-app/hisaab/internal/ledger"
)

const testEps = 1e-9

// newTestServer starts an HTTP server over a memory-only ledger.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	ldgr, err := ledger.New(context.Background(), nil)
	if err != nil {
		t.Fatalf("failed to create ledger: %v", err)
	}

	authenticator := auth.NewPasswordAuthenticator(ldgr)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	authSvc := NewAuthService(authenticator, jwtManager, ldgr)
	groupSvc := NewGroupService(ldgr)
	expenseSvc := NewExpenseService(ldgr, groupSvc)

	server := httptest.NewServer(Routes(authSvc, groupSvc, expenseSvc, jwtManager))
	t.Cleanup(server.Close)
	return server
}

// doJSON issues a request and returns the response with its body drained.
func doJSON(t *testing.T, server *httptest.Server, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return resp, data
}

func decodeBody(t *testing.T, data []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("failed to decode response %q: %v", data, err)
	}
}

// register creates an account and returns its session.
func register(t *testing.T, server *httptest.Server, name, email string) sessionResponse {
	t.Helper()

	resp, data := doJSON(t, server, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "super-secret",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: expected status 201, got %d: %s", email, resp.StatusCode, data)
	}

	var session sessionResponse
	decodeBody(t, data, &session)
	if session.Token == "" {
		t.Fatalf("register %s: expected a token", email)
	}
	return session
}

// newTestGroup registers three users and puts them in one group. Returns the
// sessions and the group id; the first session's user is the leader.
func newTestGroup(t *testing.T, server *httptest.Server) ([]sessionResponse, string) {
	t.Helper()

	sessions := []sessionResponse{
		register(t, server, "Rajesh Sharma", "rajesh@example.com"),
		register(t, server, "Priya Patel", "priya@example.com"),
		register(t, server, "Amit Kumar", "amit@example.com"),
	}

	resp, data := doJSON(t, server, http.MethodPost, "/api/v1/groups", sessions[0].Token, map[string]string{
		"name": "Parivar",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create group: expected status 201, got %d: %s", resp.StatusCode, data)
	}
	var group groupResponse
	decodeBody(t, data, &group)

	resp, data = doJSON(t, server, http.MethodPost, "/api/v1/groups/"+group.ID+"/members", sessions[0].Token, map[string][]string{
		"user_ids": {sessions[1].User.ID, sessions[2].User.ID},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add members: expected status 200, got %d: %s", resp.StatusCode, data)
	}

	return sessions, group.ID
}

func TestRegisterAndLogin(t *testing.T) {
	server := newTestServer(t)

	session := register(t, server, "Rajesh Sharma", "rajesh@example.com")
	if session.User.Email != "rajesh@example.com" {
		t.Errorf("expected registered email, got %q", session.User.Email)
	}

	resp, data := doJSON(t, server, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "rajesh@example.com",
		"password": "super-secret",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected status 200, got %d: %s", resp.StatusCode, data)
	}
	var login sessionResponse
	decodeBody(t, data, &login)
	if login.User.ID != session.User.ID {
		t.Errorf("login returned user %q, want %q", login.User.ID, session.User.ID)
	}

	resp, _ = doJSON(t, server, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "rajesh@example.com",
		"password": "wrong-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad password: expected status 401, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, server, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     "Imposter",
		"email":    "rajesh@example.com",
		"password": "super-secret",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("duplicate email: expected status 400, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, server, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     "Priya Patel",
		"email":    "priya@example.com",
		"password": "short",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("weak password: expected status 400, got %d", resp.StatusCode)
	}

	resp, data = doJSON(t, server, http.MethodGet, "/api/v1/auth/me", session.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: expected status 200, got %d: %s", resp.StatusCode, data)
	}
}

func TestAuthRequired(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, server, http.MethodGet, "/api/v1/groups", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token: expected status 401, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, server, http.MethodGet, "/api/v1/groups", "not-a-jwt", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad token: expected status 401, got %d", resp.StatusCode)
	}
}

func TestGroupLifecycle(t *testing.T) {
	server := newTestServer(t)
	sessions, groupID := newTestGroup(t, server)
	leader := sessions[0]

	resp, data := doJSON(t, server, http.MethodGet, "/api/v1/groups/"+groupID, leader.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get group: expected status 200, got %d: %s", resp.StatusCode, data)
	}
	var group groupResponse
	decodeBody(t, data, &group)
	if len(group.Members) != 3 {
		t.Errorf("expected 3 resolved members, got %d", len(group.Members))
	}
	if group.LeaderID != leader.User.ID {
		t.Errorf("expected creator as leader, got %q", group.LeaderID)
	}
	if group.Color != "blue" || group.Icon != "users" {
		t.Errorf("expected default color/icon, got %q/%q", group.Color, group.Icon)
	}

	resp, data = doJSON(t, server, http.MethodPatch, "/api/v1/groups/"+groupID, leader.Token, map[string]string{
		"description": "Family expenses",
		"color":       "orange",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update group: expected status 200, got %d: %s", resp.StatusCode, data)
	}
	decodeBody(t, data, &group)
	if group.Name != "Parivar" {
		t.Errorf("partial update touched name: got %q", group.Name)
	}
	if group.Description != "Family expenses" || group.Color != "orange" {
		t.Errorf("update not applied: got %q/%q", group.Description, group.Color)
	}

	resp, _ = doJSON(t, server, http.MethodPatch, "/api/v1/groups/"+groupID, leader.Token, map[string]string{
		"color": "magenta",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid color: expected status 400, got %d", resp.StatusCode)
	}

	resp, data = doJSON(t, server, http.MethodGet, "/api/v1/state", sessions[1].Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("state: expected status 200, got %d: %s", resp.StatusCode, data)
	}
	var state stateResponse
	decodeBody(t, data, &state)
	if state.CurrentUser.ID != sessions[1].User.ID {
		t.Errorf("state returned user %q, want %q", state.CurrentUser.ID, sessions[1].User.ID)
	}
	if state.ActiveGroupID != groupID {
		t.Errorf("expected first group to be active, got %q", state.ActiveGroupID)
	}
	if len(state.Groups) != 1 {
		t.Errorf("expected 1 group in state, got %d", len(state.Groups))
	}
}

func TestGroupForbiddenForOutsiders(t *testing.T) {
	server := newTestServer(t)
	_, groupID := newTestGroup(t, server)
	outsider := register(t, server, "Sunita Singh", "sunita@example.com")

	resp, _ := doJSON(t, server, http.MethodPatch, "/api/v1/groups/"+groupID, outsider.Token, map[string]string{
		"name": "Hijacked",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("outsider update: expected status 403, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, server, http.MethodDelete, "/api/v1/groups/"+groupID, outsider.Token, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("outsider delete: expected status 403, got %d", resp.StatusCode)
	}
}

func TestGroupSummary(t *testing.T) {
	server := newTestServer(t)
	sessions, groupID := newTestGroup(t, server)
	u1, u2, u3 := sessions[0], sessions[1], sessions[2]

	resp, data := doJSON(t, server, http.MethodPost, "/api/v1/expenses", u1.Token, map[string]any{
		"group_id":      groupID,
		"title":         "Hotel booking",
		"amount":        300.0,
		"category":      "travel",
		"paid_by":       u1.User.ID,
		"split_between": []string{u1.User.ID, u2.User.ID, u3.User.ID},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create expense: expected status 201, got %d: %s", resp.StatusCode, data)
	}
	resp, data = doJSON(t, server, http.MethodPost, "/api/v1/expenses", u2.Token, map[string]any{
		"group_id":      groupID,
		"title":         "Taxi fare",
		"amount":        90.0,
		"category":      "transport",
		"paid_by":       u2.User.ID,
		"split_between": []string{u2.User.ID, u3.User.ID},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create expense: expected status 201, got %d: %s", resp.StatusCode, data)
	}

	resp, data = doJSON(t, server, http.MethodGet, "/api/v1/groups/"+groupID+"/summary", u3.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary: expected status 200, got %d: %s", resp.StatusCode, data)
	}
	var summary groupSummaryResponse
	decodeBody(t, data, &summary)

	if math.Abs(summary.Total-390) > testEps {
		t.Errorf("expected total 390, got %v", summary.Total)
	}

	wantNet := map[string]float64{
		u1.User.ID: 200,
		u2.User.ID: -55,
		u3.User.ID: -145,
	}
	if len(summary.Balances) != 3 {
		t.Fatalf("expected 3 balances, got %d", len(summary.Balances))
	}
	for _, b := range summary.Balances {
		if math.Abs(b.NetBalance-wantNet[b.UserID]) > testEps {
			t.Errorf("user %s: expected net %v, got %v", b.UserID, wantNet[b.UserID], b.NetBalance)
		}
		if b.Name == "" {
			t.Errorf("user %s: expected resolved name", b.UserID)
		}
	}

	paid := make(map[string]float64)
	for _, edge := range summary.SettleUp {
		if edge.ToUserID != u1.User.ID {
			t.Errorf("expected all payments to flow to the payer, got recipient %s", edge.ToUserID)
		}
		paid[edge.FromUserID] += edge.Amount
	}
	if math.Abs(paid[u2.User.ID]-55) > testEps || math.Abs(paid[u3.User.ID]-145) > testEps {
		t.Errorf("unexpected settle-up payments: %v", summary.SettleUp)
	}
}

func TestDeleteGroupCascadesOverHTTP(t *testing.T) {
	server := newTestServer(t)
	sessions, groupID := newTestGroup(t, server)
	leader := sessions[0]

	resp, data := doJSON(t, server, http.MethodPost, "/api/v1/expenses", leader.Token, map[string]any{
		"group_id":      groupID,
		"title":         "Groceries",
		"amount":        120.0,
		"category":      "food",
		"split_between": []string{leader.User.ID, sessions[1].User.ID},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create expense: expected status 201, got %d: %s", resp.StatusCode, data)
	}
	var expense struct {
		ID string `json:"id"`
	}
	decodeBody(t, data, &expense)

	resp, _ = doJSON(t, server, http.MethodDelete, "/api/v1/groups/"+groupID, leader.Token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete group: expected status 204, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, server, http.MethodGet, "/api/v1/groups/"+groupID, leader.Token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("deleted group: expected status 404, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, server, http.MethodGet, "/api/v1/expenses/"+expense.ID, leader.Token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("cascaded expense: expected status 404, got %d", resp.StatusCode)
	}

	resp, data = doJSON(t, server, http.MethodGet, "/api/v1/state", leader.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("state: expected status 200, got %d: %s", resp.StatusCode, data)
	}
	var state stateResponse
	decodeBody(t, data, &state)
	if state.ActiveGroupID != "" {
		t.Errorf("expected no active group after deleting the last one, got %q", state.ActiveGroupID)
	}
}

func TestActivateGroup(t *testing.T) {
	server := newTestServer(t)
	sessions, firstID := newTestGroup(t, server)
	leader := sessions[0]

	resp, data := doJSON(t, server, http.MethodPost, "/api/v1/groups", leader.Token, map[string]string{
		"name": "Dost Log",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create group: expected status 201, got %d: %s", resp.StatusCode, data)
	}
	var second groupResponse
	decodeBody(t, data, &second)

	resp, _ = doJSON(t, server, http.MethodPost, "/api/v1/groups/"+second.ID+"/activate", leader.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("activate: expected status 200, got %d", resp.StatusCode)
	}

	resp, data = doJSON(t, server, http.MethodGet, "/api/v1/state", leader.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("state: expected status 200, got %d: %s", resp.StatusCode, data)
	}
	var state stateResponse
	decodeBody(t, data, &state)
	if state.ActiveGroupID != second.ID {
		t.Errorf("expected active group %q, got %q", second.ID, state.ActiveGroupID)
	}

	resp, _ = doJSON(t, server, http.MethodPost, "/api/v1/groups/no-such-group/activate", leader.Token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("activate unknown group: expected status 404, got %d", resp.StatusCode)
	}

	// deleting the active group falls back to the first remaining one
	resp, _ = doJSON(t, server, http.MethodDelete, "/api/v1/groups/"+second.ID, leader.Token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete group: expected status 204, got %d", resp.StatusCode)
	}
	resp, data = doJSON(t, server, http.MethodGet, "/api/v1/state", leader.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("state: expected status 200, got %d: %s", resp.StatusCode, data)
	}
	decodeBody(t, data, &state)
	if state.ActiveGroupID != firstID {
		t.Errorf("expected fallback to %q, got %q", firstID, state.ActiveGroupID)
	}
}
