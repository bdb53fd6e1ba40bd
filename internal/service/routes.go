package service

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hisaab-app/hisaab/internal/auth"
	"github.com/hisaab-app/hisaab/internal/middleware"
)

// Routes assembles the HTTP mux. Everything under /api/v1 except the auth
// endpoints requires a bearer token.
func Routes(authSvc *AuthService, groupSvc *GroupService, expenseSvc *ExpenseService, jwtManager *auth.JWTManager) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(jwtManager)

	handle := func(pattern, route string, h http.HandlerFunc, protected bool) {
		var handler http.Handler = h
		if protected {
			handler = requireAuth(handler)
		}
		mux.Handle(pattern, middleware.Metrics(route, handler))
	}

	handle("POST /api/v1/auth/register", "/api/v1/auth/register", authSvc.Register, false)
	handle("POST /api/v1/auth/login", "/api/v1/auth/login", authSvc.Login, false)
	handle("GET /api/v1/auth/me", "/api/v1/auth/me", authSvc.Me, true)

	handle("GET /api/v1/state", "/api/v1/state", groupSvc.State, true)

	handle("GET /api/v1/groups", "/api/v1/groups", groupSvc.List, true)
	handle("POST /api/v1/groups", "/api/v1/groups", groupSvc.Create, true)
	handle("GET /api/v1/groups/{id}", "/api/v1/groups/{id}", groupSvc.Get, true)
	handle("PATCH /api/v1/groups/{id}", "/api/v1/groups/{id}", groupSvc.Update, true)
	handle("DELETE /api/v1/groups/{id}", "/api/v1/groups/{id}", groupSvc.Delete, true)
	handle("POST /api/v1/groups/{id}/members", "/api/v1/groups/{id}/members", groupSvc.AddMembers, true)
	handle("POST /api/v1/groups/{id}/activate", "/api/v1/groups/{id}/activate", groupSvc.Activate, true)
	handle("GET /api/v1/groups/{id}/summary", "/api/v1/groups/{id}/summary", groupSvc.Summary, true)
	handle("GET /api/v1/groups/{id}/expenses", "/api/v1/groups/{id}/expenses", expenseSvc.ListByGroup, true)

	handle("POST /api/v1/expenses", "/api/v1/expenses", expenseSvc.Create, true)
	handle("GET /api/v1/expenses/{id}", "/api/v1/expenses/{id}", expenseSvc.Get, true)
	handle("PATCH /api/v1/expenses/{id}", "/api/v1/expenses/{id}", expenseSvc.Update, true)
	handle("DELETE /api/v1/expenses/{id}", "/api/v1/expenses/{id}", expenseSvc.Delete, true)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}
